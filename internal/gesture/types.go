// Package gesture defines the ImageBasedGestureRecognition interface: the
// request and result types exchanged with the recognition service and the
// proxy used to reach it.
package gesture

import (
	"context"
	"errors"
	"fmt"
)

// InterfaceName is the name under which the interface appears in
// configuration files ("<InterfaceName>Proxy", "<InterfaceName>.Endpoints").
const InterfaceName = "ImageBasedGestureRecognition"

// ErrInvalidVideo is returned when a Video's dimensions do not match its data.
var ErrInvalidVideo = errors.New("invalid video")

// Video is a stack of equally sized frames sent for recognition.
// Images holds NumFrames*Height*Width*Depth bytes, frame after frame.
type Video struct {
	Images    []byte `json:"images"`
	Height    int    `json:"height"`
	Width     int    `json:"width"`
	Depth     int    `json:"depth"`
	NumFrames int    `json:"numFrames"`
}

// FrameSize returns the number of bytes of one frame.
func (v *Video) FrameSize() int {
	return v.Height * v.Width * v.Depth
}

// Frame returns the bytes of frame i.
func (v *Video) Frame(i int) []byte {
	size := v.FrameSize()
	return v.Images[i*size : (i+1)*size]
}

// Validate checks that the dimensions are positive and agree with the data.
// FrameSize and Frame are only safe to call on a valid Video.
func (v *Video) Validate() error {
	if v == nil {
		return fmt.Errorf("%w: nil video", ErrInvalidVideo)
	}
	if v.Height <= 0 || v.Width <= 0 || v.Depth <= 0 || v.NumFrames <= 0 {
		return fmt.Errorf("%w: dimensions %dx%dx%d, %d frames",
			ErrInvalidVideo, v.Height, v.Width, v.Depth, v.NumFrames)
	}
	// Multiply factor by factor without exceeding the data length
	n := len(v.Images)
	size := 1
	for _, d := range [...]int{v.NumFrames, v.Height, v.Width, v.Depth} {
		if size > n/d {
			return fmt.Errorf("%w: dimensions %dx%dx%d, %d frames exceed %d bytes of image data",
				ErrInvalidVideo, v.Height, v.Width, v.Depth, v.NumFrames, n)
		}
		size *= d
	}
	if size != n {
		return fmt.Errorf("%w: %d bytes of image data, want %d", ErrInvalidVideo, n, size)
	}
	return nil
}

// Result is the recognized gesture and its probability.
type Result struct {
	GestureIndex int     `json:"gestureIndex"`
	GestureProb  float64 `json:"gestureProb"`
}

// Recognizer is implemented by anything that can answer getGesture:
// the remote proxy on the client side and the recognition backends on
// the service side.
type Recognizer interface {
	GetGesture(ctx context.Context, video *Video) (*Result, error)
	Close() error
}
