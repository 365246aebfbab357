package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Frame is one captured image. Data holds Height*Width*Depth bytes in
// row-major, channel-interleaved order (BGR for color cameras).
// A Frame owns its Data; nothing else keeps a reference to it.
type Frame struct {
	Data      []byte
	Height    int
	Width     int
	Depth     int
	Timestamp int64
}

// Size returns the number of bytes a frame of these dimensions occupies.
func (f Frame) Size() int {
	return f.Height * f.Width * f.Depth
}

// SameShape reports whether f and o have identical dimensions.
func (f Frame) SameShape(o Frame) bool {
	return f.Height == o.Height && f.Width == o.Width && f.Depth == o.Depth
}

// FrameFromMat copies an 8-bit Mat into a Frame. The Mat is not closed.
func FrameFromMat(mat *gocv.Mat, timestamp int64) (Frame, error) {
	if mat == nil || mat.Empty() {
		return Frame{}, ErrEmptyFrame
	}

	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return Frame{}, fmt.Errorf("unsupported mat type %v", mat.Type())
	}

	return Frame{
		Data:      mat.ToBytes(),
		Height:    mat.Rows(),
		Width:     mat.Cols(),
		Depth:     mat.Channels(),
		Timestamp: timestamp,
	}, nil
}
