package worker

import (
	"errors"
	"fmt"

	"github.com/robocomp/gesturecomp/internal/capture"
	"github.com/robocomp/gesturecomp/internal/gesture"
)

var (
	// ErrBatchNotFull is returned by Take below the dispatch threshold.
	ErrBatchNotFull = errors.New("batch below threshold")
	// ErrFrameShape is returned when buffered frames cannot be stacked.
	ErrFrameShape = errors.New("frame shape mismatch")
)

// Batch accumulates frames in capture order until they are taken for
// dispatch. It owns the frames appended to it.
type Batch struct {
	frames    []capture.Frame
	threshold int
}

// NewBatch creates an empty batch dispatchable at threshold frames.
func NewBatch(threshold int) *Batch {
	return &Batch{
		frames:    make([]capture.Frame, 0, threshold),
		threshold: threshold,
	}
}

// Append adds a frame at the end of the batch.
func (b *Batch) Append(f capture.Frame) {
	b.frames = append(b.frames, f)
}

// Len returns the number of buffered frames.
func (b *Batch) Len() int {
	return len(b.frames)
}

// Threshold returns the dispatch threshold.
func (b *Batch) Threshold() int {
	return b.threshold
}

// SetThreshold changes the dispatch threshold. Buffered frames are kept.
func (b *Batch) SetThreshold(n int) {
	b.threshold = n
}

// Ready reports whether the batch has reached the threshold.
func (b *Batch) Ready() bool {
	return len(b.frames) >= b.threshold
}

// Take stacks every buffered frame into a Video and empties the batch.
// Below the threshold it returns ErrBatchNotFull and leaves the batch as is.
// Frames that cannot be stacked are discarded and ErrFrameShape returned.
func (b *Batch) Take() (*gesture.Video, error) {
	if !b.Ready() || len(b.frames) == 0 {
		return nil, fmt.Errorf("%w: %d of %d frames", ErrBatchNotFull, len(b.frames), b.threshold)
	}
	defer b.Reset()

	first := b.frames[0]
	size := first.Size()
	if size <= 0 {
		return nil, fmt.Errorf("%w: first frame is %dx%dx%d", ErrFrameShape, first.Height, first.Width, first.Depth)
	}

	images := make([]byte, 0, size*len(b.frames))
	for i, f := range b.frames {
		if !f.SameShape(first) || len(f.Data) != size {
			return nil, fmt.Errorf("%w: frame %d is %dx%dx%d (%d bytes), frame 0 is %dx%dx%d",
				ErrFrameShape, i, f.Height, f.Width, f.Depth, len(f.Data), first.Height, first.Width, first.Depth)
		}
		images = append(images, f.Data...)
	}

	return &gesture.Video{
		Images:    images,
		Height:    first.Height,
		Width:     first.Width,
		Depth:     first.Depth,
		NumFrames: len(b.frames),
	}, nil
}

// Reset drops every buffered frame.
func (b *Batch) Reset() {
	clear(b.frames)
	b.frames = b.frames[:0]
}
