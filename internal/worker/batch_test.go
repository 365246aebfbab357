package worker

import (
	"bytes"
	"errors"
	"testing"

	"github.com/robocomp/gesturecomp/internal/capture"
)

func testFrame(h, w, d int, fill byte) capture.Frame {
	return capture.Frame{
		Data:   bytes.Repeat([]byte{fill}, h*w*d),
		Height: h,
		Width:  w,
		Depth:  d,
	}
}

func TestBatch_TakeBelowThreshold(t *testing.T) {
	b := NewBatch(3)
	b.Append(testFrame(2, 2, 3, 1))
	b.Append(testFrame(2, 2, 3, 2))

	if b.Ready() {
		t.Fatal("batch of 2 should not be ready at threshold 3")
	}

	_, err := b.Take()
	if !errors.Is(err, ErrBatchNotFull) {
		t.Fatalf("Take() error = %v, want ErrBatchNotFull", err)
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d after failed Take, want 2", b.Len())
	}
}

func TestBatch_TakeStacksInOrder(t *testing.T) {
	b := NewBatch(2)
	for i := byte(1); i <= 3; i++ {
		b.Append(testFrame(2, 1, 3, i))
	}

	video, err := b.Take()
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}

	if video.NumFrames != 3 {
		t.Errorf("NumFrames = %d, want 3 (whole batch)", video.NumFrames)
	}
	if video.Height != 2 || video.Width != 1 || video.Depth != 3 {
		t.Errorf("shape = %dx%dx%d, want 2x1x3", video.Height, video.Width, video.Depth)
	}
	if err := video.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	for i := 0; i < 3; i++ {
		frame := video.Frame(i)
		if frame[0] != byte(i+1) || frame[len(frame)-1] != byte(i+1) {
			t.Errorf("frame %d holds %v, want bytes of %d", i, frame, i+1)
		}
	}

	if b.Len() != 0 {
		t.Errorf("Len() = %d after Take, want 0", b.Len())
	}
}

func TestBatch_TakeShapeMismatch(t *testing.T) {
	tests := []struct {
		name   string
		frames []capture.Frame
	}{
		{
			name:   "different dimensions",
			frames: []capture.Frame{testFrame(2, 2, 3, 0), testFrame(4, 4, 3, 0)},
		},
		{
			name:   "different depth",
			frames: []capture.Frame{testFrame(2, 2, 3, 0), testFrame(2, 2, 1, 0)},
		},
		{
			name: "short data",
			frames: []capture.Frame{
				testFrame(2, 2, 3, 0),
				{Data: []byte{1, 2}, Height: 2, Width: 2, Depth: 3},
			},
		},
		{
			name:   "empty first frame",
			frames: []capture.Frame{{}, testFrame(2, 2, 3, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBatch(2)
			for _, f := range tt.frames {
				b.Append(f)
			}

			_, err := b.Take()
			if !errors.Is(err, ErrFrameShape) {
				t.Fatalf("Take() error = %v, want ErrFrameShape", err)
			}
			if b.Len() != 0 {
				t.Errorf("Len() = %d, want batch reset after shape error", b.Len())
			}
		})
	}
}

func TestBatch_SetThreshold(t *testing.T) {
	b := NewBatch(4)
	b.Append(testFrame(1, 1, 1, 0))
	b.Append(testFrame(1, 1, 1, 0))

	b.SetThreshold(2)
	if b.Threshold() != 2 {
		t.Errorf("Threshold() = %d, want 2", b.Threshold())
	}
	if !b.Ready() {
		t.Error("batch should be ready after lowering the threshold")
	}
}
