package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	// Create test frames
	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	// Read both frames
	f1, err := cam.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if f1.Height != 480 || f1.Width != 640 || f1.Depth != 3 {
		t.Errorf("frame dims = %dx%dx%d, want 480x640x3", f1.Height, f1.Width, f1.Depth)
	}
	if len(f1.Data) != f1.Size() {
		t.Errorf("len(Data) = %d, want %d", len(f1.Data), f1.Size())
	}

	if _, err := cam.Read(); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	// Third read should fail (no loop)
	if _, err := cam.Read(); err == nil {
		t.Error("expected error after all frames consumed")
	}
}

func TestMockCamera_Loop(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	defer cam.Close()

	// Should loop indefinitely
	for i := 0; i < 5; i++ {
		if _, err := cam.Read(); err != nil {
			t.Fatalf("Read() iteration %d error = %v", i, err)
		}
	}
}

func TestMockCamera_NotOpen(t *testing.T) {
	frame := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)

	if _, err := cam.Read(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("Read() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestMockCamera_ReadCopiesData(t *testing.T) {
	frame := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.SetTo(gocv.NewScalar(7, 7, 7, 0))

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	defer cam.Close()

	f, err := cam.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	f.Data[0] = 42

	if got := frame.GetVecbAt(0, 0)[0]; got != 7 {
		t.Errorf("recorded mat was modified through frame data: got %d", got)
	}
}
