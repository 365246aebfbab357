// Package testdata builds synthetic camera frames for tests.
package testdata

import (
	"gocv.io/x/gocv"
)

// Solid returns a BGR frame filled with one color. The caller closes it.
func Solid(rows, cols int, b, g, r float64) *gocv.Mat {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(b, g, r, 0), rows, cols, gocv.MatTypeCV8UC3)
	return &mat
}

// Sequence returns n frames whose brightness rises with the frame index,
// so each frame's position in a batch can be recognized from its bytes.
func Sequence(n, rows, cols int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		v := float64(i % 256)
		frames = append(frames, Solid(rows, cols, v, v, v))
	}
	return frames
}

// Close releases every frame.
func Close(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
