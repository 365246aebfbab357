package worker

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/robocomp/gesturecomp/internal/gesture"
)

// Sink receives every successful recognition result.
type Sink interface {
	Emit(gesture.Result) error
}

// PrintSink writes the gesture index and probability on separate lines.
type PrintSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrintSink creates a PrintSink writing to out.
func NewPrintSink(out io.Writer) *PrintSink {
	return &PrintSink{out: out}
}

// Emit prints r.
func (s *PrintSink) Emit(r gesture.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := fmt.Fprintf(s.out, "%d\n%s\n", r.GestureIndex, strconv.FormatFloat(r.GestureProb, 'g', -1, 64))
	return err
}

// FuncSink adapts a function to the Sink interface.
type FuncSink func(gesture.Result) error

// Emit calls f(r).
func (f FuncSink) Emit(r gesture.Result) error {
	return f(r)
}
