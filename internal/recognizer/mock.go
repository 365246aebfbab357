package recognizer

import (
	"context"
	"sync"

	"github.com/robocomp/gesturecomp/internal/gesture"
)

// Mock is a test implementation of gesture.Recognizer.
// It allows tests to control the recognition results and inspect calls.
type Mock struct {
	mu     sync.Mutex
	result gesture.Result
	err    error
	calls  []gesture.Video
	closed bool
}

// NewMock creates a Mock answering gesture 0 with probability 0.
func NewMock() *Mock {
	return &Mock{}
}

// SetResult sets the result that will be returned by GetGesture.
func (m *Mock) SetResult(r gesture.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = r
}

// SetError sets the error that will be returned by GetGesture.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetGesture records the call and returns the configured result or error.
func (m *Mock) GetGesture(ctx context.Context, video *gesture.Video) (*gesture.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if video != nil {
		m.calls = append(m.calls, *video)
	}
	if m.err != nil {
		return nil, m.err
	}
	r := m.result
	return &r, nil
}

// Calls returns the videos received so far.
func (m *Mock) Calls() []gesture.Video {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]gesture.Video(nil), m.calls...)
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
