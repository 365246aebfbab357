package worker

import "time"

// Timer is a rate limiter driven by caller-supplied timestamps.
//
// IsReady reports true on its first call and afterwards only once the time
// since the last true result strictly exceeds 1000/fps milliseconds. The
// baseline moves only on a true result. Timestamps are assumed monotonic:
// a timestamp earlier than the baseline is never ready and does not move it.
type Timer struct {
	fps  float64
	ms   float64
	tick int64
	set  bool
}

// NewTimer creates a Timer firing at most fps times per second.
// A non-positive fps yields a timer that is ready on every new timestamp.
func NewTimer(fps float64) *Timer {
	t := &Timer{fps: fps}
	if fps > 0 {
		t.ms = 1000 / fps
	}
	return t
}

// IsReady reports whether the timer fires at now (milliseconds).
func (t *Timer) IsReady(now int64) bool {
	if !t.set || float64(now-t.tick) > t.ms {
		t.tick = now
		t.set = true
		return true
	}
	return false
}

// FPS returns the configured rate.
func (t *Timer) FPS() float64 {
	return t.fps
}

// Interval returns the minimum time between two ready results.
func (t *Timer) Interval() time.Duration {
	return time.Duration(t.ms * float64(time.Millisecond))
}

// Reset clears the baseline so the next call is ready.
func (t *Timer) Reset() {
	t.tick = 0
	t.set = false
}
