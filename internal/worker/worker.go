// Package worker implements the gesture client's polling loop: frames are
// sampled from a camera at one rate, buffered, and dispatched in batches to
// the recognition service at a slower rate.
package worker

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robocomp/gesturecomp/internal/capture"
	"github.com/robocomp/gesturecomp/internal/gesture"
	"github.com/robocomp/gesturecomp/internal/log"
)

// Loop defaults.
const (
	DefaultPeriod       = 30 * time.Millisecond
	DefaultFrameFPS     = 30
	DefaultInferenceFPS = 10
	DefaultBatchSize    = 64
)

// Parameter keys understood by SetParams.
const (
	ParamPeriod       = "Period"
	ParamFrameFPS     = "FrameFPS"
	ParamInferenceFPS = "InferenceFPS"
	ParamBatchSize    = "BatchSize"
)

// ErrInvalidConfig is returned for out-of-range loop settings.
var ErrInvalidConfig = errors.New("invalid worker config")

// State is the lifecycle state reported through CommonBehavior.
type State string

const (
	StateStarting State = "Starting"
	StateRunning  State = "Running"
)

// Config holds the polling loop settings.
type Config struct {
	// Period is the interval between two polling loop invocations.
	Period time.Duration
	// FrameFPS bounds how often a frame is read from the camera.
	FrameFPS float64
	// InferenceFPS bounds how often a batch may be dispatched.
	InferenceFPS float64
	// BatchSize is the number of frames required before dispatch.
	BatchSize int
}

// DefaultConfig returns the settings of the original component.
func DefaultConfig() Config {
	return Config{
		Period:       DefaultPeriod,
		FrameFPS:     DefaultFrameFPS,
		InferenceFPS: DefaultInferenceFPS,
		BatchSize:    DefaultBatchSize,
	}
}

// Validate checks that every setting is positive.
func (c Config) Validate() error {
	switch {
	case c.Period <= 0:
		return fmt.Errorf("%w: period %v", ErrInvalidConfig, c.Period)
	case c.FrameFPS <= 0:
		return fmt.Errorf("%w: frame fps %v", ErrInvalidConfig, c.FrameFPS)
	case c.InferenceFPS <= 0:
		return fmt.Errorf("%w: inference fps %v", ErrInvalidConfig, c.InferenceFPS)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size %d", ErrInvalidConfig, c.BatchSize)
	}
	return nil
}

// ParseParams applies the known keys of params on top of base.
// Unknown keys are ignored.
func ParseParams(base Config, params map[string]string) (Config, error) {
	cfg := base

	if v, ok := params[ParamPeriod]; ok {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return base, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, ParamPeriod, v)
		}
		cfg.Period = time.Duration(ms) * time.Millisecond
	}
	if v, ok := params[ParamFrameFPS]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return base, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, ParamFrameFPS, v)
		}
		cfg.FrameFPS = f
	}
	if v, ok := params[ParamInferenceFPS]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return base, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, ParamInferenceFPS, v)
		}
		cfg.InferenceFPS = f
	}
	if v, ok := params[ParamBatchSize]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return base, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, ParamBatchSize, v)
		}
		cfg.BatchSize = n
	}

	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Stats counts what the loop has done since start.
type Stats struct {
	Frames           uint64 `json:"frames"`
	ReadFailures     uint64 `json:"readFailures"`
	Dispatches       uint64 `json:"dispatches"`
	DispatchFailures uint64 `json:"dispatchFailures"`
	DroppedFrames    uint64 `json:"droppedFrames"`
}

// Worker owns the camera, the batch and both timers. Compute is the body
// of the polling loop; Run drives it at the configured period.
type Worker struct {
	mu             sync.Mutex
	cfg            Config
	params         map[string]string
	source         capture.Source
	recognizer     gesture.Recognizer
	sink           Sink
	logger         *logrus.Entry
	now            func() int64
	frameTimer     *Timer
	inferenceTimer *Timer
	batch          *Batch
	periodCh       chan time.Duration

	lastMu sync.RWMutex
	last   capture.Frame
	seen   bool

	startedAt time.Time
	state     atomic.Value

	frames           atomic.Uint64
	readFailures     atomic.Uint64
	dispatches       atomic.Uint64
	dispatchFailures atomic.Uint64
	droppedFrames    atomic.Uint64
}

// Option configures a Worker.
type Option func(*Worker)

// WithClock replaces the millisecond clock read at the start of Compute.
func WithClock(now func() int64) Option {
	return func(w *Worker) { w.now = now }
}

// WithLogger sets the log entry used by the loop.
func WithLogger(l *logrus.Entry) Option {
	return func(w *Worker) { w.logger = l }
}

// New creates a Worker. The source is expected to be open already.
func New(cfg Config, source capture.Source, recognizer gesture.Recognizer, sink Sink, opts ...Option) (*Worker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil || recognizer == nil || sink == nil {
		return nil, fmt.Errorf("%w: source, recognizer and sink are required", ErrInvalidConfig)
	}

	w := &Worker{
		cfg:            cfg,
		params:         make(map[string]string),
		source:         source,
		recognizer:     recognizer,
		sink:           sink,
		logger:         log.Component("worker"),
		now:            func() int64 { return time.Now().UnixMilli() },
		frameTimer:     NewTimer(cfg.FrameFPS),
		inferenceTimer: NewTimer(cfg.InferenceFPS),
		batch:          NewBatch(cfg.BatchSize),
		periodCh:       make(chan time.Duration, 1),
		startedAt:      time.Now(),
	}
	w.state.Store(StateStarting)

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// SetParams applies component parameters. On error nothing changes.
func (w *Worker) SetParams(params map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cfg, err := ParseParams(w.cfg, params)
	if err != nil {
		return err
	}

	if cfg.FrameFPS != w.cfg.FrameFPS {
		w.frameTimer = NewTimer(cfg.FrameFPS)
	}
	if cfg.InferenceFPS != w.cfg.InferenceFPS {
		w.inferenceTimer = NewTimer(cfg.InferenceFPS)
	}
	if cfg.BatchSize != w.cfg.BatchSize {
		w.batch.SetThreshold(cfg.BatchSize)
	}
	if cfg.Period != w.cfg.Period {
		w.notifyPeriod(cfg.Period)
	}

	w.cfg = cfg
	maps.Copy(w.params, params)

	w.logger.WithFields(logrus.Fields{
		"period":        cfg.Period,
		"frame_fps":     cfg.FrameFPS,
		"inference_fps": cfg.InferenceFPS,
		"batch_size":    cfg.BatchSize,
	}).Debug("parameters applied")

	return nil
}

// Params returns the parameters applied so far.
func (w *Worker) Params() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.params)
}

// Config returns the current loop settings.
func (w *Worker) Config() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// Period returns the polling period.
func (w *Worker) Period() time.Duration {
	return w.Config().Period
}

// SetPeriod changes the polling period. Run picks it up on its next wakeup.
func (w *Worker) SetPeriod(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: period %v", ErrInvalidConfig, d)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.cfg.Period = d
	w.params[ParamPeriod] = strconv.FormatInt(d.Milliseconds(), 10)
	w.notifyPeriod(d)
	return nil
}

// notifyPeriod hands the latest period to Run, replacing any unread one.
// Called with w.mu held.
func (w *Worker) notifyPeriod(d time.Duration) {
	select {
	case <-w.periodCh:
	default:
	}
	w.periodCh <- d
}

// BatchLen returns the number of frames waiting for dispatch.
func (w *Worker) BatchLen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.batch.Len()
}

// LastFrame returns the most recently captured frame, if any.
// The returned Data must not be modified.
func (w *Worker) LastFrame() (capture.Frame, bool) {
	w.lastMu.RLock()
	defer w.lastMu.RUnlock()
	return w.last, w.seen
}

// State returns the lifecycle state.
func (w *Worker) State() State {
	return w.state.Load().(State)
}

// TimeAwake returns how long the worker has existed.
func (w *Worker) TimeAwake() time.Duration {
	return time.Since(w.startedAt)
}

// Stats returns a snapshot of the loop counters.
func (w *Worker) Stats() Stats {
	return Stats{
		Frames:           w.frames.Load(),
		ReadFailures:     w.readFailures.Load(),
		Dispatches:       w.dispatches.Load(),
		DispatchFailures: w.dispatchFailures.Load(),
		DroppedFrames:    w.droppedFrames.Load(),
	}
}
