package recognizer

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robocomp/gesturecomp/internal/gesture"
	"github.com/robocomp/gesturecomp/internal/log"
)

// DefaultIdleTimeout is how long an unused Service process stays alive.
const DefaultIdleTimeout = 30 * time.Second

// Service keeps one recognizer process running across requests, so models
// are loaded once. Each request is a single JSON line on stdin; the process
// answers with a single JSON line on stdout. The process is started lazily
// and stopped after an idle period.
type Service struct {
	path    string
	args    []string
	dir     string
	timeout time.Duration
	idle    time.Duration
	logger  *logrus.Entry

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	stderr    *io.PipeWriter
	started   bool
	starts    int
	idleTimer *time.Timer
	// idleGen invalidates idle callbacks that fired but have not yet
	// acquired mu.
	idleGen uint64
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithIdleTimeout sets how long the process may sit unused. Zero keeps it
// running until Close.
func WithIdleTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.idle = d }
}

// WithServiceLogger sets the entry receiving the process's stderr.
func WithServiceLogger(l *logrus.Entry) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service from a command line. The process is not
// started until the first request.
func NewService(command, dir string, timeout time.Duration, opts ...ServiceOption) (*Service, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, ErrNoCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	s := &Service{
		path:    fields[0],
		args:    fields[1:],
		dir:     dir,
		timeout: timeout,
		idle:    DefaultIdleTimeout,
		logger:  log.Component("recognizer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type reply struct {
	line string
	err  error
}

// GetGesture sends the video to the running process and waits for its
// answer. A request that times out or is canceled kills the process; the
// next request starts a new one.
func (s *Service) GetGesture(ctx context.Context, video *gesture.Video) (*gesture.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := json.Marshal(video)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal video: %w", err)
	}
	req = append(req, '\n')

	if err := s.ensureStarted(); err != nil {
		return nil, err
	}

	stdin, stdout := s.stdin, s.stdout
	ch := make(chan reply, 1)
	go func() {
		if _, err := stdin.Write(req); err != nil {
			ch <- reply{err: fmt.Errorf("write request: %w", err)}
			return
		}
		line, err := stdout.ReadString('\n')
		ch <- reply{line: line, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			s.kill()
			return nil, fmt.Errorf("recognizer service: %w", r.err)
		}

		var result gesture.Result
		if err := json.Unmarshal([]byte(r.line), &result); err != nil {
			// The rest of a bad answer would be read as the next reply
			s.kill()
			return nil, fmt.Errorf("failed to parse recognizer output: %w, stdout: %s", err, strings.TrimSpace(r.line))
		}
		s.resetIdleTimer()
		return &result, nil

	case <-timer.C:
		s.kill()
		<-ch
		return nil, fmt.Errorf("recognizer timeout after %v", s.timeout)

	case <-ctx.Done():
		s.kill()
		<-ch
		return nil, ctx.Err()
	}
}

// Running reports whether the process is alive.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Starts returns how many times the process has been started.
func (s *Service) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// Close stops the process. It is safe to call more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown()
}

func (s *Service) ensureStarted() error {
	if s.started {
		return nil
	}

	cmd := exec.Command(s.path, s.args...)
	cmd.Dir = s.dir
	cmd.WaitDelay = time.Second

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Forward the recognizer's diagnostics to the log
	stderr := s.logger.WriterLevel(logrus.WarnLevel)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		stderr.Close()
		return fmt.Errorf("start recognizer service: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.stderr = stderr
	s.started = true
	s.starts++

	s.logger.WithField("pid", cmd.Process.Pid).Info("recognizer service started")
	return nil
}

// kill stops a process that may not be reading its input.
func (s *Service) kill() {
	if !s.started {
		return
	}
	s.cmd.Process.Kill()
	s.shutdown()
}

func (s *Service) shutdown() error {
	if !s.started {
		return nil
	}

	s.idleGen++
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}

	s.stdin.Close()
	err := s.cmd.Wait()
	s.stderr.Close()

	s.started = false
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil
	s.stderr = nil

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && !exitErr.Exited() {
		// Killed by us
		return nil
	}
	return err
}

func (s *Service) resetIdleTimer() {
	if s.idle <= 0 {
		return
	}
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleGen++
	gen := s.idleGen
	s.idleTimer = time.AfterFunc(s.idle, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.idleGen {
			return
		}
		s.logger.Debug("recognizer service idle, stopping")
		s.shutdown()
	})
}
