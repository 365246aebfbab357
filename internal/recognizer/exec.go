// Package recognizer provides the backends that answer getGesture inside
// the detector component. The recognition algorithm itself lives in an
// external program; this package only moves requests and results.
package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/robocomp/gesturecomp/internal/gesture"
)

// DefaultTimeout bounds one recognizer run.
const DefaultTimeout = 5 * time.Second

// ErrNoCommand is returned when an Exec recognizer has nothing to run.
var ErrNoCommand = errors.New("recognizer command is empty")

// Exec runs an external recognizer once per request. The Video is written
// to the program's stdin as JSON and a Result is read back from stdout.
type Exec struct {
	path    string
	args    []string
	dir     string
	timeout time.Duration
}

// NewExec creates an Exec recognizer from a command line such as
// "python3 scripts/recognize.py --model lstm".
func NewExec(command, dir string, timeout time.Duration) (*Exec, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, ErrNoCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Exec{
		path:    fields[0],
		args:    fields[1:],
		dir:     dir,
		timeout: timeout,
	}, nil
}

// GetGesture runs the recognizer with the video on stdin and parses its
// stdout as a Result.
func (e *Exec) GetGesture(ctx context.Context, video *gesture.Video) (*gesture.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.path, e.args...)
	cmd.Dir = e.dir
	// Children of the recognizer may keep stdout open after it is killed.
	cmd.WaitDelay = time.Second

	reqJSON, err := json.Marshal(video)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal video: %w", err)
	}
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("recognizer timeout after %v", e.timeout)
	}

	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("recognizer failed: %w, stderr: %s", err, msg)
		}
		return nil, fmt.Errorf("recognizer failed: %w", err)
	}

	var result gesture.Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse recognizer output: %w, stdout: %s", err, stdout.String())
	}

	return &result, nil
}

// Close is a no-op; every run owns its own process.
func (e *Exec) Close() error {
	return nil
}
