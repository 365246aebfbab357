package component

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robocomp/gesturecomp/internal/config"
	"github.com/robocomp/gesturecomp/internal/worker"
)

// Controlled is what a Behavior drives.
type Controlled interface {
	Period() time.Duration
	SetPeriod(time.Duration) error
	TimeAwake() time.Duration
	Params() map[string]string
	SetParams(map[string]string) error
	State() worker.State
}

// Behavior implements CommonBehavior for a running component.
type Behavior struct {
	target     Controlled
	configPath string
	cancel     context.CancelFunc
	logger     *logrus.Entry
}

// NewBehavior creates a Behavior. cancel stops the component; configPath is
// re-read on Reload.
func NewBehavior(target Controlled, configPath string, cancel context.CancelFunc, logger *logrus.Entry) *Behavior {
	return &Behavior{
		target:     target,
		configPath: configPath,
		cancel:     cancel,
		logger:     logger,
	}
}

func (b *Behavior) Period() time.Duration {
	return b.target.Period()
}

func (b *Behavior) SetPeriod(d time.Duration) error {
	if err := b.target.SetPeriod(d); err != nil {
		return err
	}
	b.logger.WithField("period", d).Info("period set")
	return nil
}

func (b *Behavior) TimeAwake() time.Duration {
	return b.target.TimeAwake()
}

// Kill requests an orderly shutdown.
func (b *Behavior) Kill() {
	b.logger.Info("shutdown requested")
	b.cancel()
}

func (b *Behavior) Parameters() map[string]string {
	return b.target.Params()
}

func (b *Behavior) SetParameters(params map[string]string) error {
	return b.target.SetParams(params)
}

// Reload re-reads the configuration file and applies its parameters.
func (b *Behavior) Reload() error {
	cfg, err := config.Load(b.configPath)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := b.target.SetParams(cfg.Parameters()); err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	b.logger.WithField("path", b.configPath).Info("configuration reloaded")
	return nil
}

func (b *Behavior) State() string {
	return string(b.target.State())
}
