package worker

import (
	"context"
	"time"
)

// Run calls Compute every period until ctx is done. Period changes made
// through SetPeriod or SetParams take effect on the next wakeup.
func (w *Worker) Run(ctx context.Context) error {
	period := w.Period()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	w.state.Store(StateRunning)
	w.logger.WithField("period", period).Info("worker started")

	for {
		select {
		case <-ctx.Done():
			stats := w.Stats()
			w.logger.WithField("frames", stats.Frames).
				WithField("dispatches", stats.Dispatches).
				Info("worker stopped")
			return nil

		case d := <-w.periodCh:
			if d != period {
				period = d
				ticker.Reset(period)
				w.logger.WithField("period", period).Info("period changed")
			}

		case <-ticker.C:
			w.Compute(ctx)
		}
	}
}
