package worker

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Compute runs one polling loop step and reports whether a batch was
// dispatched. The frame timer decides whether a new frame is read; the
// batch, including that frame, is then dispatched when the inference timer
// fires and the threshold is reached. The inference timer is consulted
// before the batch length, so its baseline advances even when the batch is
// still short.
//
// Compute is not reentrant; concurrent calls are serialized.
func (w *Worker) Compute(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()

	if w.frameTimer.IsReady(now) {
		w.readFrame()
	}

	if w.inferenceTimer.IsReady(now) && w.batch.Ready() {
		w.dispatch(ctx)
		return true
	}

	return false
}

// readFrame appends one camera frame to the batch. A failed read is
// counted and skipped. Called with w.mu held.
func (w *Worker) readFrame() {
	frame, err := w.source.Read()
	if err != nil {
		w.readFailures.Add(1)
		w.logger.WithError(err).Warn("camera read failed")
		return
	}

	w.batch.Append(frame)
	w.frames.Add(1)

	w.lastMu.Lock()
	w.last, w.seen = frame, true
	w.lastMu.Unlock()
}

// dispatch sends the whole batch to the recognizer and emits the result.
// The batch is emptied whatever the outcome. Called with w.mu held.
func (w *Worker) dispatch(ctx context.Context) {
	n := w.batch.Len()

	video, err := w.batch.Take()
	if err != nil {
		if errors.Is(err, ErrFrameShape) {
			w.droppedFrames.Add(uint64(n))
			w.dispatchFailures.Add(1)
			w.logger.WithError(err).WithField("dropped", n).Error("failed to build video from batch")
		}
		return
	}

	w.dispatches.Add(1)

	result, err := w.recognizer.GetGesture(ctx, video)
	if err != nil {
		w.droppedFrames.Add(uint64(n))
		w.dispatchFailures.Add(1)
		w.logger.WithError(err).WithField("dropped", n).Error("getGesture failed")
		return
	}

	w.logger.WithFields(logrus.Fields{
		"frames":      n,
		"gesture":     result.GestureIndex,
		"probability": result.GestureProb,
	}).Debug("gesture recognized")

	if err := w.sink.Emit(*result); err != nil {
		w.logger.WithError(err).Warn("failed to emit result")
	}
}
