// Command gestureclient samples webcam frames, sends them in batches to the
// ImageBasedGestureRecognition service and prints every recognized gesture.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/robocomp/gesturecomp/internal/capture"
	"github.com/robocomp/gesturecomp/internal/component"
	"github.com/robocomp/gesturecomp/internal/config"
	"github.com/robocomp/gesturecomp/internal/gesture"
	"github.com/robocomp/gesturecomp/internal/log"
	"github.com/robocomp/gesturecomp/internal/server"
	"github.com/robocomp/gesturecomp/internal/worker"
)

func main() {
	component.Execute(component.NewCommand(
		"gestureclient",
		"Image based gesture recognition client",
		run,
	))
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := log.Component("gestureclient")

	ep, err := cfg.Proxy(gesture.InterfaceName)
	if err != nil {
		logger.WithError(err).Error("failed to resolve recognition proxy")
		return component.ErrConnections
	}
	proxy := gesture.NewProxy(ep.URL(), gesture.WithTimeout(ep.Timeout))
	defer proxy.Close()

	params := cfg.Parameters()
	wcfg, err := worker.ParseParams(worker.DefaultConfig(), params)
	if err != nil {
		return fmt.Errorf("invalid parameters in %s: %w", cfg.Path(), err)
	}

	device, err := cfg.Int("CameraDevice", 0)
	if err != nil {
		return err
	}

	camera := capture.NewCamera(device)
	if err := camera.Open(); err != nil {
		return err
	}
	defer camera.Close()

	w, err := worker.New(wcfg, camera, proxy, worker.NewPrintSink(os.Stdout), worker.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := w.SetParams(params); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	behaviorEp, err := cfg.Endpoints("CommonBehavior")
	switch {
	case err == nil:
		srv := server.New(server.Config{
			Monitor: component.NewBehavior(w, cfg.Path(), cancel, logger),
			Frames:  w,
			Logger:  log.Component("behavior"),
		})
		g.Go(func() error {
			return srv.ListenAndServe(gctx, behaviorEp.Address())
		})
	case errors.Is(err, config.ErrMissingProperty):
		logger.Debug("CommonBehavior not configured")
	default:
		logger.WithError(err).Error("invalid CommonBehavior endpoint")
		return component.ErrConnections
	}

	logger.WithFields(logrus.Fields{
		"proxy":         ep.URL(),
		"camera":        device,
		"batch_size":    wcfg.BatchSize,
		"frame_fps":     wcfg.FrameFPS,
		"inference_fps": wcfg.InferenceFPS,
	}).Info("gesture client starting")

	g.Go(func() error {
		return w.Run(gctx)
	})

	return g.Wait()
}
