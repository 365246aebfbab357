// Command bodyhandjoints hosts the ImageBasedGestureRecognition interface,
// answering getGesture with an external recognizer program.
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/robocomp/gesturecomp/internal/component"
	"github.com/robocomp/gesturecomp/internal/config"
	"github.com/robocomp/gesturecomp/internal/database"
	"github.com/robocomp/gesturecomp/internal/gesture"
	"github.com/robocomp/gesturecomp/internal/log"
	"github.com/robocomp/gesturecomp/internal/recognizer"
	"github.com/robocomp/gesturecomp/internal/server"
	"github.com/robocomp/gesturecomp/internal/server/api"
	"github.com/robocomp/gesturecomp/internal/store"
)

func main() {
	component.Execute(component.NewCommand(
		"bodyhandjoints",
		"Body and hand joints detector serving gesture recognition",
		run,
	))
}

type recognitionLog interface {
	api.RecognitionLog
	Close() error
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := log.Component("bodyhandjoints")

	ep, err := cfg.Endpoints(gesture.InterfaceName)
	if err != nil {
		logger.WithError(err).Error("failed to resolve recognition endpoint")
		return component.ErrConnections
	}

	rec, err := newRecognizer(cfg, logger)
	if err != nil {
		return err
	}
	defer rec.Close()

	recLog, err := openLog(ctx, cfg.StringOr("Storage.DSN", ""))
	if err != nil {
		logger.WithError(err).Error("failed to open recognition log")
		return component.ErrConnections
	}

	srvCfg := server.Config{
		Recognizer: rec,
		Logger:     log.Component("server"),
	}
	if recLog != nil {
		defer recLog.Close()
		srvCfg.Log = recLog
	}

	return server.New(srvCfg).ListenAndServe(ctx, ep.Address())
}

func newRecognizer(cfg *config.Config, logger *logrus.Entry) (gesture.Recognizer, error) {
	command := cfg.StringOr("Recognizer.Command", "")
	if command == "" {
		logger.Warn("Recognizer.Command not set, answering with the mock recognizer")
		return recognizer.NewMock(), nil
	}

	timeout, err := cfg.Millis("Recognizer.Timeout", recognizer.DefaultTimeout)
	if err != nil {
		return nil, err
	}

	persistent, err := strconv.ParseBool(cfg.StringOr("Recognizer.Persistent", "false"))
	if err != nil {
		return nil, fmt.Errorf("%w: Recognizer.Persistent: %v", config.ErrInvalidProperty, err)
	}

	dir := cfg.StringOr("Recognizer.Dir", "")
	logger.WithFields(logrus.Fields{
		"command":    command,
		"timeout":    timeout,
		"persistent": persistent,
	}).Info("using external recognizer")

	if persistent {
		return recognizer.NewService(command, dir, timeout, recognizer.WithServiceLogger(logger))
	}
	return recognizer.NewExec(command, dir, timeout)
}

// openLog opens the recognition log named by dsn: PostgreSQL for a
// postgres:// URL, SQLite for a file path, none when empty.
func openLog(ctx context.Context, dsn string) (recognitionLog, error) {
	switch {
	case dsn == "":
		return nil, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return database.New(ctx, dsn)
	default:
		return store.New(dsn)
	}
}
