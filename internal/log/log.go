// Package log provides structured logging for the gesture components.
// It wraps logrus with the defaults both binaries share.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// Init initializes the global logger with the specified level.
// Valid levels are the logrus level names; anything else falls back to info.
func Init(level string) {
	once.Do(func() {
		logger = New(os.Stderr, level)
	})
}

// New builds a standalone logger writing to out.
// JSON output is used when GO_ENV=production, text otherwise.
func New(out io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if os.Getenv("GO_ENV") == "production" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return l
}

// L returns the global logger instance.
func L() *logrus.Logger {
	if logger == nil {
		Init("info")
	}
	return logger
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return L().WithField("component", name)
}

// Discard returns an entry that drops everything. Used by tests.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
