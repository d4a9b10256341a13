// Package logging centralises the logrus configuration used across the
// client, rather than letting every package reach for its own
// fmt.Printf/log.Printf, following the pattern kedacore-keda's scale
// handler uses to thread a single structured logger through a
// reconciliation loop.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Level mirrors logrus.Level so callers of this package don't need to
// import logrus directly just to configure verbosity.
type Level = logrus.Level

const (
	LevelError = logrus.ErrorLevel
	LevelWarn  = logrus.WarnLevel
	LevelInfo  = logrus.InfoLevel
	LevelDebug = logrus.DebugLevel
	LevelTrace = logrus.TraceLevel
)

// Options configures the logger returned by New.
type Options struct {
	Level  Level
	Output io.Writer
	JSON   bool
}

// New builds a *logrus.Logger configured per opts. A zero Options value
// yields an Info-level, text-formatted logger writing to stderr.
func New(opts Options) *logrus.Logger {
	l := logrus.New()
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stderr)
	}
	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level := opts.Level
	if level == 0 {
		level = LevelInfo
	}
	l.SetLevel(level)
	return l
}

// ForRoom returns a *logrus.Entry scoped to a single room, so every log
// line the lifecycle manager and feature packages emit for that room
// carries its name without every call site repeating it.
func ForRoom(logger *logrus.Logger, roomName string) *logrus.Entry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logger.WithField("room", roomName)
}
