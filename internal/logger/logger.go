// Package logger builds the process logger. Components log through entries
// tagged with their name instead of the global logrus instance.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger at the given level. Unknown levels fall back to
// info.
func New(level string) *logrus.Logger {
	return NewWithOutput(level, os.Stdout)
}

func NewWithOutput(level string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(out)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Discard is a logger for tests.
func Discard() *logrus.Logger {
	return NewWithOutput("panic", io.Discard)
}

// WithComponent tags every entry with the emitting component.
func WithComponent(l logrus.FieldLogger, name string) *logrus.Entry {
	if l == nil {
		l = Discard()
	}
	return l.WithField("component", name)
}

// LogError records a failed operation with its context.
func LogError(entry *logrus.Entry, op string, err error, fields logrus.Fields) {
	e := entry.WithField("op", op)
	if len(fields) > 0 {
		e = e.WithFields(fields)
	}
	e.Error(err.Error())
}
