package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a logger for the given level (debug|info|warn|error) and
// format (text|json). Unknown levels fall back to info.
func New(level, format string) *logrus.Logger {
	return NewWithOutput(os.Stderr, level, format)
}

func NewWithOutput(out io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()
	l.Out = out

	switch strings.ToLower(format) {
	case "json":
		l.Formatter = &logrus.JSONFormatter{}
	default:
		l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	switch strings.ToLower(level) {
	case "error":
		l.Level = logrus.ErrorLevel
	case "warn":
		l.Level = logrus.WarnLevel
	case "debug":
		l.Level = logrus.DebugLevel
	default:
		l.Level = logrus.InfoLevel
	}
	return l
}

// Prefixed returns an entry tagged with the component prefix.
func Prefixed(l *logrus.Logger, prefix string) *logrus.Entry {
	return l.WithField("prefix", prefix)
}

// Discard is a logger for tests.
func Discard() *logrus.Entry {
	return Prefixed(NewWithOutput(io.Discard, "error", "text"), "test")
}
