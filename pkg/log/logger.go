package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "15:04:05.000"

// NewLogger creates a logrus.Logger writing to out at the given level.
// An unparseable level keeps "info" and logs a warning instead of failing.
func NewLogger(levelStr string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat})
	logger.SetLevel(logrus.InfoLevel)

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", levelStr, err)
		return logger
	}
	logger.SetLevel(level)
	logger.Debugf("Setting log level to: %s", level.String())
	return logger
}

// Component returns an entry tagged with the component name
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithField("component", name)
}

// Discard returns an entry that drops everything, for tests and library callers without a logger
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

// BadgerLogrusAdapter implements badger.Logger using a logrus entry
type BadgerLogrusAdapter struct {
	*logrus.Entry
}

// NewBadgerLogrusAdapter creates a new adapter
func NewBadgerLogrusAdapter(entry *logrus.Entry) *BadgerLogrusAdapter {
	return &BadgerLogrusAdapter{entry}
}

// Errorf logs an error message
func (l *BadgerLogrusAdapter) Errorf(f string, v ...interface{}) { l.Entry.Errorf(f, v...) }

// Warningf logs a warning message
func (l *BadgerLogrusAdapter) Warningf(f string, v ...interface{}) { l.Entry.Warningf(f, v...) }

// Infof logs at debug level
func (l *BadgerLogrusAdapter) Infof(f string, v ...interface{}) { l.Entry.Debugf(f, v...) }

// Debugf logs a debug message
func (l *BadgerLogrusAdapter) Debugf(f string, v ...interface{}) { l.Entry.Debugf(f, v...) }
