// Package logger provides leveled logging with support for debug, info, warn, and error levels.
// It wraps logrus behind a small printf-style API so call sites stay terse.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var defaultLogger *logrus.Logger

// Init initializes the default logger with the specified level and format.
// Unknown levels fall back to info; format "text" selects the text formatter,
// anything else JSON.
func Init(level string, format string) {
	InitWithOutput(level, format, os.Stderr)
}

// InitWithOutput is Init with an explicit writer.
func InitWithOutput(level string, format string, out io.Writer) {
	l := logrus.New()
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.ToLower(format) == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	defaultLogger = l
}

// With returns an entry carrying fields, for request-scoped logging.
func With(fields map[string]interface{}) *logrus.Entry {
	if defaultLogger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return logrus.NewEntry(l).WithFields(fields)
	}
	return defaultLogger.WithFields(fields)
}

// Debug logs a message at DebugLevel
func Debug(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Debugf(format, args...)
	}
}

// Info logs a message at InfoLevel
func Info(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Infof(format, args...)
	}
}

// Warn logs a message at WarnLevel
func Warn(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Warnf(format, args...)
	}
}

// Error logs a message at ErrorLevel
func Error(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Errorf(format, args...)
	}
}

// Fatal logs a message at FatalLevel and exits
func Fatal(format string, args ...interface{}) {
	if defaultLogger == nil {
		Init("info", "text")
	}
	defaultLogger.Fatalf(format, args...)
}
