// Package logging provides the key/value logger shared by the command line tools.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger writes leveled messages with trailing key=value pairs. Every entry
// carries a component field holding the logger's prefix.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger writing to stdout with the given prefix.
func NewLogger(prefix string) *Logger {
	return New(os.Stdout, prefix, false)
}

// New creates a logger writing to w. A nil writer discards all output; debug
// lowers the level to logrus.DebugLevel.
func New(w io.Writer, prefix string, debug bool) *Logger {
	if w == nil {
		w = io.Discard
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	log.SetLevel(logrus.InfoLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}

	entry := logrus.NewEntry(log)
	if prefix != "" {
		entry = entry.WithField("component", prefix)
	}
	return &Logger{entry: entry}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, "", false)
}

// Info logs an informational message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	if l == nil {
		return
	}
	l.with(keysAndValues).Info(msg)
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	if l == nil {
		return
	}
	l.with(keysAndValues).Warn(msg)
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	if l == nil {
		return
	}
	l.with(keysAndValues).Error(msg)
}

// Debug logs a debug message with key-value pairs. It is a no-op unless the
// logger was created with debug enabled.
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	if l == nil {
		return
	}
	l.with(keysAndValues).Debug(msg)
}

// with turns alternating keys and values into logrus fields. A dangling key
// without a value is dropped.
func (l *Logger) with(keysAndValues []interface{}) *logrus.Entry {
	if len(keysAndValues) < 2 {
		return l.entry
	}
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}
