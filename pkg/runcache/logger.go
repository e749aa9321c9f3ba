package runcache

import (
	"log"
)

// Logger forwards BadgerDB messages to a standard logger with a
// [RUNCACHE] prefix. Info and debug messages are dropped unless verbose.
type Logger struct {
	l       *log.Logger
	verbose bool
}

// NewLogger wraps l. A nil l uses the standard logger.
func NewLogger(l *log.Logger, verbose bool) *Logger {
	if l == nil {
		l = log.Default()
	}
	return &Logger{l: l, verbose: verbose}
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.l.Printf("[RUNCACHE] ERROR: "+format, args...)
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.l.Printf("[RUNCACHE] WARN: "+format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l.verbose {
		l.l.Printf("[RUNCACHE] "+format, args...)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.verbose {
		l.l.Printf("[RUNCACHE] DEBUG: "+format, args...)
	}
}
