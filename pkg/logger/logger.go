// Package logger provides the process-wide diagnostic log. Disk and dispatch
// failures are recorded here rather than surfaced as crashes.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	log     *logrus.Logger
	logFile *os.File
)

// Init initializes the global logger with the specified log file path.
// When verbose is set, debug messages are recorded and everything is also
// written to stderr.
func Init(logPath string, verbose bool) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	logFile = f

	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
		l.SetOutput(io.MultiWriter(f, os.Stderr))
	} else {
		l.SetLevel(logrus.InfoLevel)
		l.SetOutput(f)
	}
	log = l

	return nil
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	log = nil
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	if l := get(); l != nil {
		l.Infof(format, v...)
	}
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	if l := get(); l != nil {
		l.Debugf(format, v...)
	}
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	if l := get(); l != nil {
		l.Warnf(format, v...)
	}
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	if l := get(); l != nil {
		l.Errorf(format, v...)
	}
}

func get() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	return log
}
