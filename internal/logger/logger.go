package logger

import (
	"io"
	"os"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

var std atomic.Pointer[log.Logger]

func init() {
	std.Store(New(os.Stdout, "info"))
}

// New creates a leveled, timestamped logger writing to w.
// Unknown levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "hearts",
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// Init replaces the process-wide logger.
func Init(level string) *log.Logger {
	l := New(os.Stdout, level)
	std.Store(l)
	return l
}

// Default returns the process-wide logger.
func Default() *log.Logger {
	return std.Load()
}

// Component returns a child of the process-wide logger with the given prefix.
func Component(name string) *log.Logger {
	return Default().WithPrefix(name)
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	Default().Infof(format, args...)
}

// LogError logs an error message
func LogError(format string, args ...any) {
	Default().Errorf(format, args...)
}

// LogPanic logs a panic with stack trace
func LogPanic(r any) {
	Default().Error("[PANIC] recovered", "panic", r, "stack", string(debug.Stack()))
}
