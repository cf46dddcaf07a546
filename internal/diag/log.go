// Package diag provides the leveled, categorized logging sink shared by the
// runtime components. Violation reports and allocator lifecycle milestones go
// through this package; the level and category names are stable strings that
// external tooling parses.
package diag

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Level classifies log severity.
type Level int32

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l < LevelTrace || l > LevelFatal {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Category identifies the runtime subsystem a log line belongs to.
type Category int32

const (
	CategoryGeneral Category = iota
	CategoryMemory
	CategoryGC
	CategoryFFI
	CategoryConcurrency
	CategorySecurity
	CategoryPerformance
)

var categoryNames = [...]string{
	"GENERAL", "MEMORY", "GC", "FFI", "CONCURRENCY", "SECURITY", "PERFORMANCE",
}

func (c Category) String() string {
	if c < CategoryGeneral || c > CategoryPerformance {
		return "GENERAL"
	}
	return categoryNames[c]
}

// Logger writes leveled, categorized lines through a standard library logger.
// Lines below the minimum level are dropped.
type Logger struct {
	min atomic.Int32
	out *log.Logger
}

// New returns a Logger writing to w at LevelInfo and above.
func New(w io.Writer) *Logger {
	l := &Logger{out: log.New(w, "", log.LstdFlags)}
	l.min.Store(int32(LevelInfo))
	return l
}

// SetMinLevel sets the minimum level that passes the filter.
func (l *Logger) SetMinLevel(min Level) { l.min.Store(int32(min)) }

// MinLevel returns the current minimum level.
func (l *Logger) MinLevel() Level { return Level(l.min.Load()) }

// SetOutput redirects the logger to w.
func (l *Logger) SetOutput(w io.Writer) { l.out.SetOutput(w) }

// Logf writes one line in the stable "[LEVEL:CATEGORY] message" shape.
func (l *Logger) Logf(level Level, category Category, format string, args ...interface{}) {
	if level < Level(l.min.Load()) {
		return
	}
	l.out.Printf("[%s:%s] %s", level, category, fmt.Sprintf(format, args...))
}

var std = New(os.Stderr)

// Default returns the process-wide logger.
func Default() *Logger { return std }

// SetOutput redirects the process-wide logger to w.
func SetOutput(w io.Writer) { std.SetOutput(w) }

// SetMinLevel sets the process-wide minimum level.
func SetMinLevel(min Level) { std.SetMinLevel(min) }

// Logf writes to the process-wide logger.
func Logf(level Level, category Category, format string, args ...interface{}) {
	std.Logf(level, category, format, args...)
}
