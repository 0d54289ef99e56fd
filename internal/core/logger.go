package core

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/julien-sobczak/the-noteexporter/pkg/resync"
)

var (
	// Lazy-load and ensure a single read
	loggerOnce      resync.Once
	loggerSingleton *Logger
)

type VerboseLevel int

const (
	VerboseOff VerboseLevel = iota
	VerboseInfo
	VerboseDebug
	VerboseTrace
)

func CurrentLogger() *Logger {
	loggerOnce.Do(func() {
		loggerSingleton = NewLogger(os.Stderr)
	})
	return loggerSingleton
}

// Logger prints traces on stderr depending on the verbose level.
// Warnings and fatal errors are always printed.
type Logger struct {
	verbose VerboseLevel
	backend *log.Logger
}

func NewLogger(w io.Writer) *Logger {
	return &Logger{
		verbose: VerboseOff,
		backend: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Level:           log.DebugLevel,
		}),
	}
}

// SetVerboseLevel overrides the default verbose level
func (l *Logger) SetVerboseLevel(level VerboseLevel) *Logger {
	l.verbose = level
	return l
}

func (l *Logger) VerboseLevel() VerboseLevel {
	return l.verbose
}

func (l *Logger) Fatal(v ...any) {
	l.backend.Fatal(fmt.Sprint(v...))
}
func (l *Logger) Fatalf(format string, v ...any) {
	l.backend.Fatalf(format, v...)
}

func (l *Logger) Warn(v ...any) {
	l.backend.Warn(fmt.Sprint(v...))
}
func (l *Logger) Warnf(format string, v ...any) {
	l.backend.Warnf(format, v...)
}

func (l *Logger) Info(v ...any) {
	if l.verbose >= VerboseInfo {
		l.backend.Info(fmt.Sprint(v...))
	}
}
func (l *Logger) Infof(format string, v ...any) {
	if l.verbose >= VerboseInfo {
		l.backend.Infof(format, v...)
	}
}

func (l *Logger) Debug(v ...any) {
	if l.verbose >= VerboseDebug {
		l.backend.Debug(fmt.Sprint(v...))
	}
}
func (l *Logger) Debugf(format string, v ...any) {
	if l.verbose >= VerboseDebug {
		l.backend.Debugf(format, v...)
	}
}

// Trace messages are printed at the debug level of the backend.
func (l *Logger) Trace(v ...any) {
	if l.verbose >= VerboseTrace {
		l.backend.Debug(fmt.Sprint(v...), "trace", true)
	}
}
func (l *Logger) Tracef(format string, v ...any) {
	if l.verbose >= VerboseTrace {
		l.backend.Debug(fmt.Sprintf(format, v...), "trace", true)
	}
}
