package logging

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. Loggers derived from the same
// root share the root's level and output stream. It is safe for concurrent
// usage.
type Logger struct {
	// level is the maximum level at which the logger will emit output.
	level Level
	// scope is the dotted scope of the logger. It is empty for root loggers.
	scope string
	// output is the shared output sink.
	output *sink
}

// sink serializes writes to an underlying stream.
type sink struct {
	// lock serializes access to writer.
	lock sync.Mutex
	// writer is the underlying stream.
	writer io.Writer
}

// NewLogger creates a new root logger that writes entries at or below the
// specified level to the specified writer.
func NewLogger(level Level, writer io.Writer) *Logger {
	return &Logger{
		level:  level,
		output: &sink{writer: writer},
	}
}

// Level returns the logger's level. A nil logger reports LevelDisabled.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelDisabled
	}
	return l.level
}

// Sublogger creates a new sublogger with the specified name.
func (l *Logger) Sublogger(name string) *Logger {
	// If the logger is nil, then the sublogger will be as well.
	if l == nil {
		return nil
	}

	// Compute the new scope.
	scope := name
	if l.scope != "" {
		scope = l.scope + "." + name
	}

	// Create the new logger.
	return &Logger{
		level:  l.level,
		scope:  scope,
		output: l.output,
	}
}

// write formats and emits a single log line at the specified level.
func (l *Logger) write(level Level, line string) {
	// Check whether or not output is enabled at this level.
	if l == nil || level > l.level {
		return
	}

	// Apply the scope if necessary.
	if l.scope != "" {
		line = fmt.Sprintf("[%s] %s", l.scope, line)
	}

	// Colorize warnings and errors.
	switch level {
	case LevelError:
		line = color.RedString("%s", line)
	case LevelWarn:
		line = color.YellowString("%s", line)
	}

	// Prefix with a timestamp and level abbreviation.
	line = fmt.Sprintf("%s [%s] %s\n",
		time.Now().Format("2006-01-02 15:04:05.000000"),
		level.abbreviation(),
		line,
	)

	// Write the line. Output errors can't be reported anywhere useful.
	l.output.lock.Lock()
	l.output.writer.Write([]byte(line))
	l.output.lock.Unlock()
}

// Error logs errors with semantics equivalent to fmt.Sprint.
func (l *Logger) Error(v ...any) {
	l.write(LevelError, fmt.Sprint(v...))
}

// Errorf logs errors with semantics equivalent to fmt.Sprintf.
func (l *Logger) Errorf(format string, v ...any) {
	l.write(LevelError, fmt.Sprintf(format, v...))
}

// Warn logs warnings with semantics equivalent to fmt.Sprint.
func (l *Logger) Warn(v ...any) {
	l.write(LevelWarn, fmt.Sprint(v...))
}

// Warnf logs warnings with semantics equivalent to fmt.Sprintf.
func (l *Logger) Warnf(format string, v ...any) {
	l.write(LevelWarn, fmt.Sprintf(format, v...))
}

// Info logs basic execution information with semantics equivalent to
// fmt.Sprint.
func (l *Logger) Info(v ...any) {
	l.write(LevelInfo, fmt.Sprint(v...))
}

// Infof logs basic execution information with semantics equivalent to
// fmt.Sprintf.
func (l *Logger) Infof(format string, v ...any) {
	l.write(LevelInfo, fmt.Sprintf(format, v...))
}

// Debug logs advanced execution information with semantics equivalent to
// fmt.Sprint.
func (l *Logger) Debug(v ...any) {
	l.write(LevelDebug, fmt.Sprint(v...))
}

// Debugf logs advanced execution information with semantics equivalent to
// fmt.Sprintf.
func (l *Logger) Debugf(format string, v ...any) {
	l.write(LevelDebug, fmt.Sprintf(format, v...))
}

// Trace logs low-level execution information with semantics equivalent to
// fmt.Sprint.
func (l *Logger) Trace(v ...any) {
	l.write(LevelTrace, fmt.Sprint(v...))
}

// Tracef logs low-level execution information with semantics equivalent to
// fmt.Sprintf.
func (l *Logger) Tracef(format string, v ...any) {
	l.write(LevelTrace, fmt.Sprintf(format, v...))
}
