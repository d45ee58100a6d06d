package logging

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/fatih/color"
)

// writer is an io.Writer that splits its input stream into lines and writes
// those lines to an underlying logger.
type writer struct {
	// callback is the logging callback.
	callback func(string)
	// buffer is any incomplete line fragment left over from a previous write.
	buffer []byte
}

// trimCarriageReturn trims any single trailing carriage return from the end of
// a byte slice.
func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *writer) Write(buffer []byte) (int, error) {
	w.buffer = append(w.buffer, buffer...)

	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(buffer), nil
}

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything, so call sites never need a
// nil check before logging. Output below the logger's configured Level is
// silently dropped. It writes through its own log.Logger (created by
// NewLogger with log.LstdFlags), not the log package's standard logger.
type Logger struct {
	// prefix is any prefix specified for the logger.
	prefix string
	// level is the minimum level this logger (and its subloggers) emits.
	level Level
	// target is the underlying standard library logger.
	target *log.Logger
}

// RootLogger is the default root logger, writing to standard error at
// LevelInfo. Entry points that care about the MUTX_LOG_LEVEL environment
// variable should construct their own root logger with NewLoggerFromEnvironment
// instead of using this one directly.
var RootLogger = NewLogger(LevelInfo, os.Stderr)

// NewLogger creates a new root logger at the specified level, writing to the
// specified destination.
func NewLogger(level Level, destination io.Writer) *Logger {
	return &Logger{
		level:  level,
		target: log.New(destination, "", log.LstdFlags),
	}
}

// NewLoggerFromEnvironment creates a root logger whose level is taken from the
// MUTX_LOG_LEVEL environment variable (see pkg/logging.NameToLevel for
// recognized values). An absent or unrecognized value falls back to LevelInfo.
func NewLoggerFromEnvironment(destination io.Writer) *Logger {
	level, ok := NameToLevel(os.Getenv("MUTX_LOG_LEVEL"))
	if !ok {
		level = LevelInfo
	}
	return NewLogger(level, destination)
}

// Sublogger creates a new sublogger with the specified name.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}

	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}

	return &Logger{
		prefix: prefix,
		level:  l.level,
		target: l.target,
	}
}

// enabled reports whether the logger emits at the given level.
func (l *Logger) enabled(level Level) bool {
	return l != nil && l.level >= level
}

// output is the internal logging method.
func (l *Logger) output(calldepth int, line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	l.target.Output(calldepth, line)
}

// Print logs information at LevelInfo with semantics equivalent to fmt.Print.
func (l *Logger) Print(v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprint(v...))
	}
}

// Printf logs information at LevelInfo with semantics equivalent to fmt.Printf.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Println logs information at LevelInfo with semantics equivalent to fmt.Println.
func (l *Logger) Println(v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprintln(v...))
	}
}

// Writer returns an io.Writer that writes lines at LevelInfo using Println.
func (l *Logger) Writer() io.Writer {
	if !l.enabled(LevelInfo) {
		return ioutil.Discard
	}
	return &writer{callback: func(s string) { l.Println(s) }}
}

// Debug logs information at LevelDebug with semantics equivalent to fmt.Print.
func (l *Logger) Debug(v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(3, fmt.Sprint(v...))
	}
}

// Debugf logs information at LevelDebug with semantics equivalent to fmt.Printf.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Tracef logs information at LevelTrace with semantics equivalent to fmt.Printf.
func (l *Logger) Tracef(format string, v ...interface{}) {
	if l.enabled(LevelTrace) {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Warn logs error information at LevelWarn with a warning prefix and color.
func (l *Logger) Warn(err error) {
	if l.enabled(LevelWarn) {
		l.output(3, color.YellowString("Warning: %v", err))
	}
}

// Warnf logs a formatted message at LevelWarn with a warning prefix and color.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.enabled(LevelWarn) {
		l.output(3, color.YellowString("Warning: "+format, v...))
	}
}

// Error logs error information at LevelError with an error prefix and color.
func (l *Logger) Error(err error) {
	if l.enabled(LevelError) {
		l.output(3, color.RedString("Error: %v", err))
	}
}

// Errorf logs a formatted message at LevelError with an error prefix and color.
func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.enabled(LevelError) {
		l.output(3, color.RedString("Error: "+format, v...))
	}
}
