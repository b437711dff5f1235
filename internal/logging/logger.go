package logging

import (
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"
)

// Logger is the main logger type. It still functions if nil, but it doesn't
// log anything. Output goes through a standard library *log.Logger, so flags
// and destination are controlled there.
type Logger struct {
	// prefix is any prefix specified for the logger.
	prefix string
	// level is the maximum level that will be emitted.
	level Level
	// output is the underlying line sink.
	output *log.Logger
}

// New creates a root logger writing to w at the specified level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		level:  level,
		output: log.New(w, "", log.LstdFlags),
	}
}

// Sublogger creates a new sublogger with the specified name.
func (l *Logger) Sublogger(name string) *Logger {
	// If the logger is nil, then the sublogger will be as well.
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
		output: l.output,
	}
}

// Level returns the logger's level, or LevelDisabled for a nil logger.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelDisabled
	}
	return l.level
}

func (l *Logger) emit(level Level, line string) {
	if l == nil || level > l.level {
		return
	}
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	_ = l.output.Output(3, line)
}

// Infof logs progress information with fmt.Printf semantics.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.emit(LevelInfo, fmt.Sprintf(format, v...))
}

// Debugf logs information with fmt.Printf semantics, but only at debug level.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.emit(LevelDebug, fmt.Sprintf(format, v...))
}

// Warn logs error information with a warning prefix and yellow color.
func (l *Logger) Warn(err error) {
	l.emit(LevelWarn, color.YellowString("Warning: %v", err))
}

// Warnf is Warn with fmt.Printf semantics.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.emit(LevelWarn, color.YellowString("Warning: "+format, v...))
}

// Error logs error information with an error prefix and red color.
func (l *Logger) Error(err error) {
	l.emit(LevelError, color.RedString("Error: %v", err))
}
