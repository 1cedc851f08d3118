// Package logging provides the leveled logger shared by the task sources, the
// Timewarrior tracker and the CLI.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "INFO"
}

// ParseLevel maps a config value to a Level; unknown values mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

type Logger struct {
	logger    *log.Logger
	level     Level
	component string
}

func New(w io.Writer, level Level) *Logger {
	return &Logger{logger: log.New(w, "", 0), level: level}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return New(io.Discard, LevelError+1)
}

// With returns a logger tagging every line with component.
func (l *Logger) With(component string) *Logger {
	if l == nil {
		return nil
	}
	c := *l
	c.component = component
	return &c
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }

func (l *Logger) log(level Level, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		l.logger.Printf("%s %s %s: %s", time.Now().Format(time.RFC3339), level, l.component, msg)
		return
	}
	l.logger.Printf("%s %s %s", time.Now().Format(time.RFC3339), level, msg)
}
