// Package logging provides the leveled, prefix-chaining logger used by
// the VFS components that log: the Watcher Bridge, I/O Worker, and VFS
// Controller all take a *Logger rather than writing to the standard log
// package directly.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level controls which methods produce output.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger writes leveled, optionally-prefixed lines to an underlying
// io.Writer. A Logger is safe for concurrent use; the I/O Worker,
// Watcher Bridge, and VFS Controller each log from their own goroutine.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	prefix string
	level  Level
	color  bool
}

// New creates a root Logger writing to w at the given minimum level.
// Color output is enabled only when w is a terminal.
func New(w io.Writer, level Level) *Logger {
	l := &Logger{out: w, level: level}
	if f, ok := w.(*os.File); ok {
		l.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return l
}

// Default returns a Logger writing to os.Stderr at LevelInfo, matching
// the teacher's unconfigured log.Printf default.
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

// Sublogger returns a Logger that shares this Logger's writer, level, and
// color setting but prefixes every line with name, chained onto any
// existing prefix. Each component constructs its own sublogger off a
// shared root logger, e.g. root.Sublogger("watcher").Sublogger("root-2").
func (l *Logger) Sublogger(name string) *Logger {
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{out: l.out, prefix: prefix, level: l.level, color: l.color}
}

func (l *Logger) line(level Level, format string, args ...any) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = "[" + l.prefix + "] " + msg
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case level == LevelWarn && l.color:
		color.New(color.FgYellow).Fprintln(l.out, msg)
	case level == LevelError && l.color:
		color.New(color.FgRed).Fprintln(l.out, msg)
	default:
		fmt.Fprintln(l.out, msg)
	}
}

func (l *Logger) Debugf(format string, args ...any) { l.line(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.line(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.line(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.line(LevelError, format, args...) }
