// Package zlog is zcode's own logging layer: a stdlib log.Logger writing
// to a dated file under the user's cache directory, gated by a
// level read from ZCODE_LOG_LEVEL. No third-party logging library appears
// anywhere in the example corpus this editor is grounded on (elvish wraps
// stdlib log.Logger behind its own logutil.Sink/Discard), so this package
// follows that idiom rather than reaching for one.
package zlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"
)

// Level orders log verbosity; a Logger only writes entries at or below
// its configured Level.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// LevelFromEnv reads ZCODE_LOG_LEVEL ("error", "warn", "info", "debug"),
// defaulting to LevelWarn when unset or unrecognized.
func LevelFromEnv() Level {
	switch os.Getenv("ZCODE_LOG_LEVEL") {
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	case "warn", "":
		return LevelWarn
	default:
		return LevelWarn
	}
}

// Logger wraps a stdlib *log.Logger with a severity gate and a component
// tag, writing "YYYY-MM-DD HH:MM:SS.mmm LEVEL [component] message" lines.
type Logger struct {
	mu        sync.Mutex
	out       *log.Logger
	level     Level
	component string
	closer    io.Closer
}

// New opens (creating if needed) the log file for today's date under
// os.UserCacheDir()/zcode/logs/zcode-YYYY-MM-DD.log and returns a Logger
// at the level named by ZCODE_LOG_LEVEL. The file is chosen once, when New
// runs; there is no rotation, so a process that runs past midnight keeps
// writing to the file it opened. If the cache directory can't be
// determined or created, logging falls back to stderr rather than failing
// startup over a missing log file.
func New(component string) *Logger {
	level := LevelFromEnv()
	dir, err := os.UserCacheDir()
	if err != nil {
		return &Logger{out: log.New(os.Stderr, "", 0), level: level, component: component}
	}
	logDir := filepath.Join(dir, "zcode", "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return &Logger{out: log.New(os.Stderr, "", 0), level: level, component: component}
	}
	name := fmt.Sprintf("zcode-%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(logDir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &Logger{out: log.New(os.Stderr, "", 0), level: level, component: component}
	}
	return &Logger{out: log.New(f, "", 0), level: level, component: component, closer: f}
}

// With returns a Logger sharing this one's file and level under a
// different component tag, e.g. per language-server session.
func (l *Logger) With(component string) *Logger {
	return &Logger{out: l.out, level: l.level, component: component}
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level > l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	l.out.Printf("%s %-5s [%s] %s", time.Now().Format("2006-01-02 15:04:05.000"), level, l.component, msg)
}

func (l *Logger) Errorf(format string, args ...interface{}) { l.log(LevelError, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }

// Close releases the underlying log file, if one was opened.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// RecoverPanic recovers a panic in the calling goroutine, logs it with a
// stack trace at error level, and calls onPanic if non-nil. main and
// lsp.Session's respawn watcher defer it; other goroutines, including the
// event loop's effect workers, do not recover panics.
func (l *Logger) RecoverPanic(goroutine string, onPanic func()) {
	if r := recover(); r != nil {
		l.Errorf("panic in %s: %v\n%s", goroutine, r, debug.Stack())
		if onPanic != nil {
			onPanic()
		}
	}
}

// serverStderrWriter forwards a language server's stderr into the log at
// warn level, one line at a time, tagged with the server's command name.
type serverStderrWriter struct {
	log     *Logger
	command string
	buf     []byte
}

func (w *serverStderrWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		idx := indexByte(w.buf, '\n')
		if idx < 0 {
			break
		}
		line := string(w.buf[:idx])
		w.buf = w.buf[idx+1:]
		if line != "" {
			w.log.Warnf("%s: %s", w.command, line)
		}
	}
	return len(p), nil
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

// ServerStderrWriter returns an io.Writer suitable for exec.Cmd.Stderr
// that logs a spawned language server's stderr line-by-line.
func ServerStderrWriter(l *Logger, command string) io.Writer {
	return &serverStderrWriter{log: l, command: command}
}
