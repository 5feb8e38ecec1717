package cli

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/codeWithUali/laradoc/internal/config"
)

var levels = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Logger writes levelled messages to stderr and an optional log file.
// It also filters the standard logger used by the library packages.
type Logger struct {
	level   int
	out     io.Writer
	logFile *os.File
}

// NewLogger installs a logger for cfg. Logs never go to stdout, which
// the MCP server uses for the protocol.
func NewLogger(cfg config.LoggingConfig, stderr io.Writer) *Logger {
	level, ok := levels[strings.ToLower(cfg.Level)]
	if !ok {
		level = levels["info"]
	}

	l := &Logger{level: level, out: stderr}

	if cfg.Path != "" {
		f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(stderr, "[WARN] Failed to open log file %s: %v\n", cfg.Path, err)
		} else {
			l.logFile = f
			l.out = io.MultiWriter(stderr, f)
		}
	}

	log.SetOutput(&levelWriter{out: l.out, min: level})
	return l
}

func (l *Logger) logf(level, format string, args ...interface{}) {
	if levels[level] < l.level {
		return
	}
	fmt.Fprintf(l.out, "["+strings.ToUpper(level)+"] "+format+"\n", args...)
}

// Debug logs at debug level
func (l *Logger) Debug(format string, args ...interface{}) { l.logf("debug", format, args...) }

// Info logs at info level
func (l *Logger) Info(format string, args ...interface{}) { l.logf("info", format, args...) }

// Warn logs at warn level
func (l *Logger) Warn(format string, args ...interface{}) { l.logf("warn", format, args...) }

// Error logs at error level
func (l *Logger) Error(format string, args ...interface{}) { l.logf("error", format, args...) }

// Close closes the log file
func (l *Logger) Close() error {
	if l.logFile == nil {
		return nil
	}
	return l.logFile.Close()
}

// levelWriter drops standard logger lines below the minimum level. The
// level of a line is read from its emoji prefix.
type levelWriter struct {
	out io.Writer
	min int
}

func (w *levelWriter) Write(p []byte) (int, error) {
	if lineLevel(p) < w.min {
		return len(p), nil
	}
	if _, err := w.out.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func lineLevel(p []byte) int {
	switch {
	case bytes.Contains(p, []byte("❌")):
		return levels["error"]
	case bytes.Contains(p, []byte("⚠️")):
		return levels["warn"]
	}
	return levels["info"]
}
