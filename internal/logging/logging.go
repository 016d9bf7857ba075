// Package logging builds the leveled logger shared by the commands and the
// batch engine. Console output is optional so the TUI can own the terminal
// while a file sink still records the run.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Options selects level and sinks.
type Options struct {
	Level   string // debug, info, warn, error. Default: info.
	File    string // Optional log file, appended to.
	Console bool   // Write to stderr.
}

// Logger wraps a *log.Logger together with the file it may own.
type Logger struct {
	*log.Logger

	mu   sync.Mutex
	file *os.File
}

// New creates a logger. With neither a file nor the console enabled, output
// is discarded. Call Close when done if File was set.
func New(opts Options) (*Logger, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	l := &Logger{}
	var writers []io.Writer
	if opts.Console {
		writers = append(writers, os.Stderr)
	}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		writers = append(writers, f)
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	l.Logger = log.NewWithOptions(out, log.Options{
		Level:           level,
		Prefix:          "nefconv",
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
