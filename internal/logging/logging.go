// Package logging builds the structured diagnostic logger.
//
// Diagnostics go to stderr by default, or to a file, as text or JSON. They
// are separate from the progress lines printed for humans on stdout. Every
// logger carries the run's run_id so lines from one invocation can be
// grouped.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Config configures New. The zero value logs warnings as text to stderr.
type Config struct {
	// Level is one of debug, info, warn, error
	Level string
	// Format is text or json
	Format string
	// File receives the log when set; stderr otherwise
	File string
	// RunID identifies the invocation; generated when empty
	RunID string
}

// Logger is a slog.Logger bound to one run
type Logger struct {
	*slog.Logger
	RunID string

	closer io.Closer
}

// ParseLevel converts a level name to a slog.Level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", name)
	}
}

// New creates a Logger writing to cfg.File, or to stderr when no file is set
func New(cfg Config) (*Logger, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closer = f
	}

	logger, err := NewWithWriter(w, cfg)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	logger.closer = closer
	return logger, nil
}

// NewWithWriter creates a Logger writing to w
func NewWithWriter(w io.Writer, cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", cfg.Format)
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	return &Logger{
		Logger: slog.New(handler).With("run_id", runID),
		RunID:  runID,
	}, nil
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
