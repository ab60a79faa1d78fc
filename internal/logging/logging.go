// Package logging provides the application logger handle.
//
// The logger is created once in main and passed explicitly to every component
// that needs it. When debug logging is disabled the handle discards all
// records, so callers never have to guard log statements.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FilePermissions is the permission mode for the debug log file.
const FilePermissions = 0600

// Options configures New.
type Options struct {
	// Debug enables file-backed debug logging.
	Debug bool

	// Path is the log file location. Required when Debug is true.
	Path string
}

// New creates the application logger. It returns the logger, a close function
// for the underlying file (a no-op when logging is disabled), and an error
// when the log file cannot be created.
func New(opts Options) (*slog.Logger, func() error, error) {
	if !opts.Debug {
		return Discard(), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, FilePermissions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), f.Close, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
