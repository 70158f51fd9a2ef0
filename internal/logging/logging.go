// Package logging builds the application logger. The TUI owns the terminal,
// so log output goes to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Discard is the destination value that turns logging off.
const Discard = "-"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel maps a config value to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// New opens dest for appending and returns a logfmt logger writing to it.
// The closer releases the file.
func New(dest, level string) (*log.Logger, io.Closer, error) {
	if dest == "" || dest == Discard {
		return NewWriter(io.Discard, level), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewWriter(f, level), f, nil
}

// NewWriter builds the logger on an arbitrary writer.
func NewWriter(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(level),
		Formatter:       log.LogfmtFormatter,
		ReportTimestamp: true,
		Prefix:          "todo",
	})
}
