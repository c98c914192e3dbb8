// Package logging builds the slog loggers used by savemirror: the
// timestamped line format written to external storage, plus text and JSON
// for the console.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jingkaihe/savemirror/internal/errx"
	"github.com/jingkaihe/savemirror/pkg/vfs"
)

const DefaultTag = "savemirror"

type Config struct {
	Level string
	// Format is "line" (default), "text" or "json".
	Format string
	// Tag is the bracketed name in line output.
	Tag string
}

// New creates a logger writing to w.
func New(w io.Writer, cfg Config) *slog.Logger {
	return slog.New(NewHandler(w, cfg))
}

func NewHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.NewJSONHandler(w, opts)
	case "text":
		return slog.NewTextHandler(w, opts)
	default:
		return NewLineHandler(w, cfg.Tag, opts)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OpenConsole returns stdout or stderr for the named target.
func OpenConsole(output string) io.Writer {
	if strings.ToLower(output) == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

// OpenFile opens name on p for appending, creating it if needed.
func OpenFile(p vfs.Provider, name string) (io.WriteCloser, error) {
	h, err := p.Open(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errx.With(ErrOpenLogFile, ": %s: %w", name, err)
	}
	return h, nil
}
