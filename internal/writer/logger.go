package writer

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// multiHandler fans a record out to several handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		// Each handler filters on its own level
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		// Clone so handlers never share the record's attr storage
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// NewLogger writes text to console and JSON to file
func NewLogger(console, file io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	// Create handlers for both console (text) and file (JSON)
	return slog.New(&multiHandler{
		handlers: []slog.Handler{
			slog.NewTextHandler(console, opts),
			slog.NewJSONHandler(file, opts),
		},
	})
}

// SetupLogger creates a logger that writes to stderr and the workspace log file.
// The caller closes the returned file.
func SetupLogger(ws *Workspace, level slog.Level) (*slog.Logger, *os.File, error) {
	// Open log file in append mode
	logFile, err := os.OpenFile(ws.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	// Console goes to stderr so stdout carries only the story
	return NewLogger(os.Stderr, logFile, level), logFile, nil
}
