package logging

import (
	"io"
	"log/slog"
	"os"
)

// New builds the process logger: human-readable text in dev, JSON in release.
func New(mode string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if mode == "release" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Setup installs the logger as slog's default and returns it.
func Setup(mode string) *slog.Logger {
	l := New(mode, os.Stdout)
	slog.SetDefault(l)
	return l
}
