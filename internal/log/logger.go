package log

import (
	"io"
	"log/slog"
)

// Options selects the output of New.
type Options struct {
	// Verbose logs at debug level; otherwise only warnings and errors.
	Verbose bool

	// JSON writes JSON records instead of key=value text.
	JSON bool
}

// New creates a logger writing to w through a SecureHandler.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(NewSecureHandler(handler))
}
