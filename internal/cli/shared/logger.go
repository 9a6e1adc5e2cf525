package shared

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewLogger builds the CLI logger. Human-readable text output when stderr is
// a terminal, JSON when piped or redirected (CI, scripts).
func NewLogger() *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
