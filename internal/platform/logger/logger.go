package logger

import (
	"log/slog"
	"os"
)

// New returns the JSON slog logger every service takes as a dependency.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
