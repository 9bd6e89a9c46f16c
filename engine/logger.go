package engine

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger overrides the package-level logger, e.g. to attach
// request-scoped fields or redirect output in a host process.
func SetLogger(l *slog.Logger) {
	logger = l
}
