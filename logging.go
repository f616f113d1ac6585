package sftpclient

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// defaultLogger returns the engine's out-of-the-box logger: structured
// log/slog records rendered with tint's colorized handler, matching how
// isaacwein-ftpserver wires its own logger on top of an SFTP stack.
// WithLogger(nil) opts out of logging entirely.
func defaultLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))
}
