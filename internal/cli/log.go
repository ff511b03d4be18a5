// Package cli implements the structuralign command-line interface.
//
// The CLI wraps pkg/pipeline.Runner with commands for running an
// alignment (align), rendering the discovered axis grid for visual
// debugging (grid), inspecting a past run (report), and managing the
// on-disk cache (cache). It is built with cobra and logs through
// charmbracelet/log, the same stack the teacher's own CLI used for its
// dependency-graph commands.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// Log levels exported for use by cmd/structuralign.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// newLogger creates a logger with timestamp formatting, writing to w at
// the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ctxKey distinguishes this package's context keys from others'.
type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx, retrievable with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the attached logger, or log.Default() if
// none was attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
