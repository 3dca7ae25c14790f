// Package logger configures the process-wide zerolog logger.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// L is the global logger. It is usable before Init (info level, stdout).
var L = New(os.Stdout, "info")

// New builds a JSON logger writing to w at the given level.
// Unknown levels fall back to info.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Init replaces the global logger. Call once at startup, after loading config.
func Init(level string) {
	L = New(os.Stdout, level)
	L.Info().Str("level", L.GetLevel().String()).Msg("Logger initialized")
}

// Nop returns a logger that discards everything, for tests.
func Nop() zerolog.Logger { return zerolog.Nop() }

// FromContext retrieves a logger from ctx, or returns the global logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &L
}

// ToContext embeds l into ctx.
func ToContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}
