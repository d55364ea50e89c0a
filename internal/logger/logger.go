// Package logger wraps zerolog with the constructors and context helpers the
// rest of the service uses.
//
// Pass *Logger by pointer. Request-scoped loggers (carrying trace_id) are
// attached to the request context by the trace middleware and retrieved with
// FromContext / FromRequest.
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger embeds zerolog.Logger so Info/Warn/Err/... are available directly.
type Logger struct {
	zerolog.Logger
}

// NewLogger builds a JSON logger on stdout tagged with role (e.g. "server").
// level is a zerolog level name ("debug", "info", ...); unknown or empty
// values fall back to info.
func NewLogger(role, level string) *Logger {
	return newLogger(os.Stdout, role, level)
}

func newLogger(w io.Writer, role, level string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	l := zerolog.New(w).
		Level(lvl).
		With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{l}
}

// Nop returns a *Logger that discards everything. Used in tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a copy that can be enriched without touching the parent.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// WithContext stores the logger in ctx so FromContext can find it.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromRequest returns the logger attached to the request's context.
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}

// FromContext returns the logger stored in ctx. When none was attached,
// zerolog hands back its disabled default logger, so the result is never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
