package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sakif/my-applications/internal/logger"
)

// TraceIDHeader carries the per-request trace ID on requests and responses.
const TraceIDHeader = "X-Trace-ID"

// TraceID gives every request a trace ID and a child logger that carries it.
//
// A client-supplied X-Trace-ID is kept if it is a valid UUID, so a frontend
// can correlate its own logs with ours. Anything else is replaced.
func TraceID(base *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceIDHeader)
			if _, err := uuid.Parse(traceID); err != nil {
				traceID = uuid.NewString()
			}
			w.Header().Set(TraceIDHeader, traceID)

			child := &logger.Logger{Logger: base.With().Str("trace_id", traceID).Logger()}
			next.ServeHTTP(w, r.WithContext(child.WithContext(r.Context())))
		})
	}
}
