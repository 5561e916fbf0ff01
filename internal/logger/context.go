package logger

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type loggerKey struct{}

// Middleware derives a per-request logger tagged with chi's request id and
// hangs it off the request context. Mount it after middleware.RequestID or
// the tag is silently absent.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := slog.Default()
		if id := middleware.GetReqID(r.Context()); id != "" {
			l = l.With("req_id", id)
		}
		next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), l)))
	})
}

// Ctx returns the logger carried by ctx. Contexts that never passed through
// Middleware get the process-wide default.
func Ctx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithLogger replaces the context's logger, typically to attach caller
// identity once authentication has run.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}
