package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/reputation-service/pkg/logger"
)

// RequestLogger attaches a request-scoped logger to the context so handlers
// and everything below them log with the request's correlation ID attached.
// Must run after RequestLogging so the correlation ID is already in context.
func RequestLogger(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			scoped := logger.WithContext(ctx, l)
			ctx = logger.NewContext(ctx, scoped)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
