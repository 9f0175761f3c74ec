package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/EcommerceGo/pkg/logger"
)

// RequestLogger stores a request-scoped logger, enriched with whatever
// logger.WithContext finds in the context, for logger.FromContext.
//
// Mount it after RequestLogging and Tracing. Middleware that adds session or
// region to the context later should call Relog.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, Relog(r, base))
		})
	}
}

// Relog rebuilds the request-scoped logger from base and the request context.
func Relog(r *http.Request, base *slog.Logger) *http.Request {
	ctx := r.Context()
	return r.WithContext(logger.NewContext(ctx, logger.WithContext(ctx, base)))
}
