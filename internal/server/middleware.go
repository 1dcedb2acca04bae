package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// accessLog logs one line per request. Verify calls add the network slug
// and the stub state after the request.
func accessLog(logger *slog.Logger, rejectMode bool, received func() int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				attrs := []any{
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start).String(),
				}
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if network := rctx.URLParam("network"); network != "" {
						attrs = append(attrs,
							"network", network,
							"reject_mode", rejectMode,
							"submissions", received(),
						)
					}
				}
				attrs = append(attrs, "user_agent", r.UserAgent())

				level := slog.LevelInfo
				if ww.Status() >= http.StatusInternalServerError {
					level = slog.LevelError
				}
				logger.Log(r.Context(), level, "request", attrs...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// MaxBodySize returns middleware that limits request body size. A
// non-positive limit disables it.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
