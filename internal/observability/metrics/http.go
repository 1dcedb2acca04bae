package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Middleware returns HTTP middleware for request metrics.
func Middleware(next http.Handler) http.Handler {
	if !enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			path := normalizePath(r.URL.Path)

			httpRequestsTotal.WithLabelValues(
				r.Method,
				path,
				strconv.Itoa(rw.status),
			).Inc()

			httpDuration.WithLabelValues(
				r.Method,
				path,
			).Observe(time.Since(start).Seconds())
		}()

		next.ServeHTTP(rw, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures status code.
func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// normalizePath keeps label cardinality bounded. Known routes are kept as-is;
// anything else (scanners, typos) collapses into a single label.
//
//	/v1/sn_sepolia/verify -> /v1/sn_sepolia/verify
//	/v1/whatever/verify   -> /v1/{network}/verify
//	/wp-admin             -> other
func normalizePath(path string) string {
	switch path {
	case "/health", "/healthz", "/metrics":
		return path
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 3 && parts[0] == "v1" && parts[2] == "verify" {
		switch parts[1] {
		case "sn_main", "sn_sepolia":
			return path
		}
		return "/v1/{network}/verify"
	}
	return "other"
}
