package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/hellologin/internal/metrics"
)

// WithMetrics records request count, latency and in-flight gauges.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := strings.ToUpper(r.Method)
			path := metrics.NormalizePath(r.URL.Path)

			inflight := metrics.HTTPInflight.WithLabelValues(method, path)
			inflight.Inc()
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				inflight.Dec()
				metrics.ObserveHTTP(method, path, rec.status, time.Since(start))
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
