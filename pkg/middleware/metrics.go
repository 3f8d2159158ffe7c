package middleware

import (
	"net/http"
	"strings"
	"time"

	"equiprent/pkg/metrics"
)

// HTTPMetrics records request count and latency per method, route and status.
func HTTPMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			m.ObserveHTTP(r.Method, RouteLabel(r.URL.Path), wrapped.statusCode, time.Since(start))
		})
	}
}

// RouteLabel collapses the value after an "id" segment so IDs do not become labels.
func RouteLabel(path string) string {
	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		if segments[i-1] == "id" && segments[i] != "" {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
