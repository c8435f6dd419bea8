package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rentalhub/rental-service/internal/platform/logger"
	"github.com/rentalhub/rental-service/internal/platform/metrics"
	"go.uber.org/zap"
)

// RequestLogger logs every request with its status and duration, and feeds
// the per-route latency histogram when metrics are enabled.
func RequestLogger(log *logger.Logger, m *metrics.Manager) func(http.Handler) http.Handler {
	requestLog := log.Named("HTTP")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			if m != nil {
				route := chi.RouteContext(r.Context()).RoutePattern()
				if route == "" {
					route = "unmatched"
				}
				m.RequestLatency.WithLabelValues(route).Observe(duration.Seconds())
			}

			requestLog.Info("Request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", duration),
			)
		})
	}
}
