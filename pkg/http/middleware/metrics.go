package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	applogger "SentiPull/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	statusRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentipull_status_http_requests_total",
			Help: "Requests served by the status server",
		},
		[]string{"route", "status"},
	)

	statusLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentipull_status_http_request_duration_seconds",
			Help:    "Status server request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 2.5},
		},
		[]string{"route"},
	)

	regOnce sync.Once
)

// Metrics counts status-server requests per route. Paths outside routes are
// recorded as "other"; 5xx answers are also logged.
func Metrics(l *applogger.Logger, routes ...string) func(http.Handler) http.Handler {
	regOnce.Do(func() {
		prometheus.MustRegister(statusRequests, statusLatency)
	})
	known := make(map[string]bool, len(routes))
	for _, r := range routes {
		known[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := "other"
			if known[r.URL.Path] {
				route = r.URL.Path
			}
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			statusRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
			statusLatency.WithLabelValues(route).Observe(elapsed.Seconds())

			if l != nil && rec.status >= http.StatusInternalServerError {
				l.Error("status request failed",
					applogger.String("route", route),
					applogger.Int("status", rec.status),
					applogger.Duration("duration_ms", elapsed),
				)
			}
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
