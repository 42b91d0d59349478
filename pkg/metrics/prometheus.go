package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamRequests *prometheus.CounterVec
	retries          *prometheus.CounterVec
	daysWritten      *prometheus.CounterVec
	cacheDays        *prometheus.CounterVec
	readGaps         *prometheus.CounterVec
	latency          *prometheus.HistogramVec
}

// New creates a Prometheus recorder registered on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		upstreamRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipull_upstream_requests_total",
				Help: "Total number of upstream API requests",
			},
			[]string{"source", "endpoint", "result"},
		),
		retries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipull_upstream_retries_total",
				Help: "Total number of retried upstream requests",
			},
			[]string{"source", "endpoint"},
		),
		daysWritten: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipull_cache_days_written_total",
				Help: "Total number of day files written to the cache",
			},
			[]string{"source"},
		),
		cacheDays: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipull_cache_days_total",
				Help: "Required days found in (hit) or missing from (miss) the cache",
			},
			[]string{"source", "result"},
		),
		readGaps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipull_cache_read_gaps_total",
				Help: "Days absent from the cache when reading a range back",
			},
			[]string{"source"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentipull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordUpstreamRequest(source, endpoint, result string) {
	r.upstreamRequests.WithLabelValues(source, endpoint, result).Inc()
}

func (r *Recorder) RecordRetry(source, endpoint string) {
	r.retries.WithLabelValues(source, endpoint).Inc()
}

func (r *Recorder) RecordDaysWritten(source string, n int) {
	r.daysWritten.WithLabelValues(source).Add(float64(n))
}

// RecordCacheDays records the outcome of one inventory pass.
func (r *Recorder) RecordCacheDays(source string, hit, miss int) {
	r.cacheDays.WithLabelValues(source, "hit").Add(float64(hit))
	r.cacheDays.WithLabelValues(source, "miss").Add(float64(miss))
}

func (r *Recorder) RecordReadGap(source string, n int) {
	r.readGaps.WithLabelValues(source).Add(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordUpstreamRequest(string, string, string) {}
func (Nop) RecordRetry(string, string)                   {}
func (Nop) RecordDaysWritten(string, int)                {}
func (Nop) RecordCacheDays(string, int, int)             {}
func (Nop) RecordReadGap(string, int)                    {}
func (Nop) RecordLatency(string, float64)                {}
