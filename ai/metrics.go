package ai

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI completion requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI completion request duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)
	FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_fallbacks_total",
			Help: "Requests answered by a provider other than the primary",
		},
		[]string{"provider"},
	)

	registerOnce sync.Once
)

// RegisterMetrics adds the AI collectors to reg once per process.
func RegisterMetrics(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(RequestsTotal, RequestDuration, FallbacksTotal)
	})
}

func observeRequest(provider string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	RequestsTotal.WithLabelValues(provider, outcome).Inc()
	RequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}
