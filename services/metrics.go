package services

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"route", "method"},
	)
	SessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_session_transitions_total",
			Help: "Interview sessions entering a status, by mode",
		},
		[]string{"mode", "status"},
	)
	AnswerScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interview_answer_score",
			Help:    "Distribution of per-answer scores (0-10)",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)
	EvaluationDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_evaluations_total",
			Help: "Final evaluations by decision and whether the fallback produced them",
		},
		[]string{"decision", "fallback"},
	)
	BackgroundTasks = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "background_tasks_in_flight",
			Help: "Background tasks currently running",
		},
		[]string{"task"},
	)
	BackgroundTaskFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "background_task_failures_total",
			Help: "Background tasks that returned an error or panicked",
		},
		[]string{"task"},
	)

	metricsOnce sync.Once
)

// InitMetrics registers the service collectors once per process.
func InitMetrics(reg prometheus.Registerer) {
	metricsOnce.Do(func() {
		reg.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			SessionTransitions,
			AnswerScores,
			EvaluationDecisions,
			BackgroundTasks,
			BackgroundTaskFailures,
		)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
