package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AnalyticsEndpoints serves the caller's own analytics and dashboard.
type AnalyticsEndpoints struct {
	analytics *AnalyticsService
}

func NewAnalyticsEndpoints(analytics *AnalyticsService) *AnalyticsEndpoints {
	return &AnalyticsEndpoints{analytics: analytics}
}

func (e *AnalyticsEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/analytics", e.AnalyticsHandler)
	r.Get("/dashboard", e.DashboardHandler)
}

func (e *AnalyticsEndpoints) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	analytics, err := e.analytics.InterviewAnalytics(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (e *AnalyticsEndpoints) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	metrics, err := e.analytics.Dashboard(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
