package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hireready/backend/models"
)

type ScheduleEndpoints struct {
	schedules *ScheduleService
}

func NewScheduleEndpoints(schedules *ScheduleService) *ScheduleEndpoints {
	return &ScheduleEndpoints{schedules: schedules}
}

type UpdateScheduleStatusRequest struct {
	Status models.ScheduleStatus `json:"status" validate:"required,oneof=SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
}

func (e *ScheduleEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/schedules", func(r chi.Router) {
		r.Post("/", e.CreateHandler)
		r.Get("/", e.ListHandler)
		r.Get("/{id}", e.GetHandler)
		r.Patch("/{id}/status", e.UpdateStatusHandler)
		r.Get("/{id}/can-start", e.CanStartHandler)
		r.Delete("/{id}", e.DeleteHandler)
	})
	r.Route("/suggestions", func(r chi.Router) {
		r.Get("/companies", e.SuggestCompaniesHandler)
		r.Get("/roles", e.SuggestRolesHandler)
		r.Get("/positions", e.SuggestPositionsHandler)
	})
}

func (e *ScheduleEndpoints) CreateHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req ScheduleRequest
	if err := decodeRequest(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	schedule, err := e.schedules.ScheduleInterview(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, schedule)
}

func (e *ScheduleEndpoints) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	status := models.ScheduleStatus(r.URL.Query().Get("status"))
	schedules, err := e.schedules.ListSchedules(r.Context(), userID, status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedules": schedules, "count": len(schedules)})
}

func (e *ScheduleEndpoints) GetHandler(w http.ResponseWriter, r *http.Request) {
	schedule, ok := e.owned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (e *ScheduleEndpoints) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	schedule, ok := e.owned(w, r)
	if !ok {
		return
	}
	var req UpdateScheduleStatusRequest
	if err := decodeRequest(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	updated, err := e.schedules.UpdateStatus(r.Context(), schedule.ID, req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (e *ScheduleEndpoints) CanStartHandler(w http.ResponseWriter, r *http.Request) {
	schedule, ok := e.owned(w, r)
	if !ok {
		return
	}
	canStart, err := e.schedules.CanStart(r.Context(), schedule.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"can_start": canStart})
}

func (e *ScheduleEndpoints) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	schedule, ok := e.owned(w, r)
	if !ok {
		return
	}
	if err := e.schedules.DeleteSchedule(r.Context(), schedule.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *ScheduleEndpoints) SuggestCompaniesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, e.schedules.SuggestCompanies(r.Context(), q.Get("query")))
}

func (e *ScheduleEndpoints) SuggestRolesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, e.schedules.SuggestRoles(r.Context(), q.Get("query"), q.Get("company")))
}

func (e *ScheduleEndpoints) SuggestPositionsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, e.schedules.SuggestPositions(r.Context(), q.Get("role"), q.Get("company")))
}

func (e *ScheduleEndpoints) owned(w http.ResponseWriter, r *http.Request) (*models.InterviewSchedule, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	schedule, err := e.schedules.GetSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	if schedule.UserID != userID {
		writeServiceError(w, r, ErrScheduleNotFound)
		return nil, false
	}
	return schedule, true
}
