package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// LiveEndpoints exposes the schedule-driven live interview flow.
type LiveEndpoints struct {
	live       *LiveInterviewService
	interviews *InterviewService
	schedules  *ScheduleService
	room       *LiveRoom
}

func NewLiveEndpoints(live *LiveInterviewService, interviews *InterviewService, schedules *ScheduleService, room *LiveRoom) *LiveEndpoints {
	return &LiveEndpoints{live: live, interviews: interviews, schedules: schedules, room: room}
}

type StartLiveRequest struct {
	ScheduleID string `json:"schedule_id" validate:"required"`
}

type NextQuestionRequest struct {
	Answer *string `json:"answer,omitempty" validate:"omitempty,max=20000"`
}

type NextQuestionResponse struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

func (e *LiveEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/live", func(r chi.Router) {
		r.Post("/start", e.StartHandler)
		r.Post("/{id}/next", e.NextHandler)
		r.Post("/{id}/end", e.EndHandler)
		r.Get("/{id}/report", e.ReportHandler)
		r.Delete("/{id}/evaluation", e.DeleteEvaluationHandler)
		if e.room != nil {
			r.Get("/{id}/ws", e.WebSocketHandler)
		}
	})
}

func (e *LiveEndpoints) StartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req StartLiveRequest
	if err := decodeRequest(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	schedule, err := e.schedules.GetSchedule(r.Context(), req.ScheduleID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if schedule.UserID != userID {
		writeServiceError(w, r, ErrScheduleNotFound)
		return
	}

	session, err := e.live.StartLiveSession(r.Context(), req.ScheduleID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (e *LiveEndpoints) NextHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if !e.authorize(w, r, sessionID) {
		return
	}
	var req NextQuestionRequest
	if r.ContentLength != 0 {
		if err := decodeRequest(r, &req); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	question, err := e.live.GetNextQuestion(r.Context(), sessionID, req.Answer)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NextQuestionResponse{SessionID: sessionID, Question: question})
}

func (e *LiveEndpoints) EndHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if !e.authorize(w, r, sessionID) {
		return
	}
	evaluation, err := e.live.EndLiveSession(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluation)
}

func (e *LiveEndpoints) ReportHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	evaluation, err := e.live.GetEvaluation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if evaluation.UserID != userID {
		writeServiceError(w, r, ErrEvaluationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, evaluation)
}

func (e *LiveEndpoints) DeleteEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sessionID := chi.URLParam(r, "id")
	evaluation, err := e.live.GetEvaluation(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if evaluation.UserID != userID {
		writeServiceError(w, r, ErrEvaluationNotFound)
		return
	}
	if err := e.live.DeleteEvaluation(r.Context(), sessionID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *LiveEndpoints) authorize(w http.ResponseWriter, r *http.Request, sessionID string) bool {
	userID, ok := requireUser(w, r)
	if !ok {
		return false
	}
	if _, err := ownedSession(r.Context(), e.interviews, userID, sessionID); err != nil {
		writeServiceError(w, r, err)
		return false
	}
	return true
}
