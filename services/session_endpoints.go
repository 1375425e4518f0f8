package services

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hireready/backend/models"
)

// SessionEndpoints exposes the text interview flow over HTTP.
type SessionEndpoints struct {
	interviews *InterviewService
}

func NewSessionEndpoints(interviews *InterviewService) *SessionEndpoints {
	return &SessionEndpoints{interviews: interviews}
}

type StartInterviewRequest struct {
	Role models.InterviewRole `json:"role" validate:"required,oneof=SDE DATA_ANALYST HR SYSTEM_DESIGN"`
	Mode models.InterviewMode `json:"mode" validate:"omitempty,oneof=TEXT VOICE"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" validate:"max=20000"`
}

type GetSessionsResponse struct {
	Sessions []models.InterviewSession `json:"sessions"`
	Count    int                       `json:"count"`
}

func (e *SessionEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/interviews", func(r chi.Router) {
		r.Post("/", e.StartHandler)
		r.Get("/", e.HistoryHandler)
		r.Get("/active", e.ActiveHandler)
		r.Get("/{id}", e.GetHandler)
		r.Post("/{id}/answers", e.SubmitAnswerHandler)
		r.Post("/{id}/complete", e.CompleteHandler)
	})
}

func (e *SessionEndpoints) StartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req StartInterviewRequest
	if err := decodeRequest(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.Mode == "" {
		req.Mode = models.ModeText
	}

	session, err := e.interviews.StartSession(r.Context(), userID, req.Role, req.Mode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (e *SessionEndpoints) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if !e.authorize(w, r, sessionID) {
		return
	}
	var req SubmitAnswerRequest
	if err := decodeRequest(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	session, err := e.interviews.SubmitAnswer(r.Context(), sessionID, req.Answer)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (e *SessionEndpoints) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if !e.authorize(w, r, sessionID) {
		return
	}
	session, err := e.interviews.CompleteSession(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (e *SessionEndpoints) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sessions, err := e.interviews.History(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GetSessionsResponse{Sessions: sessions, Count: len(sessions)})
}

func (e *SessionEndpoints) ActiveHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	session, err := e.interviews.GetActiveSession(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (e *SessionEndpoints) GetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	session, err := ownedSession(r.Context(), e.interviews, userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// authorize checks that the session exists and belongs to the caller.
func (e *SessionEndpoints) authorize(w http.ResponseWriter, r *http.Request, sessionID string) bool {
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

// ownedSession hides other users' sessions behind ErrSessionNotFound.
func ownedSession(ctx context.Context, interviews *InterviewService, userID, sessionID string) (*models.InterviewSession, error) {
	session, err := interviews.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
