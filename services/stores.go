package services

import (
	"context"

	"github.com/hireready/backend/models"
)

// Stores are satisfied by repository.GORMRepository and repository.MemoryRepository.
// Lookups return nil, nil when the record does not exist.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateInterviewReadiness(ctx context.Context, userID string, readiness float64) (bool, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, session *models.InterviewSession) error
	SaveSession(ctx context.Context, session *models.InterviewSession) error
	GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error)
	GetActiveSession(ctx context.Context, userID string) (*models.InterviewSession, error)
	ListSessions(ctx context.Context, userID string) ([]models.InterviewSession, error)
	AbandonActiveSessions(ctx context.Context, userID string) (int64, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type ExchangeStore interface {
	AppendExchange(ctx context.Context, exchange *models.Exchange) error
	ListExchanges(ctx context.Context, sessionID string) ([]models.Exchange, error)
	FindAnswerExchange(ctx context.Context, sessionID, text string) (*models.Exchange, error)
	UpdateExchangeScore(ctx context.Context, exchangeID string, score int, feedback string) error
}

type EvaluationStore interface {
	SaveEvaluation(ctx context.Context, evaluation *models.Evaluation) error
	GetEvaluationBySession(ctx context.Context, sessionID string) (*models.Evaluation, error)
	ListEvaluationsByUser(ctx context.Context, userID string) ([]models.Evaluation, error)
	DeleteEvaluationBySession(ctx context.Context, sessionID string) error
}

type ScheduleStore interface {
	CreateSchedule(ctx context.Context, schedule *models.InterviewSchedule) error
	SaveSchedule(ctx context.Context, schedule *models.InterviewSchedule) error
	GetSchedule(ctx context.Context, scheduleID string) (*models.InterviewSchedule, error)
	GetScheduleBySession(ctx context.Context, sessionID string) (*models.InterviewSchedule, error)
	ListSchedules(ctx context.Context, userID string, status models.ScheduleStatus) ([]models.InterviewSchedule, error)
	DeleteSchedule(ctx context.Context, scheduleID string) error
}

// Store is the full persistence surface the server wires.
type Store interface {
	UserStore
	SessionStore
	ExchangeStore
	EvaluationStore
	ScheduleStore
}
