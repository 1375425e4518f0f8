package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hireready/backend/models"
)

// MemoryRepository keeps every record in process memory. It satisfies the same
// store contracts as GORMRepository and backs the server when no database URL is
// configured. Records are copied on the way in and out.
type MemoryRepository struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	sessions    map[string]*models.InterviewSession
	exchanges   map[string][]*models.Exchange
	evaluations map[string]*models.Evaluation
	schedules   map[string]*models.InterviewSchedule
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:       make(map[string]*models.User),
		sessions:    make(map[string]*models.InterviewSession),
		exchanges:   make(map[string][]*models.Exchange),
		evaluations: make(map[string]*models.Evaluation),
		schedules:   make(map[string]*models.InterviewSchedule),
	}
}

func cloneSession(s *models.InterviewSession) *models.InterviewSession {
	c := *s
	c.QuestionAnswers = make(models.QuestionAnswers, len(s.QuestionAnswers))
	for i, qa := range s.QuestionAnswers {
		cq := qa
		if qa.Answer != nil {
			a := *qa.Answer
			cq.Answer = &a
		}
		if qa.Score != nil {
			v := *qa.Score
			cq.Score = &v
		}
		if qa.AnsweredAt != nil {
			t := *qa.AnsweredAt
			cq.AnsweredAt = &t
		}
		if qa.Sentiment != nil {
			st := *qa.Sentiment
			st.DetectedEmotions = append([]string(nil), qa.Sentiment.DetectedEmotions...)
			cq.Sentiment = &st
		}
		c.QuestionAnswers[i] = cq
	}
	c.Strengths = append(models.StringList(nil), s.Strengths...)
	c.Improvements = append(models.StringList(nil), s.Improvements...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func cloneEvaluation(e *models.Evaluation) *models.Evaluation {
	c := *e
	c.Strengths = append(models.StringList(nil), e.Strengths...)
	c.Weaknesses = append(models.StringList(nil), e.Weaknesses...)
	c.Improvements = append(models.StringList(nil), e.Improvements...)
	c.QuestionScores = append(models.QuestionScores(nil), e.QuestionScores...)
	return &c
}

func cloneSchedule(s *models.InterviewSchedule) *models.InterviewSchedule {
	c := *s
	if s.SessionID != nil {
		v := *s.SessionID
		c.SessionID = &v
	}
	if s.AverageScore != nil {
		v := *s.AverageScore
		c.AverageScore = &v
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func touch(created, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// Users

func (m *MemoryRepository) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("failed to create user: %w: email", ErrDuplicate)
		}
	}
	newID(&user.ID)
	touch(&user.CreatedAt, &user.UpdatedAt)
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (m *MemoryRepository) UpdateInterviewReadiness(_ context.Context, userID string, readiness float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	u.InterviewReadiness = readiness
	u.UpdatedAt = time.Now()
	return true, nil
}

// Sessions

func (m *MemoryRepository) CreateSession(_ context.Context, session *models.InterviewSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.Status == models.StatusInProgress {
		for _, s := range m.sessions {
			if s.UserID == session.UserID && s.Status == models.StatusInProgress {
				return fmt.Errorf("failed to create interview session: %w: one active session per user", ErrDuplicate)
			}
		}
	}
	newID(&session.ID)
	touch(&session.CreatedAt, &session.UpdatedAt)
	m.sessions[session.ID] = cloneSession(session)
	return nil
}

func (m *MemoryRepository) SaveSession(_ context.Context, session *models.InterviewSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[session.ID]
	if !ok || (stored.Status != models.StatusInProgress && stored.Status != session.Status) {
		return fmt.Errorf("failed to save interview session %s: %w", session.ID, ErrStale)
	}
	touch(&session.CreatedAt, &session.UpdatedAt)
	m.sessions[session.ID] = cloneSession(session)
	return nil
}

func (m *MemoryRepository) GetSession(_ context.Context, sessionID string) (*models.InterviewSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return cloneSession(s), nil
}

func (m *MemoryRepository) GetActiveSession(_ context.Context, userID string) (*models.InterviewSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var active *models.InterviewSession
	for _, s := range m.sessions {
		if s.UserID == userID && s.Status == models.StatusInProgress {
			if active == nil || s.StartedAt.After(active.StartedAt) {
				active = s
			}
		}
	}
	if active == nil {
		return nil, nil
	}
	return cloneSession(active), nil
}

func (m *MemoryRepository) ListSessions(_ context.Context, userID string) ([]models.InterviewSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sessions := []models.InterviewSession{}
	for _, s := range m.sessions {
		if s.UserID == userID {
			sessions = append(sessions, *cloneSession(s))
		}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
	return sessions, nil
}

func (m *MemoryRepository) AbandonActiveSessions(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.sessions {
		if s.UserID == userID && s.Status == models.StatusInProgress {
			s.Status = models.StatusAbandoned
			s.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	delete(m.exchanges, sessionID)
	return nil
}

// Exchanges

func (m *MemoryRepository) AppendExchange(_ context.Context, exchange *models.Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	newID(&exchange.ID)
	log := m.exchanges[exchange.SessionID]
	exchange.Sequence = len(log) + 1
	touch(&exchange.CreatedAt, &exchange.UpdatedAt)
	c := *exchange
	m.exchanges[exchange.SessionID] = append(log, &c)
	return nil
}

func (m *MemoryRepository) ListExchanges(_ context.Context, sessionID string) ([]models.Exchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Exchange, 0, len(m.exchanges[sessionID]))
	for _, e := range m.exchanges[sessionID] {
		out = append(out, *e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

func (m *MemoryRepository) FindAnswerExchange(_ context.Context, sessionID, text string) (*models.Exchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	log := m.exchanges[sessionID]
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Type == models.ExchangeAnswer && log[i].Text == text {
			c := *log[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) UpdateExchangeScore(_ context.Context, exchangeID string, score int, feedback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, log := range m.exchanges {
		for _, e := range log {
			if e.ID == exchangeID {
				s := score
				e.Score = &s
				e.Feedback = feedback
				e.UpdatedAt = time.Now()
				return nil
			}
		}
	}
	return nil
}

// Evaluations

func (m *MemoryRepository) SaveEvaluation(_ context.Context, evaluation *models.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.evaluations[evaluation.SessionID]; ok {
		evaluation.ID = prev.ID
	}
	newID(&evaluation.ID)
	if evaluation.CreatedAt.IsZero() {
		evaluation.CreatedAt = time.Now()
	}
	m.evaluations[evaluation.SessionID] = cloneEvaluation(evaluation)
	return nil
}

func (m *MemoryRepository) GetEvaluationBySession(_ context.Context, sessionID string) (*models.Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.evaluations[sessionID]
	if !ok {
		return nil, nil
	}
	return cloneEvaluation(e), nil
}

func (m *MemoryRepository) ListEvaluationsByUser(_ context.Context, userID string) ([]models.Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Evaluation{}
	for _, e := range m.evaluations {
		if e.UserID == userID {
			out = append(out, *cloneEvaluation(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EvaluatedAt.After(out[j].EvaluatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) DeleteEvaluationBySession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.evaluations, sessionID)
	return nil
}

// Schedules

func (m *MemoryRepository) CreateSchedule(_ context.Context, schedule *models.InterviewSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	newID(&schedule.ID)
	touch(&schedule.CreatedAt, &schedule.UpdatedAt)
	m.schedules[schedule.ID] = cloneSchedule(schedule)
	return nil
}

func (m *MemoryRepository) SaveSchedule(_ context.Context, schedule *models.InterviewSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	touch(&schedule.CreatedAt, &schedule.UpdatedAt)
	m.schedules[schedule.ID] = cloneSchedule(schedule)
	return nil
}

func (m *MemoryRepository) GetSchedule(_ context.Context, scheduleID string) (*models.InterviewSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.schedules[scheduleID]
	if !ok {
		return nil, nil
	}
	return cloneSchedule(s), nil
}

func (m *MemoryRepository) GetScheduleBySession(_ context.Context, sessionID string) (*models.InterviewSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.schedules {
		if s.SessionID != nil && *s.SessionID == sessionID {
			return cloneSchedule(s), nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) ListSchedules(_ context.Context, userID string, status models.ScheduleStatus) ([]models.InterviewSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.InterviewSchedule{}
	for _, s := range m.schedules {
		if s.UserID == userID && (status == "" || s.Status == status) {
			out = append(out, *cloneSchedule(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledTime.After(out[j].ScheduledTime)
	})
	return out, nil
}

func (m *MemoryRepository) DeleteSchedule(_ context.Context, scheduleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.schedules, scheduleID)
	return nil
}
