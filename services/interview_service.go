package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hireready/backend/ai"
	"github.com/hireready/backend/models"
	"github.com/hireready/backend/prompts"
)

const (
	DefaultMaxQuestions = 10

	// EmotionStabilityPlaceholder stands in for a real emotion-stability measure,
	// which is not computed yet.
	EmotionStabilityPlaceholder = 7.5
)

// InterviewService drives text-mode interview sessions: start, answer, adapt
// difficulty, complete.
type InterviewService struct {
	sessions     SessionStore
	users        UserStore
	gateway      ai.Gateway
	aggregator   *EvaluationAggregator
	locks        *Locks
	maxQuestions int
	now          func() time.Time
}

func NewInterviewService(sessions SessionStore, users UserStore, gateway ai.Gateway, locks *Locks, maxQuestions int) *InterviewService {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	if locks == nil {
		locks = NewLocks()
	}
	return &InterviewService{
		sessions:     sessions,
		users:        users,
		gateway:      gateway,
		aggregator:   NewEvaluationAggregator(gateway),
		locks:        locks,
		maxQuestions: maxQuestions,
		now:          time.Now,
	}
}

// StartSession abandons the user's in-progress session, if any, and opens a new
// one with the fixed introduction question at difficulty 1.
func (s *InterviewService) StartSession(ctx context.Context, userID string, role models.InterviewRole, mode models.InterviewMode) (*models.InterviewSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrValidation, mode)
	}

	unlock := s.locks.User(userID)
	defer unlock()

	abandoned, err := abandonActive(ctx, s.sessions, s.locks, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to abandon previous session: %w", err)
	}
	if abandoned > 0 {
		SessionTransitions.WithLabelValues(string(mode), string(models.StatusAbandoned)).Add(float64(abandoned))
	}

	session := &models.InterviewSession{
		UserID:                 userID,
		Role:                   role,
		Mode:                   mode,
		CurrentDifficultyLevel: models.MinDifficulty,
		QuestionAnswers: models.QuestionAnswers{{
			Question:        prompts.OpeningQuestion,
			DifficultyLevel: models.MinDifficulty,
		}},
		Status:    models.StatusInProgress,
		StartedAt: s.now(),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, storeError(err)
	}

	SessionTransitions.WithLabelValues(string(mode), string(models.StatusInProgress)).Inc()
	slog.Info("Interview session started", "session_id", session.ID, "user_id", userID, "role", role, "mode", mode)
	return session, nil
}

// answerEvaluation is the reply shape for a scored text-mode answer.
type answerEvaluation struct {
	Score                    *ai.Score     `json:"score"`
	Feedback                 string        `json:"feedback"`
	Sentiment                string        `json:"sentiment"`
	ConfidenceLevel          ai.Score      `json:"confidenceLevel"`
	FillerWordCount          ai.Score      `json:"fillerWordCount"`
	DetectedEmotions         ai.StringList `json:"detectedEmotions"`
	TechnicalAccuracy        ai.Score      `json:"technicalAccuracy"`
	CommunicationClarity     ai.Score      `json:"communicationClarity"`
	ShouldIncreaseDifficulty bool          `json:"shouldIncreaseDifficulty"`
}

type generatedQuestion struct {
	Question          string        `json:"question"`
	ExpectedKeyPoints ai.StringList `json:"expectedKeyPoints"`
}

// SubmitAnswer scores the answer to the pending question, updates the running
// metrics and difficulty, then either asks the next question or completes the
// session once the question cap is reached. Nothing is persisted if an AI call
// fails.
func (s *InterviewService) SubmitAnswer(ctx context.Context, sessionID, answer string) (*models.InterviewSession, error) {
	unlock := s.locks.Session(sessionID)
	defer unlock()

	session, err := s.loadActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pending := session.LastQuestion()
	if pending == nil || pending.Answer != nil {
		return nil, fmt.Errorf("%w: no question is awaiting an answer", ErrInvalidState)
	}

	raw, err := s.gateway.Generate(ctx, prompts.AnswerEvaluation(session.Role, pending.Question, answer))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate answer: %w", err)
	}
	var eval answerEvaluation
	if err := ai.DecodeObject(raw, &eval); err != nil {
		return nil, fmt.Errorf("failed to decode answer evaluation: %w", err)
	}
	if eval.Score == nil {
		return nil, fmt.Errorf("%w: answer evaluation has no score", ai.ErrMalformedResponse)
	}

	now := s.now()
	score := ai.Clamp(float64(*eval.Score), 0, 10)
	text := answer
	pending.Answer = &text
	pending.AnsweredAt = &now
	pending.Score = &score
	pending.Feedback = eval.Feedback
	pending.Sentiment = &models.SentimentAnalysis{
		OverallSentiment: normalizeSentiment(eval.Sentiment),
		ConfidenceLevel:  ai.Clamp(float64(eval.ConfidenceLevel), 0, 1),
		FillerWordCount:  int(ai.Clamp(float64(eval.FillerWordCount), 0, 1e6)),
		DetectedEmotions: []string(eval.DetectedEmotions),
	}
	AnswerScores.Observe(score)

	applyRunningMetrics(session, ai.Clamp(float64(eval.CommunicationClarity), 0, 10))
	session.CurrentDifficultyLevel = nextDifficulty(session.CurrentDifficultyLevel, eval.ShouldIncreaseDifficulty, score)

	if len(session.QuestionAnswers) < s.maxQuestions {
		question, err := s.nextQuestion(ctx, session)
		if err != nil {
			return nil, err
		}
		session.QuestionAnswers = append(session.QuestionAnswers, models.QuestionAnswer{
			Question:        question,
			DifficultyLevel: session.CurrentDifficultyLevel,
		})
		if err := s.sessions.SaveSession(ctx, session); err != nil {
			return nil, storeError(err)
		}
		slog.Info("Answer recorded", "session_id", session.ID, "score", score, "difficulty", session.CurrentDifficultyLevel, "questions", len(session.QuestionAnswers))
		return session, nil
	}

	if err := s.complete(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CompleteSession synthesizes final feedback and marks the session completed.
// Running it again on a completed session re-synthesizes the feedback.
func (s *InterviewService) CompleteSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	unlock := s.locks.Session(sessionID)
	defer unlock()

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status == models.StatusAbandoned {
		return nil, ErrSessionNotActive
	}
	if err := s.complete(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *InterviewService) complete(ctx context.Context, session *models.InterviewSession) error {
	feedback, err := s.aggregator.SessionFeedback(ctx, session)
	if err != nil {
		return err
	}

	now := s.now()
	session.OverallReadiness = feedback.OverallReadiness
	session.DetailedFeedback = feedback.DetailedFeedback
	session.Strengths = models.StringList(feedback.Strengths)
	session.Improvements = models.StringList(feedback.Improvements)
	session.Status = models.StatusCompleted
	session.CompletedAt = &now
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return storeError(err)
	}
	SessionTransitions.WithLabelValues(string(session.Mode), string(models.StatusCompleted)).Inc()

	found, err := s.users.UpdateInterviewReadiness(ctx, session.UserID, session.OverallReadiness)
	switch {
	case err != nil:
		slog.Error("Failed to update user readiness", "error", err, "user_id", session.UserID, "session_id", session.ID)
	case !found:
		slog.Warn("User not found while updating readiness", "user_id", session.UserID, "session_id", session.ID)
	}

	slog.Info("Interview session completed", "session_id", session.ID, "user_id", session.UserID, "readiness", session.OverallReadiness)
	return nil
}

func (s *InterviewService) nextQuestion(ctx context.Context, session *models.InterviewSession) (string, error) {
	prompt := prompts.TextQuestion(session.Role, session.CurrentDifficultyLevel, prompts.TextContext(session.QuestionAnswers))
	raw, err := s.gateway.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate question: %w", err)
	}
	var q generatedQuestion
	if err := ai.DecodeObject(raw, &q); err != nil {
		return "", fmt.Errorf("failed to decode question: %w", err)
	}
	question := strings.TrimSpace(q.Question)
	if question == "" {
		return "", fmt.Errorf("%w: question is empty", ai.ErrMalformedResponse)
	}
	return question, nil
}

func (s *InterviewService) loadActive(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if !session.IsActive() {
		return nil, ErrSessionNotActive
	}
	return session, nil
}

func (s *InterviewService) GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetActiveSession returns the user's in-progress session or ErrSessionNotFound.
func (s *InterviewService) GetActiveSession(ctx context.Context, userID string) (*models.InterviewSession, error) {
	session, err := s.sessions.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// History lists the user's sessions, newest first.
func (s *InterviewService) History(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	return s.sessions.ListSessions(ctx, userID)
}

// applyRunningMetrics folds the newest answer into the session's running
// scores. N counts answered questions including the newest one.
func applyRunningMetrics(session *models.InterviewSession, communicationClarity float64) {
	var n int
	var scoreSum, confidenceSum float64
	for _, qa := range session.QuestionAnswers {
		if qa.Answer == nil {
			continue
		}
		n++
		if qa.Score != nil {
			scoreSum += *qa.Score
		}
		if qa.Sentiment != nil {
			confidenceSum += qa.Sentiment.ConfidenceLevel
		}
	}
	if n == 0 {
		return
	}
	fn := float64(n)
	session.TechnicalScore = scoreSum / fn
	session.CommunicationScore = (session.CommunicationScore*(fn-1) + communicationClarity) / fn
	session.ConfidenceScore = confidenceSum / fn * 10
	session.EmotionStabilityScore = EmotionStabilityPlaceholder
}

// nextDifficulty raises the level on an increase signal and lowers it only when
// the signal is absent and the score fell below 5.
func nextDifficulty(current int, increase bool, score float64) int {
	next := current
	switch {
	case increase:
		next = current + 1
	case score < 5:
		next = current - 1
	}
	if next > models.MaxDifficulty {
		return models.MaxDifficulty
	}
	if next < models.MinDifficulty {
		return models.MinDifficulty
	}
	return next
}

func normalizeSentiment(label string) string {
	switch l := strings.ToUpper(strings.TrimSpace(label)); l {
	case "POSITIVE", "NEUTRAL", "NEGATIVE":
		return l
	default:
		return "NEUTRAL"
	}
}

// IsUpstreamError reports whether err came from the AI providers.
func IsUpstreamError(err error) bool {
	return errors.Is(err, ai.ErrUpstreamUnavailable) || errors.Is(err, ai.ErrMalformedResponse)
}
