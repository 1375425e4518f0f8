package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/hireready/backend/ai"
	"github.com/hireready/backend/models"
	"github.com/hireready/backend/prompts"
)

// LiveInterviewService runs schedule-driven voice interviews. Answers are
// scored in the background and the final verdict always has a fallback.
type LiveInterviewService struct {
	sessions    SessionStore
	exchanges   ExchangeStore
	evaluations EvaluationStore
	schedules   ScheduleStore
	gateway     ai.Gateway
	aggregator  *EvaluationAggregator
	tasks       *TaskRunner
	locks       *Locks
	resumeChars int
	now         func() time.Time
}

type LiveStores struct {
	Sessions    SessionStore
	Exchanges   ExchangeStore
	Evaluations EvaluationStore
	Schedules   ScheduleStore
}

func NewLiveInterviewService(stores LiveStores, gateway ai.Gateway, tasks *TaskRunner, locks *Locks, resumeChars int) *LiveInterviewService {
	if tasks == nil {
		tasks = NewTaskRunner(0)
	}
	if locks == nil {
		locks = NewLocks()
	}
	if resumeChars <= 0 {
		resumeChars = prompts.DefaultResumeChars
	}
	return &LiveInterviewService{
		sessions:    stores.Sessions,
		exchanges:   stores.Exchanges,
		evaluations: stores.Evaluations,
		schedules:   stores.Schedules,
		gateway:     gateway,
		aggregator:  NewEvaluationAggregator(gateway),
		tasks:       tasks,
		locks:       locks,
		resumeChars: resumeChars,
		now:         time.Now,
	}
}

// RoleForPosition infers the interview track from a free-form position title.
func RoleForPosition(position string) models.InterviewRole {
	p := strings.ToLower(position)
	switch {
	case strings.Contains(p, "data") || strings.Contains(p, "analyst"):
		return models.RoleDataAnalyst
	case strings.Contains(p, "hr") || strings.Contains(p, "human"):
		return models.RoleHR
	case strings.Contains(p, "system") || strings.Contains(p, "design"):
		return models.RoleSystemDesign
	default:
		return models.RoleSDE
	}
}

func difficultyLevel(label string) int {
	switch strings.ToUpper(label) {
	case models.DifficultyHard:
		return models.MaxDifficulty
	case models.DifficultyMedium:
		return 3
	default:
		return models.MinDifficulty
	}
}

// StartLiveSession opens a voice session for the schedule and links the two.
func (s *LiveInterviewService) StartLiveSession(ctx context.Context, scheduleID string) (*models.InterviewSession, error) {
	schedule, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}
	if schedule.Status.Terminal() {
		return nil, fmt.Errorf("%w: schedule is %s", ErrInvalidState, schedule.Status)
	}

	unlock := s.locks.User(schedule.UserID)
	defer unlock()

	abandoned, err := abandonActive(ctx, s.sessions, s.locks, schedule.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to abandon previous session: %w", err)
	}
	if abandoned > 0 {
		SessionTransitions.WithLabelValues(string(models.ModeVoice), string(models.StatusAbandoned)).Add(float64(abandoned))
	}

	session := &models.InterviewSession{
		UserID:                 schedule.UserID,
		Role:                   RoleForPosition(schedule.Position),
		Mode:                   models.ModeVoice,
		QuestionAnswers:        models.QuestionAnswers{},
		CurrentDifficultyLevel: difficultyLevel(schedule.Difficulty),
		Status:                 models.StatusInProgress,
		StartedAt:              s.now(),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, storeError(err)
	}

	sessionID := session.ID
	schedule.Status = models.ScheduleInProgress
	schedule.SessionID = &sessionID
	if err := s.schedules.SaveSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	SessionTransitions.WithLabelValues(string(models.ModeVoice), string(models.StatusInProgress)).Inc()
	slog.Info("Live interview started", "session_id", session.ID, "schedule_id", scheduleID, "user_id", schedule.UserID, "role", session.Role)
	return session, nil
}

func (s *LiveInterviewService) load(ctx context.Context, sessionID string) (*models.InterviewSession, *models.InterviewSchedule, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}
	schedule, err := s.schedules.GetScheduleBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if schedule == nil {
		return nil, nil, ErrScheduleNotFound
	}
	return session, schedule, nil
}

// GetNextQuestion records the previous answer, if one is given, queues it for
// background scoring and returns the next question.
func (s *LiveInterviewService) GetNextQuestion(ctx context.Context, sessionID string, previousAnswer *string) (string, error) {
	unlock := s.locks.Session(sessionID)
	defer unlock()

	session, schedule, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if !session.IsActive() {
		return "", ErrSessionNotActive
	}

	if previousAnswer != nil && strings.TrimSpace(*previousAnswer) != "" && len(session.QuestionAnswers) > 0 {
		// A retry after a failed question generation resends the same answer.
		if last := session.LastQuestion(); last.Answer == nil || *last.Answer != *previousAnswer {
			if err := s.recordAnswer(ctx, session, schedule, *previousAnswer); err != nil {
				return "", err
			}
		}
	}

	exchanges, err := s.exchanges.ListExchanges(ctx, sessionID)
	if err != nil {
		return "", err
	}

	number := len(session.QuestionAnswers) + 1
	question := prompts.LiveOpening(schedule.Company, schedule.Position)
	if number > 1 {
		raw, err := s.gateway.Generate(ctx, prompts.LiveQuestion(prompts.LiveQuestionInput{
			Company:        schedule.Company,
			Position:       schedule.Position,
			RoundType:      schedule.RoundType,
			Difficulty:     schedule.Difficulty,
			QuestionNumber: number,
			History:        prompts.ConversationHistory(exchanges),
			ResumeText:     schedule.ResumeText,
			ResumeChars:    s.resumeChars,
		}))
		if err != nil {
			return "", fmt.Errorf("failed to generate interview question: %w", err)
		}
		question = strings.TrimSpace(raw)
		if question == "" {
			return "", fmt.Errorf("%w: question is empty", ai.ErrMalformedResponse)
		}
	}

	session.QuestionAnswers = append(session.QuestionAnswers, models.QuestionAnswer{
		Question:        question,
		DifficultyLevel: session.CurrentDifficultyLevel,
	})
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return "", storeError(err)
	}
	if err := s.exchanges.AppendExchange(ctx, &models.Exchange{
		SessionID:      sessionID,
		Type:           models.ExchangeQuestion,
		Text:           question,
		Timestamp:      s.now(),
		QuestionNumber: number,
	}); err != nil {
		return "", err
	}

	schedule.QuestionsAsked = number
	if err := s.schedules.SaveSchedule(ctx, schedule); err != nil {
		slog.Warn("Failed to update questions asked", "error", err, "schedule_id", schedule.ID)
	}

	slog.Info("Live question generated", "session_id", sessionID, "question_number", number)
	return question, nil
}

func (s *LiveInterviewService) recordAnswer(ctx context.Context, session *models.InterviewSession, schedule *models.InterviewSchedule, answer string) error {
	now := s.now()
	last := session.LastQuestion()
	text := answer
	last.Answer = &text
	last.AnsweredAt = &now

	if err := s.exchanges.AppendExchange(ctx, &models.Exchange{
		SessionID:      session.ID,
		Type:           models.ExchangeAnswer,
		Text:           answer,
		Timestamp:      now,
		QuestionNumber: len(session.QuestionAnswers),
	}); err != nil {
		return err
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return storeError(err)
	}

	sessionID, question := session.ID, last.Question
	position, difficulty := schedule.Position, schedule.Difficulty
	s.tasks.Go("live_answer_scoring", func(ctx context.Context) error {
		return s.scoreAnswer(ctx, sessionID, question, answer, position, difficulty)
	})
	return nil
}

type liveAnswerScore struct {
	Score    *ai.Score `json:"score"`
	Feedback string    `json:"feedback"`
}

// scoreAnswer back-fills the score of the answer exchange whose text matches
// exactly. Two identical answers in one session race for the same exchange.
func (s *LiveInterviewService) scoreAnswer(ctx context.Context, sessionID, question, answer, position, difficulty string) error {
	raw, err := s.gateway.Generate(ctx, prompts.LiveAnswerEvaluation(position, difficulty, question, answer))
	if err != nil {
		return fmt.Errorf("failed to evaluate answer: %w", err)
	}
	var reply liveAnswerScore
	if err := ai.DecodeObject(raw, &reply); err != nil {
		return err
	}
	if reply.Score == nil {
		return fmt.Errorf("%w: answer evaluation has no score", ai.ErrMalformedResponse)
	}
	score := int(math.Round(ai.Clamp(float64(*reply.Score), 0, 10)))

	exchange, err := s.exchanges.FindAnswerExchange(ctx, sessionID, answer)
	if err != nil {
		return err
	}
	if exchange == nil {
		slog.Warn("Answer exchange not found for score", "session_id", sessionID)
		return nil
	}
	if err := s.exchanges.UpdateExchangeScore(ctx, exchange.ID, score, reply.Feedback); err != nil {
		return err
	}
	AnswerScores.Observe(float64(score))
	slog.Debug("Live answer scored", "session_id", sessionID, "exchange_id", exchange.ID, "score", score)
	return nil
}

// EndLiveSession produces and stores the final evaluation, then marks the
// session and schedule completed. Report synthesis failures fall back to the
// neutral verdict, so only lookups and persistence can fail. Ending an already
// completed session returns its stored evaluation.
func (s *LiveInterviewService) EndLiveSession(ctx context.Context, sessionID string) (*models.Evaluation, error) {
	unlock := s.locks.Session(sessionID)
	defer unlock()

	session, schedule, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.StatusAbandoned {
		return nil, ErrSessionNotActive
	}
	if session.Status == models.StatusCompleted {
		existing, err := s.evaluations.GetEvaluationBySession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	exchanges, err := s.exchanges.ListExchanges(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	evaluation, fallback := s.aggregator.LiveReport(ctx, session, schedule, exchanges)
	if err := s.evaluations.SaveEvaluation(ctx, evaluation); err != nil {
		return nil, err
	}
	EvaluationDecisions.WithLabelValues(string(evaluation.Decision), fmt.Sprint(fallback)).Inc()

	now := s.now()
	session.Status = models.StatusCompleted
	session.CompletedAt = &now
	session.OverallReadiness = float64(evaluation.OverallScore)
	session.DetailedFeedback = evaluation.DetailedFeedback
	session.Strengths = evaluation.Strengths
	session.Improvements = evaluation.Improvements
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, storeError(err)
	}
	SessionTransitions.WithLabelValues(string(models.ModeVoice), string(models.StatusCompleted)).Inc()

	schedule.Status = models.ScheduleCompleted
	schedule.CompletedAt = &now
	schedule.QuestionsAsked = len(session.QuestionAnswers)
	schedule.AverageScore = AverageQuestionScore(QuestionScores(session.QuestionAnswers, exchanges))
	if err := s.schedules.SaveSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	slog.Info("Live interview completed", "session_id", sessionID, "schedule_id", schedule.ID, "score", evaluation.OverallScore, "decision", evaluation.Decision, "fallback", fallback)
	return evaluation, nil
}

// GetEvaluation returns the stored evaluation for a session.
func (s *LiveInterviewService) GetEvaluation(ctx context.Context, sessionID string) (*models.Evaluation, error) {
	evaluation, err := s.evaluations.GetEvaluationBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if evaluation == nil {
		return nil, ErrEvaluationNotFound
	}
	return evaluation, nil
}

// DeleteEvaluation removes the evaluation and then its session.
func (s *LiveInterviewService) DeleteEvaluation(ctx context.Context, sessionID string) error {
	unlock := s.locks.Session(sessionID)
	defer unlock()

	evaluation, err := s.evaluations.GetEvaluationBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	if evaluation == nil {
		return ErrEvaluationNotFound
	}
	if err := s.evaluations.DeleteEvaluationBySession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	slog.Info("Evaluation and session deleted", "session_id", sessionID)
	return nil
}
