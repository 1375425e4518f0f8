package services

import (
	"context"
	"math"
	"time"

	"github.com/hireready/backend/models"
)

const recentSessionLimit = 10

// AnalyticsService aggregates a user's evaluations and sessions for the
// analytics and dashboard views. It only reads.
type AnalyticsService struct {
	evaluations EvaluationStore
	sessions    SessionStore
	users       UserStore
}

func NewAnalyticsService(evaluations EvaluationStore, sessions SessionStore, users UserStore) *AnalyticsService {
	return &AnalyticsService{evaluations: evaluations, sessions: sessions, users: users}
}

// InterviewAnalytics summarizes live interview verdicts.
type InterviewAnalytics struct {
	TotalInterviews int                 `json:"total_interviews"`
	SelectedCount   int                 `json:"selected_count"`
	RejectedCount   int                 `json:"rejected_count"`
	WaitlistedCount int                 `json:"waitlisted_count"`
	AverageScore    float64             `json:"average_score"`
	SuccessRate     float64             `json:"success_rate"`
	Interviews      []models.Evaluation `json:"interviews"`
}

type SessionSummary struct {
	Role             models.InterviewRole `json:"role"`
	OverallReadiness float64              `json:"overall_readiness"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
}

type InterviewStats struct {
	AvgTechnicalScore     float64                      `json:"avg_technical_score"`
	AvgCommunicationScore float64                      `json:"avg_communication_score"`
	AvgConfidenceScore    float64                      `json:"avg_confidence_score"`
	InterviewsByRole      map[models.InterviewRole]int `json:"interviews_by_role"`
	RecentSessions        []SessionSummary             `json:"recent_sessions"`
}

// DashboardMetrics is the per-user overview. Indexes average completed
// sessions only; they are 0 until one completes.
type DashboardMetrics struct {
	Email                 string          `json:"email"`
	FullName              string          `json:"full_name,omitempty"`
	InterviewReadiness    float64         `json:"interview_readiness"`
	TotalInterviews       int             `json:"total_interviews"`
	CompletedInterviews   int             `json:"completed_interviews"`
	InterviewStats        *InterviewStats `json:"interview_stats,omitempty"`
	ConfidenceIndex       float64         `json:"confidence_index"`
	EmotionStabilityIndex float64         `json:"emotion_stability_index"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// InterviewAnalytics counts decisions over every stored evaluation of the
// user. Average score and success rate are rounded to one decimal.
func (s *AnalyticsService) InterviewAnalytics(ctx context.Context, userID string) (*InterviewAnalytics, error) {
	evaluations, err := s.evaluations.ListEvaluationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &InterviewAnalytics{TotalInterviews: len(evaluations), Interviews: evaluations}
	if len(evaluations) == 0 {
		return out, nil
	}
	total := 0
	for _, e := range evaluations {
		total += e.OverallScore
		switch e.Decision {
		case models.DecisionSelected:
			out.SelectedCount++
		case models.DecisionRejected:
			out.RejectedCount++
		case models.DecisionWaitlisted:
			out.WaitlistedCount++
		}
	}
	n := float64(len(evaluations))
	out.AverageScore = round1(float64(total) / n)
	out.SuccessRate = round1(float64(out.SelectedCount) * 100 / n)
	return out, nil
}

// Dashboard builds the overview from the user's profile and session history.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID string) (*DashboardMetrics, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	sessions, err := s.sessions.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	metrics := &DashboardMetrics{
		Email:              user.Email,
		FullName:           user.FullName,
		InterviewReadiness: user.InterviewReadiness,
		TotalInterviews:    len(sessions),
	}
	if len(sessions) == 0 {
		return metrics, nil
	}

	stats := &InterviewStats{InterviewsByRole: make(map[models.InterviewRole]int)}
	var technical, communication, confidence, emotion float64
	// Sessions arrive newest first.
	for _, session := range sessions {
		stats.InterviewsByRole[session.Role]++
		if session.Status != models.StatusCompleted {
			continue
		}
		metrics.CompletedInterviews++
		technical += session.TechnicalScore
		communication += session.CommunicationScore
		confidence += session.ConfidenceScore
		emotion += session.EmotionStabilityScore
		if len(stats.RecentSessions) < recentSessionLimit {
			stats.RecentSessions = append(stats.RecentSessions, SessionSummary{
				Role:             session.Role,
				OverallReadiness: session.OverallReadiness,
				CompletedAt:      session.CompletedAt,
			})
		}
	}
	if n := float64(metrics.CompletedInterviews); n > 0 {
		stats.AvgTechnicalScore = technical / n
		stats.AvgCommunicationScore = communication / n
		stats.AvgConfidenceScore = confidence / n
		metrics.ConfidenceIndex = confidence / n
		metrics.EmotionStabilityIndex = emotion / n
	}
	metrics.InterviewStats = stats
	return metrics, nil
}
