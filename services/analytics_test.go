package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/hireready/backend/models"
	"github.com/hireready/backend/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyticsFixture() (*AnalyticsService, *repository.MemoryRepository) {
	store := repository.NewMemoryRepository()
	return NewAnalyticsService(store, store, store), store
}

func seedEvaluations(t *testing.T, store *repository.MemoryRepository, userID string, verdicts map[int]models.Decision) {
	t.Helper()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	i := 0
	for score, decision := range verdicts {
		i++
		require.NoError(t, store.SaveEvaluation(context.Background(), &models.Evaluation{
			SessionID:    userID + "-s" + string(rune('0'+i)),
			UserID:       userID,
			OverallScore: score,
			Decision:     decision,
			EvaluatedAt:  base.Add(time.Duration(i) * time.Hour),
		}))
	}
}

func TestInterviewAnalytics(t *testing.T) {
	ctx := context.Background()

	t.Run("counts and rates", func(t *testing.T) {
		svc, store := newAnalyticsFixture()
		seedEvaluations(t, store, "u1", map[int]models.Decision{
			80: models.DecisionSelected,
			45: models.DecisionRejected,
			66: models.DecisionWaitlisted,
			91: models.DecisionSelected,
		})
		seedEvaluations(t, store, "u2", map[int]models.Decision{10: models.DecisionRejected})

		got, err := svc.InterviewAnalytics(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 4, got.TotalInterviews)
		assert.Equal(t, 2, got.SelectedCount)
		assert.Equal(t, 1, got.RejectedCount)
		assert.Equal(t, 1, got.WaitlistedCount)
		assert.InDelta(t, 70.5, got.AverageScore, 1e-9)
		assert.InDelta(t, 50.0, got.SuccessRate, 1e-9)
		require.Len(t, got.Interviews, 4)
		for i := 1; i < len(got.Interviews); i++ {
			assert.False(t, got.Interviews[i].EvaluatedAt.After(got.Interviews[i-1].EvaluatedAt), "newest first")
		}
	})

	t.Run("rounds to one decimal", func(t *testing.T) {
		svc, store := newAnalyticsFixture()
		seedEvaluations(t, store, "u1", map[int]models.Decision{
			70: models.DecisionWaitlisted,
			71: models.DecisionSelected,
			72: models.DecisionWaitlisted,
		})

		got, err := svc.InterviewAnalytics(ctx, "u1")
		require.NoError(t, err)
		assert.InDelta(t, 71.0, got.AverageScore, 1e-9)
		assert.InDelta(t, 33.3, got.SuccessRate, 1e-9)
	})

	t.Run("no evaluations", func(t *testing.T) {
		svc, _ := newAnalyticsFixture()
		got, err := svc.InterviewAnalytics(ctx, "u1")
		require.NoError(t, err)
		assert.Zero(t, got.TotalInterviews)
		assert.Zero(t, got.AverageScore)
		assert.Zero(t, got.SuccessRate)
		assert.NotNil(t, got.Interviews)
	})
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	svc, store := newAnalyticsFixture()

	user := &models.User{Email: "dash@example.com", FullName: "Dash Board", Role: "candidate"}
	require.NoError(t, store.CreateUser(ctx, user))
	_, err := store.UpdateInterviewReadiness(ctx, user.ID, 64)
	require.NoError(t, err)

	empty, err := svc.Dashboard(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalInterviews)
	assert.Nil(t, empty.InterviewStats)
	assert.InDelta(t, 64.0, empty.InterviewReadiness, 1e-9)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	completedAt := base.Add(90 * time.Minute)
	for _, s := range []*models.InterviewSession{
		{Role: models.RoleSDE, Status: models.StatusCompleted, StartedAt: base,
			TechnicalScore: 6, CommunicationScore: 8, ConfidenceScore: 7, EmotionStabilityScore: 7.5, OverallReadiness: 70},
		{Role: models.RoleHR, Status: models.StatusCompleted, StartedAt: base.Add(time.Hour), CompletedAt: &completedAt,
			TechnicalScore: 8, CommunicationScore: 6, ConfidenceScore: 5, EmotionStabilityScore: 7.5, OverallReadiness: 60},
		{Role: models.RoleSDE, Status: models.StatusAbandoned, StartedAt: base.Add(2 * time.Hour),
			TechnicalScore: 10, CommunicationScore: 10, ConfidenceScore: 10},
	} {
		s.UserID = user.ID
		require.NoError(t, store.CreateSession(ctx, s))
	}

	got, err := svc.Dashboard(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "dash@example.com", got.Email)
	assert.Equal(t, "Dash Board", got.FullName)
	assert.Equal(t, 3, got.TotalInterviews)
	assert.Equal(t, 2, got.CompletedInterviews)
	assert.InDelta(t, 6.0, got.ConfidenceIndex, 1e-9)
	assert.InDelta(t, 7.5, got.EmotionStabilityIndex, 1e-9)

	require.NotNil(t, got.InterviewStats)
	stats := got.InterviewStats
	assert.InDelta(t, 7.0, stats.AvgTechnicalScore, 1e-9)
	assert.InDelta(t, 7.0, stats.AvgCommunicationScore, 1e-9)
	assert.InDelta(t, 6.0, stats.AvgConfidenceScore, 1e-9)
	assert.Equal(t, map[models.InterviewRole]int{models.RoleSDE: 2, models.RoleHR: 1}, stats.InterviewsByRole)
	require.Len(t, stats.RecentSessions, 2)
	assert.Equal(t, models.RoleHR, stats.RecentSessions[0].Role)
	assert.InDelta(t, 60.0, stats.RecentSessions[0].OverallReadiness, 1e-9)
	require.NotNil(t, stats.RecentSessions[0].CompletedAt)
	assert.Equal(t, models.RoleSDE, stats.RecentSessions[1].Role)

	_, err = svc.Dashboard(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAnalyticsEndpoints(t *testing.T) {
	f := newAPIFixture(t, newFakeGateway())
	token := f.signup(t, "stats@example.com")

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/v1/analytics", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/v1/dashboard", "", nil).Code)

	rec := f.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(t, rec, &resp)
	me := resp.User
	require.NotEmpty(t, me.ID)

	ctx := context.Background()
	for i, e := range []models.Evaluation{
		{SessionID: "s1", OverallScore: 82, Decision: models.DecisionSelected},
		{SessionID: "s2", OverallScore: 40, Decision: models.DecisionRejected},
	} {
		e.UserID = me.ID
		e.EvaluatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, f.server.store.SaveEvaluation(ctx, &e))
	}
	require.NoError(t, f.server.store.SaveEvaluation(ctx, &models.Evaluation{
		SessionID: "s3", UserID: "someone-else", OverallScore: 99, Decision: models.DecisionSelected,
	}))

	rec = f.do(t, http.MethodGet, "/api/v1/analytics", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var analytics InterviewAnalytics
	decode(t, rec, &analytics)
	assert.Equal(t, 2, analytics.TotalInterviews)
	assert.Equal(t, 1, analytics.SelectedCount)
	assert.InDelta(t, 61.0, analytics.AverageScore, 1e-9)
	assert.InDelta(t, 50.0, analytics.SuccessRate, 1e-9)
	require.Len(t, analytics.Interviews, 2)
	assert.Equal(t, "s2", analytics.Interviews[0].SessionID)

	rec = f.do(t, http.MethodPost, "/api/v1/interviews", token, map[string]string{"role": "SDE"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dashboard DashboardMetrics
	decode(t, rec, &dashboard)
	assert.Equal(t, "stats@example.com", dashboard.Email)
	assert.Equal(t, 1, dashboard.TotalInterviews)
	assert.Zero(t, dashboard.CompletedInterviews)
	require.NotNil(t, dashboard.InterviewStats)
	assert.Equal(t, 1, dashboard.InterviewStats.InterviewsByRole[models.RoleSDE])
	assert.Empty(t, dashboard.InterviewStats.RecentSessions)
}
