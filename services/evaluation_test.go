package services

import (
	"context"
	"testing"

	"github.com/hireready/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestQuestionScores(t *testing.T) {
	qas := []models.QuestionAnswer{
		{Question: "Q1", Answer: strPtr("Indexes speed up reads")},
		{Question: "Q2", Answer: strPtr("  I DON'T KNOW, sorry")},
		{Question: "Q3", Answer: strPtr("   ")},
		{Question: "Q4", Answer: strPtr("No answer provided")},
		{Question: "Q5", Answer: strPtr("A fine answer")},
		{Question: "Q6"},
	}
	exchanges := []models.Exchange{
		{Type: models.ExchangeQuestion, QuestionNumber: 1, Text: "Q1"},
		{Type: models.ExchangeAnswer, QuestionNumber: 1, Score: intPtr(12), Feedback: "thorough"},
		{Type: models.ExchangeAnswer, QuestionNumber: 1, Score: intPtr(2), Feedback: "later duplicate"},
		{Type: models.ExchangeAnswer, QuestionNumber: 2, Score: intPtr(9), Feedback: "generous"},
		{Type: models.ExchangeAnswer, QuestionNumber: 3, Score: intPtr(5)},
		{Type: models.ExchangeAnswer, QuestionNumber: 4, Score: intPtr(7)},
		{Type: models.ExchangeAnswer, QuestionNumber: 5},
	}

	scores := QuestionScores(qas, exchanges)
	require.Len(t, scores, 6)

	assert.Equal(t, 10, scores[0].Score, "clamped to 10")
	assert.Equal(t, "thorough", scores[0].Feedback, "first answer exchange wins")
	assert.Equal(t, 0, scores[1].Score)
	assert.Equal(t, "generous", scores[1].Feedback)
	assert.Equal(t, 0, scores[2].Score)
	assert.Equal(t, 0, scores[3].Score)
	assert.Equal(t, 0, scores[4].Score, "unscored answer")
	assert.Equal(t, noFeedbackText, scores[4].Feedback)
	assert.Equal(t, 0, scores[5].Score)
	assert.Equal(t, noAnswerText, scores[5].Answer)
	assert.Equal(t, "Q6", scores[5].Question)
}

func TestQuestionScoresEmpty(t *testing.T) {
	scores := QuestionScores(nil, nil)
	assert.NotNil(t, scores)
	assert.Empty(t, scores)
}

func TestIsNonAnswer(t *testing.T) {
	tests := []struct {
		answer *string
		want   bool
	}{
		{nil, true},
		{strPtr(""), true},
		{strPtr(" \t"), true},
		{strPtr("I don't know"), true},
		{strPtr("honestly i dont know"), true},
		{strPtr("I don’t know"), true},
		{strPtr("No answer"), true},
		{strPtr("I know this one"), false},
		{strPtr("Use a B-tree index"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNonAnswer(tt.answer), "answer %v", tt.answer)
	}
}

func TestNormalizeDecision(t *testing.T) {
	tests := []struct {
		label string
		score int
		want  models.Decision
	}{
		{"SELECTED", 10, models.DecisionSelected},
		{" rejected ", 95, models.DecisionRejected},
		{"Waitlisted", 0, models.DecisionWaitlisted},
		{"maybe", 85, models.DecisionSelected},
		{"", 70, models.DecisionSelected},
		{"", 69, models.DecisionWaitlisted},
		{"HIRE", 50, models.DecisionWaitlisted},
		{"", 49, models.DecisionRejected},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDecision(tt.label, tt.score), "%q/%d", tt.label, tt.score)
	}
}

func TestDecisionForScore(t *testing.T) {
	assert.Equal(t, models.DecisionSelected, DecisionForScore(100))
	assert.Equal(t, models.DecisionSelected, DecisionForScore(70))
	assert.Equal(t, models.DecisionWaitlisted, DecisionForScore(50))
	assert.Equal(t, models.DecisionRejected, DecisionForScore(0))
}

func TestAverageQuestionScore(t *testing.T) {
	assert.Nil(t, AverageQuestionScore(nil))

	avg := AverageQuestionScore(models.QuestionScores{{Score: 8}, {Score: 0}, {Score: 7}})
	require.NotNil(t, avg)
	assert.InDelta(t, 5.0, *avg, 1e-9)
}

func TestFallbackEvaluation(t *testing.T) {
	session := &models.InterviewSession{ID: "s1", UserID: "u1"}

	eval := FallbackEvaluation(session)
	assert.Equal(t, "s1", eval.SessionID)
	assert.Equal(t, "u1", eval.UserID)
	assert.Equal(t, 70, eval.OverallScore)
	assert.Equal(t, models.DecisionWaitlisted, eval.Decision)
	assert.Equal(t, models.StringList{"Good communication", "Clear responses"}, eval.Strengths)
	assert.Equal(t, models.StringList{"Could provide more examples"}, eval.Weaknesses)
	assert.Equal(t, models.StringList{"Practice STAR method", "Prepare specific examples"}, eval.Improvements)
	assert.Empty(t, eval.QuestionScores)

	eval.Strengths[0] = "mutated"
	assert.Equal(t, "Good communication", FallbackEvaluation(session).Strengths[0])
}

func TestLiveReportClampsAndNormalizes(t *testing.T) {
	g := newFakeGateway().reply(finalReportPrompt, `{"overallScore": "130", "decision": "great",
"strengths": [{"strength": "SQL"}, 42], "improvements": null}`)
	agg := NewEvaluationAggregator(g)
	session := &models.InterviewSession{ID: "s1", UserID: "u1"}

	eval, fallback := agg.LiveReport(context.Background(), session, &models.InterviewSchedule{}, nil)
	require.False(t, fallback)
	assert.Equal(t, 100, eval.OverallScore)
	assert.Equal(t, models.DecisionSelected, eval.Decision)
	assert.Equal(t, models.StringList{"SQL", "42"}, eval.Strengths)
	assert.NotNil(t, eval.Improvements)
	assert.Empty(t, eval.Improvements)
	assert.NotNil(t, eval.Weaknesses)
}

func TestSessionFeedbackPropagatesErrors(t *testing.T) {
	session := &models.InterviewSession{Role: models.RoleSDE}

	_, err := NewEvaluationAggregator(newFakeGateway().reply(sessionFeedbackPrompt, "no json here")).
		SessionFeedback(context.Background(), session)
	assert.Error(t, err)

	fb, err := NewEvaluationAggregator(newFakeGateway().reply(sessionFeedbackPrompt, `{"overallReadiness": -5}`)).
		SessionFeedback(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 0.0, fb.OverallReadiness)
	assert.NotNil(t, fb.Strengths)
}
