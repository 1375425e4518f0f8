package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestQuestionAnswersColumnRoundTrip(t *testing.T) {
	answeredAt := time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)
	in := QuestionAnswers{
		{
			Question:        "Tell me about yourself",
			Answer:          ptr("I write Go services"),
			DifficultyLevel: 1,
			Score:           ptr(7.25),
			Feedback:        "Clear",
			Sentiment: &SentimentAnalysis{
				OverallSentiment: "POSITIVE",
				ConfidenceLevel:  0.8,
				FillerWordCount:  2,
				DetectedEmotions: []string{"calm"},
			},
			AnsweredAt: &answeredAt,
		},
		{Question: "Explain channels", DifficultyLevel: 2},
	}

	v, err := in.Value()
	require.NoError(t, err)

	var out QuestionAnswers
	require.NoError(t, out.Scan(v))
	require.Len(t, out, 2)
	assert.Equal(t, in[0].Question, out[0].Question)
	assert.Equal(t, *in[0].Answer, *out[0].Answer)
	assert.InDelta(t, *in[0].Score, *out[0].Score, 1e-9)
	assert.Equal(t, in[0].Sentiment, out[0].Sentiment)
	assert.True(t, answeredAt.Equal(*out[0].AnsweredAt))
	assert.Nil(t, out[1].Answer)
	assert.Nil(t, out[1].Score)
	assert.Equal(t, 2, out[1].DifficultyLevel)

	var fromBytes QuestionAnswers
	require.NoError(t, fromBytes.Scan([]byte(v.(string))))
	assert.Len(t, fromBytes, 2)
}

func TestJSONColumnsHandleNil(t *testing.T) {
	v, err := QuestionAnswers(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	list := StringList{"kept"}
	require.NoError(t, list.Scan(nil))
	assert.Equal(t, StringList{"kept"}, list)

	var scores QuestionScores
	assert.Error(t, scores.Scan(42))
	assert.Error(t, scores.Scan("{not json"))
}

func TestSessionHelpers(t *testing.T) {
	s := &InterviewSession{Status: StatusInProgress}
	assert.Nil(t, s.LastQuestion())
	assert.True(t, s.IsActive())

	s.QuestionAnswers = QuestionAnswers{
		{Question: "q1", Answer: ptr("a1")},
		{Question: "q2"},
	}
	assert.Equal(t, "q2", s.LastQuestion().Question)
	assert.Equal(t, 1, s.AnsweredCount())

	s.Status = StatusAbandoned
	assert.False(t, s.IsActive())
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, RoleSDE.Valid())
	assert.True(t, RoleSystemDesign.Valid())
	assert.False(t, InterviewRole("PILOT").Valid())

	assert.True(t, ModeText.Valid())
	assert.True(t, ModeVoice.Valid())
	assert.False(t, InterviewMode("VIDEO").Valid())

	assert.True(t, DecisionWaitlisted.Valid())
	assert.False(t, Decision("MAYBE").Valid())

	assert.True(t, ScheduleCancelled.Valid())
	assert.False(t, ScheduleStatus("PAUSED").Valid())
}
