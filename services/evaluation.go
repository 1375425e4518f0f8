package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/hireready/backend/ai"
	"github.com/hireready/backend/models"
	"github.com/hireready/backend/prompts"
)

// Fallback verdict used when the live report cannot be synthesized. These are
// fixed stand-ins, not derived from the interview.
const (
	FallbackOverallScore = 70
	FallbackDecision     = models.DecisionWaitlisted
	FallbackFeedback     = "Overall good performance. Continue practicing interview skills."

	noAnswerText   = "No answer provided"
	noFeedbackText = "No feedback available"
)

var (
	fallbackStrengths    = []string{"Good communication", "Clear responses"}
	fallbackWeaknesses   = []string{"Could provide more examples"}
	fallbackImprovements = []string{"Practice STAR method", "Prepare specific examples"}

	// nonAnswerPhrases force a question's score to zero when found in the answer.
	nonAnswerPhrases = []string{"i don't know", "i don’t know", "i dont know", "no answer"}
)

// EvaluationAggregator turns a finished interview into its final verdict.
type EvaluationAggregator struct {
	gateway ai.Gateway
}

func NewEvaluationAggregator(gateway ai.Gateway) *EvaluationAggregator {
	return &EvaluationAggregator{gateway: gateway}
}

// SessionFeedback is the synthesized text-mode verdict.
type SessionFeedback struct {
	OverallReadiness float64
	DetailedFeedback string
	Strengths        []string
	Improvements     []string
}

type sessionFeedbackReply struct {
	OverallReadiness *ai.Score     `json:"overallReadiness"`
	DetailedFeedback string        `json:"detailedFeedback"`
	Strengths        ai.StringList `json:"strengths"`
	Improvements     ai.StringList `json:"improvements"`
}

// SessionFeedback asks the gateway for text-mode feedback over the full Q&A
// list. There is no local fallback: provider and decode failures are returned.
func (a *EvaluationAggregator) SessionFeedback(ctx context.Context, session *models.InterviewSession) (*SessionFeedback, error) {
	data, err := json.Marshal(session.QuestionAnswers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session data: %w", err)
	}
	raw, err := a.gateway.Generate(ctx, prompts.SessionFeedback(session.Role, string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate interview feedback: %w", err)
	}
	var reply sessionFeedbackReply
	if err := ai.DecodeObject(raw, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode interview feedback: %w", err)
	}
	if reply.OverallReadiness == nil {
		return nil, fmt.Errorf("%w: feedback has no overallReadiness", ai.ErrMalformedResponse)
	}
	return &SessionFeedback{
		OverallReadiness: ai.Clamp(float64(*reply.OverallReadiness), 0, 100),
		DetailedFeedback: reply.DetailedFeedback,
		Strengths:        nonNil(reply.Strengths),
		Improvements:     nonNil(reply.Improvements),
	}, nil
}

type liveReportReply struct {
	OverallScore     *ai.Score     `json:"overallScore"`
	Decision         string        `json:"decision"`
	Strengths        ai.StringList `json:"strengths"`
	Weaknesses       ai.StringList `json:"weaknesses"`
	Improvements     ai.StringList `json:"improvements"`
	DetailedFeedback string        `json:"detailedFeedback"`
}

// LiveReport builds the final live-interview evaluation from the exchange log.
// Any synthesis failure yields the fixed fallback verdict; the boolean reports
// whether the fallback was used.
func (a *EvaluationAggregator) LiveReport(ctx context.Context, session *models.InterviewSession, schedule *models.InterviewSchedule, exchanges []models.Exchange) (*models.Evaluation, bool) {
	eval, err := a.liveReport(ctx, session, schedule, exchanges)
	if err != nil {
		slog.Error("Failed to generate final report, using fallback", "error", err, "session_id", session.ID)
		return FallbackEvaluation(session), true
	}
	return eval, false
}

func (a *EvaluationAggregator) liveReport(ctx context.Context, session *models.InterviewSession, schedule *models.InterviewSchedule, exchanges []models.Exchange) (*models.Evaluation, error) {
	raw, err := a.gateway.Generate(ctx, prompts.FinalReport(prompts.ReportInput{
		Company:       schedule.Company,
		Position:      schedule.Position,
		RoundType:     schedule.RoundType,
		Difficulty:    schedule.Difficulty,
		Transcript:    prompts.Transcript(exchanges),
		QuestionCount: len(session.QuestionAnswers),
	}))
	if err != nil {
		return nil, err
	}
	var reply liveReportReply
	if err := ai.DecodeObject(raw, &reply); err != nil {
		return nil, err
	}
	if reply.OverallScore == nil {
		return nil, fmt.Errorf("%w: report has no overallScore", ai.ErrMalformedResponse)
	}

	score := int(math.Round(ai.Clamp(float64(*reply.OverallScore), 0, 100)))
	return &models.Evaluation{
		SessionID:        session.ID,
		UserID:           session.UserID,
		OverallScore:     score,
		Decision:         NormalizeDecision(reply.Decision, score),
		Strengths:        models.StringList(nonNil(reply.Strengths)),
		Weaknesses:       models.StringList(nonNil(reply.Weaknesses)),
		Improvements:     models.StringList(nonNil(reply.Improvements)),
		DetailedFeedback: reply.DetailedFeedback,
		QuestionScores:   QuestionScores(session.QuestionAnswers, exchanges),
		EvaluatedAt:      time.Now(),
	}, nil
}

// FallbackEvaluation is the neutral verdict used when the report cannot be built.
func FallbackEvaluation(session *models.InterviewSession) *models.Evaluation {
	return &models.Evaluation{
		SessionID:        session.ID,
		UserID:           session.UserID,
		OverallScore:     FallbackOverallScore,
		Decision:         FallbackDecision,
		Strengths:        append(models.StringList(nil), fallbackStrengths...),
		Weaknesses:       append(models.StringList(nil), fallbackWeaknesses...),
		Improvements:     append(models.StringList(nil), fallbackImprovements...),
		DetailedFeedback: FallbackFeedback,
		QuestionScores:   models.QuestionScores{},
		EvaluatedAt:      time.Now(),
	}
}

// QuestionScores builds the per-question breakdown. Scores come from the answer
// exchange logged for the same question number; missing, blank or explicit
// non-answers score 0 whatever the exchange says.
func QuestionScores(qas []models.QuestionAnswer, exchanges []models.Exchange) models.QuestionScores {
	answers := make(map[int]models.Exchange)
	for _, e := range exchanges {
		if e.Type != models.ExchangeAnswer {
			continue
		}
		if _, seen := answers[e.QuestionNumber]; !seen {
			answers[e.QuestionNumber] = e
		}
	}

	out := make(models.QuestionScores, 0, len(qas))
	for i, qa := range qas {
		qs := models.QuestionScore{
			Question: qa.Question,
			Answer:   noAnswerText,
			Feedback: noFeedbackText,
		}
		if qa.Answer != nil {
			qs.Answer = *qa.Answer
		}
		ex, ok := answers[i+1]
		if ok && ex.Feedback != "" {
			qs.Feedback = ex.Feedback
		}
		if !IsNonAnswer(qa.Answer) && ok && ex.Score != nil {
			qs.Score = clampInt(*ex.Score, 0, 10)
		}
		out = append(out, qs)
	}
	return out
}

// IsNonAnswer reports whether an answer is missing, blank or an explicit
// "I don't know" / "no answer".
func IsNonAnswer(answer *string) bool {
	if answer == nil {
		return true
	}
	a := strings.ToLower(strings.TrimSpace(*answer))
	if a == "" {
		return true
	}
	for _, phrase := range nonAnswerPhrases {
		if strings.Contains(a, phrase) {
			return true
		}
	}
	return false
}

// NormalizeDecision accepts a known decision label or derives one from score.
func NormalizeDecision(label string, score int) models.Decision {
	d := models.Decision(strings.ToUpper(strings.TrimSpace(label)))
	if d.Valid() {
		return d
	}
	return DecisionForScore(score)
}

// DecisionForScore applies the report thresholds: >=70 selected, 50-69
// waitlisted, below 50 rejected.
func DecisionForScore(score int) models.Decision {
	switch {
	case score >= 70:
		return models.DecisionSelected
	case score >= 50:
		return models.DecisionWaitlisted
	default:
		return models.DecisionRejected
	}
}

// AverageQuestionScore is the mean per-question score, or nil with no questions.
func AverageQuestionScore(scores models.QuestionScores) *float64 {
	if len(scores) == 0 {
		return nil
	}
	var sum int
	for _, qs := range scores {
		sum += qs.Score
	}
	avg := float64(sum) / float64(len(scores))
	return &avg
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNil(l []string) []string {
	if l == nil {
		return []string{}
	}
	return l
}
