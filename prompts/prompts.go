// Package prompts builds the natural-language prompts sent to the completion
// gateway. Every builder is a pure function of its inputs.
package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hireready/backend/models"
)

// OpeningQuestion is always the first question of a text interview.
const OpeningQuestion = "Let's start with an introduction. Could you tell me about yourself and your background, " +
	"including your experience and what interests you about this role?"

// DefaultResumeChars is how much resume text is passed to live question prompts.
const DefaultResumeChars = 1000

// TextQuestion asks for the next text-mode question as JSON {question, expectedKeyPoints}.
func TextQuestion(role models.InterviewRole, difficulty int, previousContext string) string {
	if strings.TrimSpace(previousContext) == "" {
		previousContext = "None"
	}
	return fmt.Sprintf(`Generate a %s interview question for difficulty level %d (1=easy, 5=very hard).

Previous context: %s

Return a JSON object with:
- question: the interview question
- expectedKeyPoints: array of key points expected in a good answer

Return ONLY valid JSON, no additional text.`, role, difficulty, previousContext)
}

// TextContext renders the answered part of a Q&A list as prompt context.
func TextContext(qas []models.QuestionAnswer) string {
	var b strings.Builder
	b.WriteString("Previous questions and answers:\n")
	for _, qa := range qas {
		if qa.Answer == nil {
			continue
		}
		score := "n/a"
		if qa.Score != nil {
			score = strconv.FormatFloat(*qa.Score, 'f', -1, 64)
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s\nScore: %s/10\n\n", qa.Question, *qa.Answer, score)
	}
	return b.String()
}

// AnswerEvaluation asks for a full structured evaluation of one text-mode answer.
func AnswerEvaluation(role models.InterviewRole, question, answer string) string {
	return fmt.Sprintf(`Evaluate this interview answer for a %s position.

Question: %s
Answer: %s

Provide evaluation in JSON format with:
- score: number between 0-10
- feedback: detailed feedback on the answer
- sentiment: overall sentiment (POSITIVE, NEUTRAL, NEGATIVE)
- confidenceLevel: number between 0-1 indicating answer confidence
- fillerWordCount: count of filler words (um, uh, like, etc.)
- detectedEmotions: array of emotions detected
- technicalAccuracy: score 0-10 for technical correctness
- communicationClarity: score 0-10 for clarity
- shouldIncreaseDifficulty: boolean indicating if next question should be harder

Return ONLY valid JSON, no additional text.`, role, question, answer)
}

// SessionFeedback asks for the final text-mode feedback over the serialized Q&A list.
func SessionFeedback(role models.InterviewRole, sessionData string) string {
	return fmt.Sprintf(`Generate comprehensive interview feedback for a %s interview.

Session data: %s

Provide feedback in JSON format with:
- overallReadiness: percentage 0-100
- strengths: array of strengths demonstrated
- improvements: array of areas for improvement
- detailedFeedback: comprehensive feedback text

Return ONLY valid JSON, no additional text.`, role, sessionData)
}
