package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/hireready/backend/models"
)

// LiveOpening is question #1 of every live interview.
func LiveOpening(company, position string) string {
	return fmt.Sprintf("Hello! Welcome to your interview for the %s position at %s. "+
		"Before we begin, I'd like to get to know you better. "+
		"Could you please introduce yourself and tell me a bit about your background?",
		position, company)
}

// LiveQuestionInput carries the schedule context for a live question.
type LiveQuestionInput struct {
	Company        string
	Position       string
	RoundType      string
	Difficulty     string
	QuestionNumber int
	History        string
	ResumeText     string
	ResumeChars    int
}

var difficultyGuidance = map[string][]string{
	models.DifficultyEasy: {
		"Ask fundamental concepts and basic scenarios",
		"Focus on understanding core principles",
		"Keep questions straightforward and clear",
	},
	models.DifficultyMedium: {
		"Ask about practical applications and real-world scenarios",
		"Include some problem-solving elements",
		"Test deeper understanding of concepts",
	},
	models.DifficultyHard: {
		"Ask complex, multi-layered questions",
		"Include advanced concepts and edge cases",
		"Test critical thinking and problem-solving skills",
	},
}

var roundGuidance = map[string][]string{
	models.RoundHR: {
		"Focus on behavioral questions, cultural fit, and soft skills",
		"Ask about past experiences, teamwork, and conflict resolution",
		"Explore motivation, career goals, and company alignment",
	},
	models.RoundCoding: {
		"Ask about algorithms, data structures, and coding problems",
		"Include questions about code optimization and complexity",
		"Test problem-solving and technical implementation skills",
	},
	models.RoundCommunication: {
		"Assess clarity of expression and articulation",
		"Ask about explaining complex topics to non-technical audiences",
		"Test presentation and interpersonal skills",
	},
	models.RoundProblemSolving: {
		"Present analytical and logical reasoning challenges",
		"Ask about approach to solving complex problems",
		"Test critical thinking and structured problem-solving",
	},
	models.RoundAptitude: {
		"Ask quantitative and logical reasoning questions",
		"Include puzzles, patterns, and analytical problems",
		"Test numerical ability and logical thinking",
	},
}

func writeGuidance(b *strings.Builder, lines []string) {
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// ResumeSummary cuts resume text to limit characters, marking the cut with "...".
func ResumeSummary(text string, limit int) string {
	if limit <= 0 {
		limit = DefaultResumeChars
	}
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "..."
}

// LiveQuestion asks for a single plain-text question from question #2 onwards.
func LiveQuestion(in LiveQuestionInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert interviewer conducting a %s interview for %s at %s.\n\n",
		in.RoundType, in.Position, in.Company)

	difficulty := strings.ToUpper(in.Difficulty)
	fmt.Fprintf(&b, "DIFFICULTY LEVEL: %s\n", in.Difficulty)
	if lines, ok := difficultyGuidance[difficulty]; ok {
		writeGuidance(&b, lines)
	} else {
		b.WriteString("\n")
	}

	round := strings.ToUpper(in.RoundType)
	fmt.Fprintf(&b, "ROUND TYPE: %s\n", in.RoundType)
	if lines, ok := roundGuidance[round]; ok {
		writeGuidance(&b, lines)
	} else {
		b.WriteString("\n")
	}

	hasResume := strings.TrimSpace(in.ResumeText) != ""
	if hasResume {
		b.WriteString("CANDIDATE'S RESUME SUMMARY:\n")
		b.WriteString(ResumeSummary(in.ResumeText, in.ResumeChars))
		b.WriteString("\n\n")
		b.WriteString("IMPORTANT: Use the resume information to:\n")
		writeGuidance(&b, []string{
			"Ask about specific projects, technologies, or experiences mentioned",
			"Dig deeper into their claimed skills and achievements",
			"Make questions relevant to their background",
		})
	}

	if in.History != "" {
		b.WriteString("PREVIOUS CONVERSATION:\n")
		b.WriteString(in.History)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "This is question #%d of the interview.\n\n", in.QuestionNumber)
	b.WriteString("GENERATE ONE INTERVIEW QUESTION that:\n")
	b.WriteString("1. Is highly relevant to the position, company, and round type\n")
	b.WriteString("2. Matches the specified difficulty level\n")
	b.WriteString("3. Builds naturally on previous questions (if any)\n")
	b.WriteString("4. Is specific, clear, and professional\n")
	b.WriteString("5. Allows the candidate to demonstrate their knowledge and skills\n")
	if hasResume {
		b.WriteString("6. References or relates to the candidate's resume when appropriate\n")
	}

	b.WriteString("\nIMPORTANT RULES:\n")
	b.WriteString("- Return ONLY the question text, nothing else\n")
	b.WriteString("- No numbering, no labels, no additional formatting\n")
	b.WriteString("- Make it conversational and natural\n")
	b.WriteString("- Ensure it's different from previous questions\n")
	return b.String()
}

// LiveAnswerEvaluation asks for {score, feedback} on one live answer.
func LiveAnswerEvaluation(position, difficulty, question, answer string) string {
	return fmt.Sprintf(`You are evaluating an interview answer for the position: %s (Difficulty: %s)

Question: %s

Candidate's Answer: %s

Provide a JSON evaluation with the following structure:
{
  "score": <number 0-10>,
  "feedback": "<brief constructive feedback>"
}

Scoring criteria:
- 9-10: Excellent, comprehensive answer
- 7-8: Good answer with minor gaps
- 5-6: Acceptable but needs improvement
- 3-4: Weak answer, missing key points
- 0-2: Poor or irrelevant answer

Return ONLY the JSON object, nothing else.`, position, difficulty, question, answer)
}

// ReportInput describes the finished live interview.
type ReportInput struct {
	Company       string
	Position      string
	RoundType     string
	Difficulty    string
	Transcript    string
	QuestionCount int
}

// FinalReport asks for the structured end-of-interview verdict.
func FinalReport(in ReportInput) string {
	return fmt.Sprintf(`You are generating a final evaluation report for an interview.

Interview Details:
- Company: %s
- Position: %s
- Round: %s
- Difficulty: %s
- Questions Asked: %d

Full Interview Transcript:
%s

Generate a comprehensive evaluation report in JSON format:
{
  "overallScore": <number 0-100>,
  "decision": "<SELECTED|REJECTED|WAITLISTED>",
  "strengths": ["strength1", "strength2", "strength3"],
  "weaknesses": ["weakness1", "weakness2"],
  "improvements": ["suggestion1", "suggestion2", "suggestion3"],
  "detailedFeedback": "<2-3 sentence overall assessment>"
}

Decision criteria:
- SELECTED: Overall score >= 70
- WAITLISTED: Overall score 50-69
- REJECTED: Overall score < 50

Return ONLY the JSON object, nothing else.`,
		in.Company, in.Position, in.RoundType, in.Difficulty, in.QuestionCount, in.Transcript)
}

// ConversationHistory renders exchanges as "Q: "/"A: " lines.
func ConversationHistory(exchanges []models.Exchange) string {
	lines := make([]string, 0, len(exchanges))
	for _, e := range exchanges {
		prefix := "A: "
		if e.Type == models.ExchangeQuestion {
			prefix = "Q: "
		}
		lines = append(lines, prefix+e.Text)
	}
	return strings.Join(lines, "\n")
}

// Transcript renders exchanges as "[timestamp] TYPE: text" lines.
func Transcript(exchanges []models.Exchange) string {
	lines := make([]string, 0, len(exchanges))
	for _, e := range exchanges {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			e.Timestamp.UTC().Format(time.RFC3339), strings.ToUpper(e.Type), e.Text))
	}
	return strings.Join(lines, "\n")
}
