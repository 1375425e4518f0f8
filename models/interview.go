package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// InterviewRole is the interview track a session is run for.
type InterviewRole string

const (
	RoleSDE          InterviewRole = "SDE"
	RoleDataAnalyst  InterviewRole = "DATA_ANALYST"
	RoleHR           InterviewRole = "HR"
	RoleSystemDesign InterviewRole = "SYSTEM_DESIGN"
)

// Valid reports whether r is one of the supported roles.
func (r InterviewRole) Valid() bool {
	switch r {
	case RoleSDE, RoleDataAnalyst, RoleHR, RoleSystemDesign:
		return true
	}
	return false
}

// InterviewMode is how the candidate answers.
type InterviewMode string

const (
	ModeText  InterviewMode = "TEXT"
	ModeVoice InterviewMode = "VOICE"
)

func (m InterviewMode) Valid() bool {
	return m == ModeText || m == ModeVoice
}

// SessionStatus values. Completed and Abandoned are terminal.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// Difficulty bounds for the adaptive question level.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// InterviewSession represents one interview attempt. The Q&A list is owned by the
// session and stored with it, so deleting the session deletes its answers.
type InterviewSession struct {
	ID                     string          `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserID                 string          `gorm:"type:varchar(64);not null;index;index:idx_interview_sessions_one_active,unique,where:status = 'in_progress'" json:"user_id"`
	Role                   InterviewRole   `gorm:"type:varchar(32);not null" json:"role"`
	Mode                   InterviewMode   `gorm:"type:varchar(16);not null" json:"mode"`
	QuestionAnswers        QuestionAnswers `gorm:"type:jsonb;not null" json:"question_answers"`
	CurrentDifficultyLevel int             `gorm:"not null;default:1" json:"current_difficulty_level"`
	TechnicalScore         float64         `gorm:"not null;default:0" json:"technical_score"`
	CommunicationScore     float64         `gorm:"not null;default:0" json:"communication_score"`
	ConfidenceScore        float64         `gorm:"not null;default:0" json:"confidence_score"`
	EmotionStabilityScore  float64         `gorm:"not null;default:0" json:"emotion_stability_score"`
	OverallReadiness       float64         `gorm:"not null;default:0" json:"overall_readiness"`
	DetailedFeedback       string          `gorm:"type:text" json:"detailed_feedback,omitempty"`
	Strengths              StringList      `gorm:"type:jsonb" json:"strengths,omitempty"`
	Improvements           StringList      `gorm:"type:jsonb" json:"improvements,omitempty"`
	Status                 SessionStatus   `gorm:"type:varchar(16);not null;index;check:status IN ('in_progress', 'completed', 'abandoned')" json:"status"`
	StartedAt              time.Time       `gorm:"not null;index" json:"started_at"`
	CompletedAt            *time.Time      `json:"completed_at,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	DeletedAt              gorm.DeletedAt  `gorm:"index" json:"-"`
}

// LastQuestion returns the most recent Q&A entry, or nil for an empty session.
func (s *InterviewSession) LastQuestion() *QuestionAnswer {
	if len(s.QuestionAnswers) == 0 {
		return nil
	}
	return &s.QuestionAnswers[len(s.QuestionAnswers)-1]
}

// AnsweredCount counts entries with a submitted answer.
func (s *InterviewSession) AnsweredCount() int {
	n := 0
	for _, qa := range s.QuestionAnswers {
		if qa.Answer != nil {
			n++
		}
	}
	return n
}

func (s *InterviewSession) IsActive() bool {
	return s.Status == StatusInProgress
}

// QuestionAnswer is one asked question and, once submitted, its answer and scoring.
type QuestionAnswer struct {
	Question        string             `json:"question"`
	Answer          *string            `json:"answer"`
	DifficultyLevel int                `json:"difficulty_level"`
	Score           *float64           `json:"score"`
	Feedback        string             `json:"feedback,omitempty"`
	Sentiment       *SentimentAnalysis `json:"sentiment,omitempty"`
	AnsweredAt      *time.Time         `json:"answered_at,omitempty"`
}

// SentimentAnalysis is the structured sentiment attached to a scored answer.
type SentimentAnalysis struct {
	OverallSentiment string   `json:"overall_sentiment"` // POSITIVE, NEUTRAL, NEGATIVE
	ConfidenceLevel  float64  `json:"confidence_level"`  // 0-1
	FillerWordCount  int      `json:"filler_word_count"`
	DetectedEmotions []string `json:"detected_emotions"`
}

// QuestionAnswers is the ordered Q&A list persisted as a JSONB array.
type QuestionAnswers []QuestionAnswer

func (q QuestionAnswers) Value() (driver.Value, error) {
	if q == nil {
		return jsonValue([]QuestionAnswer{})
	}
	return jsonValue([]QuestionAnswer(q))
}

func (q *QuestionAnswers) Scan(src any) error {
	return jsonScan(src, (*[]QuestionAnswer)(q))
}

func (QuestionAnswers) GormDataType() string { return "jsonb" }
