package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Decision is the terminal classification of an Evaluation.
type Decision string

const (
	DecisionSelected   Decision = "SELECTED"
	DecisionRejected   Decision = "REJECTED"
	DecisionWaitlisted Decision = "WAITLISTED"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionSelected, DecisionRejected, DecisionWaitlisted:
		return true
	}
	return false
}

// Evaluation is the final verdict for a session. It is keyed 1:1 by session id
// but has no foreign key, so it survives session clean-up.
type Evaluation struct {
	ID               string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	SessionID        string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"session_id"`
	UserID           string         `gorm:"type:varchar(64);not null;index" json:"user_id"`
	OverallScore     int            `gorm:"not null;check:overall_score BETWEEN 0 AND 100" json:"overall_score"`
	Decision         Decision       `gorm:"type:varchar(16);not null" json:"decision"`
	Strengths        StringList     `gorm:"type:jsonb" json:"strengths"`
	Weaknesses       StringList     `gorm:"type:jsonb" json:"weaknesses"`
	Improvements     StringList     `gorm:"type:jsonb" json:"improvements"`
	DetailedFeedback string         `gorm:"type:text" json:"detailed_feedback"`
	QuestionScores   QuestionScores `gorm:"type:jsonb" json:"question_scores"`
	EvaluatedAt      time.Time      `gorm:"not null" json:"evaluated_at"`
	CreatedAt        time.Time      `json:"created_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for the Evaluation model
func (Evaluation) TableName() string {
	return "interview_evaluations"
}

// QuestionScore is one row of the per-question breakdown.
type QuestionScore struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Score    int    `json:"score"` // 0-10
	Feedback string `json:"feedback"`
}

type QuestionScores []QuestionScore

func (q QuestionScores) Value() (driver.Value, error) {
	if q == nil {
		return jsonValue([]QuestionScore{})
	}
	return jsonValue([]QuestionScore(q))
}

func (q *QuestionScores) Scan(src any) error {
	return jsonScan(src, (*[]QuestionScore)(q))
}

func (QuestionScores) GormDataType() string { return "jsonb" }
