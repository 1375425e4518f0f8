package models

import (
	"time"

	"gorm.io/gorm"
)

// Exchange kinds.
const (
	ExchangeQuestion = "question"
	ExchangeAnswer   = "answer"
)

// Exchange is a flat log record of one question or answer utterance in a live
// session. It is stored apart from the session so the transcript can be rebuilt
// even when the structured Q&A list lags behind asynchronous scoring.
type Exchange struct {
	ID             string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	SessionID      string         `gorm:"type:varchar(64);not null;index:idx_exchanges_session_time,priority:1" json:"session_id"`
	Type           string         `gorm:"type:varchar(16);not null;check:type IN ('question', 'answer')" json:"type"`
	Text           string         `gorm:"type:text;not null" json:"text"`
	Sequence       int            `gorm:"not null;index:idx_exchanges_session_time,priority:3" json:"sequence"`
	QuestionNumber int            `gorm:"not null" json:"question_number"`
	Timestamp      time.Time      `gorm:"not null;index:idx_exchanges_session_time,priority:2" json:"timestamp"`
	Score          *int           `json:"score,omitempty"` // 0-10, back-filled for answers
	Feedback       string         `gorm:"type:text" json:"feedback,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for the Exchange model
func (Exchange) TableName() string {
	return "interview_exchanges"
}
