package models

import (
	"time"

	"gorm.io/gorm"
)

// ScheduleStatus moves SCHEDULED -> IN_PROGRESS -> COMPLETED, or to CANCELLED.
type ScheduleStatus string

const (
	ScheduleScheduled  ScheduleStatus = "SCHEDULED"
	ScheduleInProgress ScheduleStatus = "IN_PROGRESS"
	ScheduleCompleted  ScheduleStatus = "COMPLETED"
	ScheduleCancelled  ScheduleStatus = "CANCELLED"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleScheduled, ScheduleInProgress, ScheduleCompleted, ScheduleCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s ScheduleStatus) Terminal() bool {
	return s == ScheduleCompleted || s == ScheduleCancelled
}

// Round types and difficulty labels a schedule can carry.
const (
	RoundHR             = "HR"
	RoundCoding         = "CODING"
	RoundCommunication  = "COMMUNICATION"
	RoundProblemSolving = "PROBLEM_SOLVING"
	RoundAptitude       = "APTITUDE"

	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

// InterviewSchedule is a booked live interview and the session it started.
type InterviewSchedule struct {
	ID             string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserID         string         `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Company        string         `gorm:"size:255;not null" json:"company"`
	Role           string         `gorm:"size:255" json:"role"`
	Position       string         `gorm:"size:255;not null" json:"position"`
	RoundType      string         `gorm:"type:varchar(32)" json:"round_type"`
	Difficulty     string         `gorm:"type:varchar(16)" json:"difficulty"`
	ResumeText     string         `gorm:"type:text" json:"resume_text,omitempty"`
	ScheduledTime  time.Time      `gorm:"not null;index" json:"scheduled_time"`
	Status         ScheduleStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	SessionID      *string        `gorm:"type:varchar(64)" json:"session_id,omitempty"`
	QuestionsAsked int            `gorm:"not null;default:0" json:"questions_asked"`
	AverageScore   *float64       `json:"average_score,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for the InterviewSchedule model
func (InterviewSchedule) TableName() string {
	return "interview_schedules"
}
