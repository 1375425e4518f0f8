package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                 string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`
	Password           string         `gorm:"size:255" json:"-"` // Hashed password (excluded from JSON)
	FullName           string         `gorm:"size:255" json:"full_name,omitempty"`
	Role               string         `gorm:"default:'user'" json:"role"`
	InterviewReadiness float64        `gorm:"not null;default:0" json:"interview_readiness"` // 0-100, last completed text interview
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}
