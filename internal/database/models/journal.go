package models

import (
	"time"

	"github.com/google/uuid"
)

type DailyLog struct {
	Base
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	LogDate time.Time `gorm:"not null;index" json:"logDate"`
	Mood    int       `gorm:"not null" json:"mood"`   // 1-5
	Energy  int       `gorm:"not null" json:"energy"` // 1-5
	Note    string    `gorm:"type:text" json:"note,omitempty"`
}

func (DailyLog) TableName() string {
	return "daily_logs"
}

// Reflection is a private journal entry. Body holds age ciphertext
// (base64); it is never serialized directly.
type Reflection struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Prompt string    `json:"prompt,omitempty"`
	Body   string    `gorm:"type:text;not null" json:"-"`
}

func (Reflection) TableName() string {
	return "reflections"
}

// AIReport is a generated progress summary for one period.
type AIReport struct {
	Base
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	PeriodStart    time.Time `gorm:"not null" json:"periodStart"`
	PeriodEnd      time.Time `gorm:"not null" json:"periodEnd"`
	Summary        string    `gorm:"type:text;not null" json:"summary"`
	GoalPercent    int       `json:"goalPercent"`
	TaskPercent    int       `json:"taskPercent"`
	OverallPercent int       `json:"overallPercent"`
	ArchiveKey     string    `json:"archiveKey,omitempty"`
}

func (AIReport) TableName() string {
	return "ai_reports"
}
