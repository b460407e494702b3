package models

import (
	"time"

	"github.com/google/uuid"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalArchived  GoalStatus = "archived"
)

type Goal struct {
	Base
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Category    string     `json:"category,omitempty"` // work, health, relationships, ...
	TargetDate  *time.Time `json:"targetDate,omitempty"`
	Status      GoalStatus `gorm:"not null;index;default:'active'" json:"status"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Tasks []Task `gorm:"foreignKey:GoalID" json:"-"`
}

func (Goal) TableName() string {
	return "goals"
}

type Task struct {
	Base
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	GoalID      *uuid.UUID `gorm:"type:uuid;index" json:"goalId,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `gorm:"not null;default:false;index" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}
