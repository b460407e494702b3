package dto

import (
	"time"

	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/validation"
)

type CreateGoalRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description,omitempty" validate:"max=2000"`
	Category    string     `json:"category,omitempty" validate:"max=50"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
}

func (r CreateGoalRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type UpdateGoalRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,max=50"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=active completed archived"`
}

func (r UpdateGoalRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type CreateTaskRequest struct {
	Title   string     `json:"title" validate:"required,max=200"`
	GoalID  string     `json:"goalId,omitempty" validate:"omitempty,uuid"`
	DueDate *time.Time `json:"dueDate,omitempty"`
}

func (r CreateTaskRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type CreateLogRequest struct {
	LogDate *time.Time `json:"logDate,omitempty"`
	Mood    int        `json:"mood" validate:"required,min=1,max=5"`
	Energy  int        `json:"energy" validate:"required,min=1,max=5"`
	Note    string     `json:"note,omitempty" validate:"max=2000"`
}

func (r CreateLogRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type CreateReflectionRequest struct {
	Prompt string `json:"prompt,omitempty" validate:"max=500"`
	Body   string `json:"body" validate:"required,max=10000"`
}

func (r CreateReflectionRequest) Validate() map[string]string {
	return validation.Struct(r)
}

// ReflectionResponse carries the decrypted body.
type ReflectionResponse struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewReflectionResponse(r *models.Reflection, body string) ReflectionResponse {
	return ReflectionResponse{
		ID:        r.ID.String(),
		Prompt:    r.Prompt,
		Body:      body,
		CreatedAt: r.CreatedAt,
	}
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

func (r ChatRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
