package dto

import (
	"time"

	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/mentorship"
	"github.com/hugh/compass/internal/validation"
)

type InviteRequest struct {
	ClientEmail string `json:"clientEmail"`
	Message     string `json:"message,omitempty" validate:"max=1000"`
}

func (r InviteRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type InviteResponse struct {
	RelationshipID string    `json:"relationshipId"`
	ClientID       string    `json:"clientId"`
	ClientName     string    `json:"clientName"`
	ClientEmail    string    `json:"clientEmail"`
	Status         string    `json:"status"`
	InvitedAt      time.Time `json:"invitedAt"`
}

type AcceptResponse struct {
	RelationshipID string     `json:"relationshipId"`
	Status         string     `json:"status"`
	AcceptedAt     *time.Time `json:"acceptedAt"`
}

type TerminateRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

func (r TerminateRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type TerminateResponse struct {
	RelationshipID string     `json:"relationshipId"`
	Status         string     `json:"status"`
	TerminatedAt   *time.Time `json:"terminatedAt"`
}

type RelationshipResponse struct {
	ID                   string     `json:"id"`
	Status               string     `json:"status"`
	InvitedAt            time.Time  `json:"invitedAt"`
	InviteMessage        string     `json:"inviteMessage,omitempty"`
	AcceptedAt           *time.Time `json:"acceptedAt,omitempty"`
	TerminatedAt         *time.Time `json:"terminatedAt,omitempty"`
	TerminationReason    string     `json:"terminationReason,omitempty"`
	Client               *PartyDTO  `json:"client,omitempty"`
	Mentor               *PartyDTO  `json:"mentor,omitempty"`
	HasActivePermissions bool       `json:"hasActivePermissions"`
}

func NewRelationshipResponse(s mentorship.RelationshipSummary) RelationshipResponse {
	return RelationshipResponse{
		ID:                   s.ID.String(),
		Status:               string(s.Status),
		InvitedAt:            s.InvitedAt,
		InviteMessage:        s.InviteMessage,
		AcceptedAt:           s.AcceptedAt,
		TerminatedAt:         s.TerminatedAt,
		TerminationReason:    s.TerminationReason,
		Client:               NewPartyDTO(s.Client),
		Mentor:               NewPartyDTO(s.Mentor),
		HasActivePermissions: s.HasActivePermissions,
	}
}

type PermissionsRequest struct {
	AllowGoals       *bool `json:"allowGoals,omitempty"`
	AllowTasks       *bool `json:"allowTasks,omitempty"`
	AllowLogs        *bool `json:"allowLogs,omitempty"`
	AllowReflections *bool `json:"allowReflections,omitempty"`
	AllowAIReports   *bool `json:"allowAiReports,omitempty"`
}

func (r PermissionsRequest) Flags() mentorship.PermissionFlags {
	return mentorship.PermissionFlags{
		AllowGoals:       r.AllowGoals,
		AllowTasks:       r.AllowTasks,
		AllowLogs:        r.AllowLogs,
		AllowReflections: r.AllowReflections,
		AllowAIReports:   r.AllowAIReports,
	}
}

type PermissionsResponse struct {
	RelationshipID   string `json:"relationshipId"`
	AllowGoals       bool   `json:"allowGoals"`
	AllowTasks       bool   `json:"allowTasks"`
	AllowLogs        bool   `json:"allowLogs"`
	AllowReflections bool   `json:"allowReflections"`
	AllowAIReports   bool   `json:"allowAiReports"`
	IsActive         bool   `json:"isActive"`
}

func NewPermissionsResponse(p *models.ClientDataAccessPermission) PermissionsResponse {
	return PermissionsResponse{
		RelationshipID:   p.RelationshipID.String(),
		AllowGoals:       p.AllowGoals,
		AllowTasks:       p.AllowTasks,
		AllowLogs:        p.AllowLogs,
		AllowReflections: p.AllowReflections,
		AllowAIReports:   p.AllowAIReports,
		IsActive:         p.IsActive,
	}
}

type NoteRequest struct {
	Body string `json:"body"`
}
