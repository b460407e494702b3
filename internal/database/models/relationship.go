package models

import (
	"time"

	"github.com/google/uuid"
)

type RelationshipStatus string

const (
	RelationshipPending    RelationshipStatus = "pending"
	RelationshipActive     RelationshipStatus = "active"
	RelationshipTerminated RelationshipStatus = "terminated"
)

// MentorClientRelationship pairs a mentor with a client. There is at most
// one row per (mentor, client); terminated rows are kept for history.
type MentorClientRelationship struct {
	Base
	MentorID          uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_relationship_pair" json:"mentorId"`
	ClientID          uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_relationship_pair;index" json:"clientId"`
	Status            RelationshipStatus `gorm:"not null;index;default:'pending'" json:"status"`
	InvitedBy         uuid.UUID          `gorm:"type:uuid;not null" json:"invitedBy"`
	InvitedAt         time.Time          `gorm:"not null" json:"invitedAt"`
	InviteMessage     string             `gorm:"type:text" json:"inviteMessage,omitempty"`
	AcceptedAt        *time.Time         `json:"acceptedAt,omitempty"`
	TerminatedAt      *time.Time         `json:"terminatedAt,omitempty"`
	TerminationReason string             `json:"terminationReason,omitempty"`

	// Relationships
	Mentor     *User                       `gorm:"foreignKey:MentorID" json:"mentor,omitempty"`
	Client     *User                       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Permission *ClientDataAccessPermission `gorm:"foreignKey:RelationshipID" json:"permission,omitempty"`
}

func (MentorClientRelationship) TableName() string {
	return "mentor_client_relationships"
}

// Counterpart returns the other party of the relationship.
func (r *MentorClientRelationship) Counterpart(userID uuid.UUID) uuid.UUID {
	if userID == r.MentorID {
		return r.ClientID
	}
	return r.MentorID
}

// IsParty reports whether userID is the mentor or the client.
func (r *MentorClientRelationship) IsParty(userID uuid.UUID) bool {
	return userID == r.MentorID || userID == r.ClientID
}

// DataCategory names a slice of client data a mentor can be allowed to view.
type DataCategory string

const (
	CategoryGoals       DataCategory = "goals"
	CategoryTasks       DataCategory = "tasks"
	CategoryLogs        DataCategory = "logs"
	CategoryReflections DataCategory = "reflections"
	CategoryAIReports   DataCategory = "reports"
)

// ClientDataAccessPermission holds the client's visibility flags for one
// relationship. IsActive follows the relationship status: true only while
// the relationship is active.
type ClientDataAccessPermission struct {
	Base
	RelationshipID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"relationshipId"`
	ClientID         uuid.UUID `gorm:"type:uuid;not null;index" json:"clientId"`
	AllowGoals       bool      `gorm:"not null;default:true" json:"allowGoals"`
	AllowTasks       bool      `gorm:"not null;default:true" json:"allowTasks"`
	AllowLogs        bool      `gorm:"not null;default:true" json:"allowLogs"`
	AllowReflections bool      `gorm:"not null;default:true" json:"allowReflections"`
	AllowAIReports   bool      `gorm:"column:allow_ai_reports;not null;default:true" json:"allowAiReports"`
	IsActive         bool      `gorm:"not null;default:false;index" json:"isActive"`
}

func (ClientDataAccessPermission) TableName() string {
	return "client_data_access_permissions"
}

// Allows reports whether the flags permit viewing category.
func (p *ClientDataAccessPermission) Allows(category DataCategory) bool {
	switch category {
	case CategoryGoals:
		return p.AllowGoals
	case CategoryTasks:
		return p.AllowTasks
	case CategoryLogs:
		return p.AllowLogs
	case CategoryReflections:
		return p.AllowReflections
	case CategoryAIReports:
		return p.AllowAIReports
	}
	return false
}

// MentorNote is a private note a mentor keeps about a client.
type MentorNote struct {
	Base
	RelationshipID uuid.UUID `gorm:"type:uuid;not null;index" json:"relationshipId"`
	MentorID       uuid.UUID `gorm:"type:uuid;not null;index" json:"mentorId"`
	ClientID       uuid.UUID `gorm:"type:uuid;not null;index" json:"clientId"`
	Body           string    `gorm:"type:text;not null" json:"body"`
}

func (MentorNote) TableName() string {
	return "mentor_notes"
}
