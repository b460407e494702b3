package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationMentorInvite        NotificationType = "mentor_invite"
	NotificationInviteAccepted      NotificationType = "mentor_invite_accepted"
	NotificationRelationshipStarted NotificationType = "mentor_relationship_started"
	NotificationInviteCancelled     NotificationType = "mentor_invite_cancelled"
	NotificationInviteDeclined      NotificationType = "mentor_invite_declined"
	NotificationRelationshipEnded   NotificationType = "mentor_relationship_ended"
	NotificationReportReady         NotificationType = "ai_report_ready"
)

type Notification struct {
	Base
	UserID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"userId"`
	Type           NotificationType `gorm:"not null" json:"type"`
	Title          string           `gorm:"not null" json:"title"`
	Message        string           `gorm:"type:text" json:"message"`
	Read           bool             `gorm:"column:is_read;not null;default:false;index" json:"read"`
	RelationshipID *uuid.UUID       `gorm:"type:uuid;index" json:"relationshipId,omitempty"`
	DeliveredAt    *time.Time       `json:"deliveredAt,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
