package mentorship

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/compass/internal/database/models"
)

const (
	defaultCancelReason    = "Invitation cancelled"
	defaultTerminateReason = "Relationship ended"
)

func displayName(u *models.User) string {
	if u == nil {
		return "Someone"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func withReason(msg, reason string) string {
	if reason == "" {
		return msg
	}
	return fmt.Sprintf("%s Reason: %s", msg, reason)
}

func inviteNotification(rel *models.MentorClientRelationship, mentor *models.User) models.Notification {
	msg := fmt.Sprintf("%s has invited you to a mentoring relationship.", displayName(mentor))
	if rel.InviteMessage != "" {
		msg += fmt.Sprintf(" Message: %q", rel.InviteMessage)
	}
	return models.Notification{
		UserID:         rel.ClientID,
		Type:           models.NotificationMentorInvite,
		Title:          "New mentoring invitation",
		Message:        msg,
		RelationshipID: &rel.ID,
	}
}

func acceptNotifications(rel *models.MentorClientRelationship) []models.Notification {
	return []models.Notification{
		{
			UserID:         rel.MentorID,
			Type:           models.NotificationInviteAccepted,
			Title:          "Invitation accepted",
			Message:        fmt.Sprintf("%s accepted your mentoring invitation. You can now view the data they share with you.", displayName(rel.Client)),
			RelationshipID: &rel.ID,
		},
		{
			UserID:         rel.ClientID,
			Type:           models.NotificationRelationshipStarted,
			Title:          "Mentoring relationship started",
			Message:        fmt.Sprintf("You are now connected with %s as your mentor.", displayName(rel.Mentor)),
			RelationshipID: &rel.ID,
		},
	}
}

// terminateNotification builds the single notice sent to the party that did
// not end the relationship. explicitReason is empty when the caller gave none.
func terminateNotification(rel *models.MentorClientRelationship, from models.RelationshipStatus, actorID uuid.UUID, explicitReason string) models.Notification {
	n := models.Notification{UserID: rel.Counterpart(actorID), RelationshipID: &rel.ID}
	byMentor := actorID == rel.MentorID

	switch {
	case from == models.RelationshipPending && byMentor:
		n.Type = models.NotificationInviteCancelled
		n.Title = "Mentoring invitation cancelled"
		n.Message = fmt.Sprintf("%s cancelled their mentoring invitation.", displayName(rel.Mentor))
	case from == models.RelationshipPending:
		n.Type = models.NotificationInviteDeclined
		n.Title = "Mentoring invitation declined"
		n.Message = fmt.Sprintf("%s declined your mentoring invitation.", displayName(rel.Client))
	case byMentor:
		n.Type = models.NotificationRelationshipEnded
		n.Title = "Mentoring relationship ended"
		n.Message = fmt.Sprintf("%s ended your mentoring relationship. They no longer have access to your data.", displayName(rel.Mentor))
	default:
		n.Type = models.NotificationRelationshipEnded
		n.Title = "Mentoring relationship ended"
		n.Message = fmt.Sprintf("%s ended your mentoring relationship. You no longer have access to their data.", displayName(rel.Client))
	}

	n.Message = withReason(n.Message, explicitReason)
	return n
}
