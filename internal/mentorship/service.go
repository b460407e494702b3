// Package mentorship owns the mentor/client relationship lifecycle and the
// client data-access permissions that follow it.
//
// Status changes, permission activity and the notifications they cause are
// written in one transaction. Status updates are conditional on the status
// the caller observed, so concurrent accept/terminate calls on the same
// relationship produce exactly one winner.
package mentorship

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/notify"
	"github.com/hugh/compass/internal/validation"
	"gorm.io/gorm"
)

// Dispatcher pushes committed notifications to their recipients. It must not
// block on delivery; failures are its own to log.
type Dispatcher interface {
	Dispatch(ctx context.Context, notifications []models.Notification)
}

type Service struct {
	db         *gorm.DB
	dispatcher Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(db *gorm.DB, dispatcher Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		db:         db,
		dispatcher: dispatcher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type InviteInput struct {
	ClientEmail string
	Message     string
}

type InviteResult struct {
	Relationship *models.MentorClientRelationship
	Client       *models.User
}

// Invite creates a pending relationship between the acting mentor and the
// registered user owning clientEmail.
func (s *Service) Invite(ctx context.Context, actor Actor, input InviteInput) (*InviteResult, error) {
	if actor.Role != models.RoleMentor {
		return nil, newError(ErrForbidden, "only mentors can send invitations")
	}

	email := strings.ToLower(strings.TrimSpace(input.ClientEmail))
	if email == "" || !validation.IsValidEmail(email) {
		return nil, newError(ErrValidation, "a valid client email is required")
	}

	db := s.db.WithContext(ctx)

	var mentor models.User
	if err := db.First(&mentor, "id = ?", actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "mentor account not found")
		}
		return nil, fmt.Errorf("loading mentor: %w", err)
	}

	var client models.User
	if err := db.Where("email = ?", email).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "no registered user with email %s", email)
		}
		return nil, fmt.Errorf("loading client: %w", err)
	}
	if client.ID == mentor.ID {
		return nil, newError(ErrValidation, "you cannot invite yourself")
	}

	var existing models.MentorClientRelationship
	err := db.Where("mentor_id = ? AND client_id = ?", mentor.ID, client.ID).First(&existing).Error
	switch {
	case err == nil:
		return nil, conflictFor(existing.Status)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("checking existing relationship: %w", err)
	}

	rel := &models.MentorClientRelationship{
		MentorID:      mentor.ID,
		ClientID:      client.ID,
		Status:        models.RelationshipPending,
		InvitedBy:     mentor.ID,
		InvitedAt:     s.now(),
		InviteMessage: validation.TruncateString(strings.TrimSpace(input.Message), 1000),
	}

	var created []models.Notification
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rel).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return newError(ErrConflict, "a relationship with this client already exists")
			}
			return fmt.Errorf("creating relationship: %w", err)
		}

		perm := &models.ClientDataAccessPermission{
			RelationshipID:   rel.ID,
			ClientID:         client.ID,
			AllowGoals:       true,
			AllowTasks:       true,
			AllowLogs:        true,
			AllowReflections: true,
			AllowAIReports:   true,
			IsActive:         false,
		}
		if err := tx.Create(perm).Error; err != nil {
			return fmt.Errorf("creating permissions: %w", err)
		}

		n := inviteNotification(rel, &mentor)
		if err := notify.Create(tx, &n); err != nil {
			return err
		}
		created = append(created, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	transitionsTotal.WithLabelValues(transitionInvite).Inc()
	s.logger.Info("mentor invite created",
		"relationship_id", rel.ID,
		"mentor_id", mentor.ID,
		"client_id", client.ID,
	)
	s.dispatch(ctx, created)

	rel.Mentor = &mentor
	rel.Client = &client
	return &InviteResult{Relationship: rel, Client: &client}, nil
}

func conflictFor(status models.RelationshipStatus) error {
	switch status {
	case models.RelationshipPending:
		return newError(ErrConflict, "a pending invite already exists for this client")
	case models.RelationshipActive:
		return newError(ErrConflict, "an active relationship already exists with this client")
	default:
		return newError(ErrConflict, "a previous relationship with this client was terminated; it must be deleted before a new invite can be sent")
	}
}

// Accept moves a pending relationship to active and activates its
// permissions. Only the invited client may accept.
func (s *Service) Accept(ctx context.Context, actor Actor, relationshipID uuid.UUID) (*models.MentorClientRelationship, error) {
	rel, err := s.load(ctx, relationshipID)
	if err != nil {
		return nil, err
	}

	if rel.ClientID != actor.UserID {
		return nil, newError(ErrForbidden, "only the invited client can accept this invitation")
	}

	switch rel.Status {
	case models.RelationshipActive:
		return nil, newError(ErrInvalidState, "this relationship is already active")
	case models.RelationshipTerminated:
		return nil, newError(ErrInvalidState, "this relationship has been terminated")
	}

	now := s.now()
	var created []models.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transition(tx, rel.ID, models.RelationshipPending, models.RelationshipActive, map[string]interface{}{
			"accepted_at": now,
		}); err != nil {
			return err
		}
		if err := setPermissionsActive(tx, rel.ID, true); err != nil {
			return err
		}

		for _, n := range acceptNotifications(rel) {
			if err := notify.Create(tx, &n); err != nil {
				return err
			}
			created = append(created, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rel.Status = models.RelationshipActive
	rel.AcceptedAt = &now
	if rel.Permission != nil {
		rel.Permission.IsActive = true
	}

	transitionsTotal.WithLabelValues(transitionAccept).Inc()
	s.logger.Info("mentor invite accepted", "relationship_id", rel.ID, "client_id", rel.ClientID)
	s.dispatch(ctx, created)

	return rel, nil
}

// Terminate ends a relationship. On a pending relationship this cancels (or
// declines) the invitation; on an active one it also revokes data access.
func (s *Service) Terminate(ctx context.Context, actor Actor, relationshipID uuid.UUID, reason string) (*models.MentorClientRelationship, error) {
	rel, err := s.load(ctx, relationshipID)
	if err != nil {
		return nil, err
	}

	if !rel.IsParty(actor.UserID) {
		return nil, newError(ErrForbidden, "only the mentor or client of this relationship can end it")
	}
	if rel.Status == models.RelationshipTerminated {
		return nil, newError(ErrInvalidState, "this relationship is already terminated")
	}

	from := rel.Status
	explicit := validation.TruncateString(strings.TrimSpace(reason), 500)
	stored := explicit
	if stored == "" {
		stored = defaultTerminateReason
		if from == models.RelationshipPending {
			stored = defaultCancelReason
		}
	}

	now := s.now()
	var created []models.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transition(tx, rel.ID, from, models.RelationshipTerminated, map[string]interface{}{
			"terminated_at":      now,
			"termination_reason": stored,
		}); err != nil {
			return err
		}
		// Pending permissions are already inactive; writing false again keeps
		// the invariant even if a row drifted.
		if err := setPermissionsActive(tx, rel.ID, false); err != nil {
			return err
		}

		n := terminateNotification(rel, from, actor.UserID, explicit)
		if err := notify.Create(tx, &n); err != nil {
			return err
		}
		created = append(created, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	rel.Status = models.RelationshipTerminated
	rel.TerminatedAt = &now
	rel.TerminationReason = stored
	if rel.Permission != nil {
		rel.Permission.IsActive = false
	}

	label := transitionTerminate
	if from == models.RelationshipPending {
		label = transitionCancel
	}
	transitionsTotal.WithLabelValues(label).Inc()
	s.logger.Info("mentor relationship terminated",
		"relationship_id", rel.ID,
		"from", from,
		"by", actor.UserID,
	)
	s.dispatch(ctx, created)

	return rel, nil
}

// RelationshipSummary is a relationship plus whether the mentor currently
// holds an active permission row for it.
type RelationshipSummary struct {
	models.MentorClientRelationship
	HasActivePermissions bool
}

// ListRelationships returns every relationship owned by the mentor, newest
// first, with the client preloaded.
func (s *Service) ListRelationships(ctx context.Context, mentorID uuid.UUID) ([]RelationshipSummary, error) {
	return s.list(ctx, "mentor_id = ?", mentorID, "Client")
}

// ListClientRelationships is the client's view of the same data, with the
// mentor preloaded.
func (s *Service) ListClientRelationships(ctx context.Context, clientID uuid.UUID) ([]RelationshipSummary, error) {
	return s.list(ctx, "client_id = ?", clientID, "Mentor")
}

func (s *Service) list(ctx context.Context, where string, id uuid.UUID, party string) ([]RelationshipSummary, error) {
	var rels []models.MentorClientRelationship
	if err := s.db.WithContext(ctx).
		Preload(party).
		Preload("Permission").
		Where(where, id).
		Order("invited_at DESC").
		Order("created_at DESC").
		Find(&rels).Error; err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}

	out := make([]RelationshipSummary, len(rels))
	for i, rel := range rels {
		out[i] = RelationshipSummary{
			MentorClientRelationship: rel,
			HasActivePermissions:     rel.Permission != nil && rel.Permission.IsActive,
		}
	}
	return out, nil
}

// Get returns a relationship visible to actor (either party or an admin).
func (s *Service) Get(ctx context.Context, actor Actor, relationshipID uuid.UUID) (*models.MentorClientRelationship, error) {
	rel, err := s.load(ctx, relationshipID)
	if err != nil {
		return nil, err
	}
	if !rel.IsParty(actor.UserID) && !actor.IsAdmin() {
		return nil, newError(ErrForbidden, "you are not a party to this relationship")
	}
	return rel, nil
}

// Purge hard-deletes a terminated relationship with its permissions and
// notes. This is the explicit deletion that allows the same pair to be
// invited again.
func (s *Service) Purge(ctx context.Context, actor Actor, relationshipID uuid.UUID) error {
	if !actor.IsAdmin() {
		return newError(ErrForbidden, "only administrators can delete relationships")
	}

	rel, err := s.load(ctx, relationshipID)
	if err != nil {
		return err
	}
	if rel.Status != models.RelationshipTerminated {
		return newError(ErrInvalidState, "only terminated relationships can be deleted")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("relationship_id = ?", rel.ID).Delete(&models.ClientDataAccessPermission{}).Error; err != nil {
			return fmt.Errorf("deleting permissions: %w", err)
		}
		if err := tx.Unscoped().Where("relationship_id = ?", rel.ID).Delete(&models.MentorNote{}).Error; err != nil {
			return fmt.Errorf("deleting notes: %w", err)
		}
		res := tx.Unscoped().
			Where("id = ? AND status = ?", rel.ID, models.RelationshipTerminated).
			Delete(&models.MentorClientRelationship{})
		if res.Error != nil {
			return fmt.Errorf("deleting relationship: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return newError(ErrInvalidState, "this relationship was modified concurrently; reload and try again")
		}
		return nil
	})
	if err != nil {
		return err
	}

	transitionsTotal.WithLabelValues(transitionPurge).Inc()
	s.logger.Info("mentor relationship purged", "relationship_id", rel.ID, "by", actor.UserID)
	return nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.MentorClientRelationship, error) {
	var rel models.MentorClientRelationship
	if err := s.db.WithContext(ctx).
		Preload("Mentor").
		Preload("Client").
		Preload("Permission").
		First(&rel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "relationship not found")
		}
		return nil, fmt.Errorf("loading relationship: %w", err)
	}
	return &rel, nil
}

// transition moves a relationship from one status to another. The update is
// conditional on the current status, so a concurrent transition that got
// there first leaves zero affected rows and the caller's transaction rolls
// back.
func transition(tx *gorm.DB, id uuid.UUID, from, to models.RelationshipStatus, updates map[string]interface{}) error {
	updates["status"] = to
	res := tx.Model(&models.MentorClientRelationship{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("updating relationship status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return newError(ErrInvalidState, "this relationship was modified concurrently; reload and try again")
	}
	return nil
}

func setPermissionsActive(tx *gorm.DB, relationshipID uuid.UUID, active bool) error {
	if err := tx.Model(&models.ClientDataAccessPermission{}).
		Where("relationship_id = ?", relationshipID).
		Update("is_active", active).Error; err != nil {
		return fmt.Errorf("updating permissions: %w", err)
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, notifications []models.Notification) {
	if s.dispatcher == nil || len(notifications) == 0 {
		return
	}
	s.dispatcher.Dispatch(ctx, notifications)
}
