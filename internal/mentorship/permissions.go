package mentorship

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/compass/internal/database/models"
	"gorm.io/gorm"
)

// PermissionFlags is a partial update of a client's visibility flags. Nil
// fields are left unchanged.
type PermissionFlags struct {
	AllowGoals       *bool
	AllowTasks       *bool
	AllowLogs        *bool
	AllowReflections *bool
	AllowAIReports   *bool
}

func (f PermissionFlags) updates() map[string]interface{} {
	out := make(map[string]interface{})
	set := func(col string, v *bool) {
		if v != nil {
			out[col] = *v
		}
	}
	set("allow_goals", f.AllowGoals)
	set("allow_tasks", f.AllowTasks)
	set("allow_logs", f.AllowLogs)
	set("allow_reflections", f.AllowReflections)
	set("allow_ai_reports", f.AllowAIReports)
	return out
}

// GetPermissions returns the permission row of a relationship the actor is
// party to.
func (s *Service) GetPermissions(ctx context.Context, actor Actor, relationshipID uuid.UUID) (*models.ClientDataAccessPermission, error) {
	rel, err := s.Get(ctx, actor, relationshipID)
	if err != nil {
		return nil, err
	}
	if rel.Permission == nil {
		return nil, newError(ErrNotFound, "permissions not found for this relationship")
	}
	return rel.Permission, nil
}

// UpdatePermissions changes which data categories the mentor may view. Only
// the client can change them, and only before the relationship ends. The
// active flag is owned by the lifecycle and is never touched here.
func (s *Service) UpdatePermissions(ctx context.Context, actor Actor, relationshipID uuid.UUID, flags PermissionFlags) (*models.ClientDataAccessPermission, error) {
	rel, err := s.load(ctx, relationshipID)
	if err != nil {
		return nil, err
	}
	if rel.ClientID != actor.UserID {
		return nil, newError(ErrForbidden, "only the client can change data access permissions")
	}
	if rel.Status == models.RelationshipTerminated {
		return nil, newError(ErrInvalidState, "permissions cannot be changed on a terminated relationship")
	}
	if rel.Permission == nil {
		return nil, newError(ErrNotFound, "permissions not found for this relationship")
	}

	updates := flags.updates()
	if len(updates) == 0 {
		return rel.Permission, nil
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.ClientDataAccessPermission{}).
		Where("relationship_id = ?", rel.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating permissions: %w", err)
	}

	var perm models.ClientDataAccessPermission
	if err := db.First(&perm, "relationship_id = ?", rel.ID).Error; err != nil {
		return nil, fmt.Errorf("reloading permissions: %w", err)
	}

	s.logger.Info("data access permissions updated", "relationship_id", rel.ID, "client_id", rel.ClientID)
	return &perm, nil
}

// AuthorizeView checks whether actor may read clientID's data in category.
// Clients always see their own data and admins see everything; a mentor
// needs an active relationship whose active permission row allows the
// category.
func (s *Service) AuthorizeView(ctx context.Context, actor Actor, clientID uuid.UUID, category models.DataCategory) error {
	if actor.UserID == clientID || actor.IsAdmin() {
		return nil
	}

	db := s.db.WithContext(ctx)

	var rel models.MentorClientRelationship
	err := db.Where("mentor_id = ? AND client_id = ? AND status = ?",
		actor.UserID, clientID, models.RelationshipActive).First(&rel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrForbidden, "you do not have an active mentoring relationship with this client")
		}
		return fmt.Errorf("checking relationship: %w", err)
	}

	var perm models.ClientDataAccessPermission
	err = db.Where("relationship_id = ? AND is_active = ?", rel.ID, true).First(&perm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrForbidden, "data access for this relationship is not active")
		}
		return fmt.Errorf("checking permissions: %w", err)
	}

	if !perm.Allows(category) {
		return newError(ErrForbidden, "this client has not shared their %s with you", category)
	}
	return nil
}
