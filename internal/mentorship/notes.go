package mentorship

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/validation"
)

const maxNoteLength = 5000

// AddNote stores a private mentor note on an active relationship.
func (s *Service) AddNote(ctx context.Context, actor Actor, relationshipID uuid.UUID, body string) (*models.MentorNote, error) {
	body = validation.SanitizeString(strings.TrimSpace(body))
	if body == "" {
		return nil, newError(ErrValidation, "note body is required")
	}
	if len([]rune(body)) > maxNoteLength {
		return nil, newError(ErrValidation, "note body must be at most %d characters", maxNoteLength)
	}

	rel, err := s.load(ctx, relationshipID)
	if err != nil {
		return nil, err
	}
	if rel.MentorID != actor.UserID {
		return nil, newError(ErrForbidden, "only the mentor can add notes to this relationship")
	}
	if rel.Status != models.RelationshipActive {
		return nil, newError(ErrInvalidState, "notes can only be added to an active relationship")
	}

	note := &models.MentorNote{
		RelationshipID: rel.ID,
		MentorID:       rel.MentorID,
		ClientID:       rel.ClientID,
		Body:           body,
	}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}
	return note, nil
}

// ListNotes returns the mentor's notes for a relationship, newest first.
// Notes stay readable after the relationship ends.
func (s *Service) ListNotes(ctx context.Context, actor Actor, relationshipID uuid.UUID) ([]models.MentorNote, error) {
	rel, err := s.load(ctx, relationshipID)
	if err != nil {
		return nil, err
	}
	if rel.MentorID != actor.UserID && !actor.IsAdmin() {
		return nil, newError(ErrForbidden, "only the mentor can view notes for this relationship")
	}

	var notes []models.MentorNote
	if err := s.db.WithContext(ctx).
		Where("relationship_id = ?", rel.ID).
		Order("created_at DESC").
		Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return notes, nil
}
