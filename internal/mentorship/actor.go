package mentorship

import (
	"github.com/google/uuid"
	"github.com/hugh/compass/internal/database/models"
)

// Actor is the authenticated caller of a lifecycle operation. It is passed
// explicitly to every operation instead of being read from request state.
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}
