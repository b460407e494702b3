package dto

import (
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/validation"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=client mentor"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := validation.Struct(r)
	if _, bad := errors["password"]; !bad && r.Password != "" {
		if ok, msg := validation.IsValidPassword(r.Password); !ok {
			errors["password"] = msg
		}
	}
	return errors
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Expertise *string `json:"expertise,omitempty" validate:"omitempty,max=200"`
}

func (r UpdateProfileRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type MentorRegistrationRequest struct {
	Bio       string `json:"bio" validate:"required,max=2000"`
	Expertise string `json:"expertise" validate:"max=200"`
}

func (r MentorRegistrationRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	IsMentor  bool   `json:"isMentor"`
	Bio       string `json:"bio,omitempty"`
	Expertise string `json:"expertise,omitempty"`
}

func NewUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		IsMentor:  u.IsMentor,
		Bio:       u.Bio,
		Expertise: u.Expertise,
	}
}

// PartyDTO is the identity of the other side of a relationship.
type PartyDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewPartyDTO(u *models.User) *PartyDTO {
	if u == nil {
		return nil
	}
	return &PartyDTO{ID: u.ID.String(), Name: u.Name, Email: u.Email}
}
