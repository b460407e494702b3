package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/compass/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrInvalidRole        = errors.New("invalid role")
	ErrAlreadyMentor      = errors.New("user is already a mentor")
)

type Service struct {
	db  *gorm.DB
	jwt *JWTService
}

func NewService(db *gorm.DB, jwt *JWTService) *Service {
	return &Service{db: db, jwt: jwt}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     models.Role // client (default) or mentor; admin only via seed
}

type LoginInput struct {
	Email    string
	Password string
}

type ProfileInput struct {
	Name      *string
	Bio       *string
	Expertise *string
}

type MentorProfileInput struct {
	Bio       string
	Expertise string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	role := input.Role
	if role == "" {
		role = models.RoleClient
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	email := normalizeEmail(input.Email)

	// Check if user exists
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		IsMentor:     role == models.RoleMentor,
		IsActive:     true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return s.issue(&user)
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("email = ?", normalizeEmail(input.Email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(&user)
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail resolves a registered user by email (case-insensitive).
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.Expertise != nil {
		updates["expertise"] = *input.Expertise
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return s.GetUserByID(ctx, id)
}

// RegisterMentor upgrades a client to the mentor role and returns a fresh
// token carrying the new role.
func (s *Service) RegisterMentor(ctx context.Context, id uuid.UUID, input MentorProfileInput) (*AuthResponse, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsMentor {
		return nil, ErrAlreadyMentor
	}

	updates := map[string]interface{}{
		"is_mentor": true,
		"bio":       input.Bio,
		"expertise": input.Expertise,
	}
	// Admins keep their role; everyone else becomes a mentor.
	if user.Role != models.RoleAdmin {
		updates["role"] = models.RoleMentor
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("registering mentor: %w", err)
	}

	user, err = s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *Service) issue(user *models.User) (*AuthResponse, error) {
	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Name, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	return &AuthResponse{Token: token, User: user}, nil
}
