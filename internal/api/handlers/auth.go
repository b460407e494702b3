package handlers

import (
	"errors"
	"net/http"

	"github.com/hugh/compass/internal/api/dto"
	"github.com/hugh/compass/internal/api/middleware"
	"github.com/hugh/compass/internal/auth"
	"github.com/hugh/compass/internal/database/models"
)

type AuthHandler struct {
	authService  *auth.Service
	secureCookie bool
}

func NewAuthHandler(authService *auth.Service, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "User already exists"})
		case errors.Is(err, auth.ErrInvalidRole):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid role"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Registration failed"})
		}
		return
	}

	h.setTokenCookie(w, resp.Token)
	writeJSON(w, http.StatusCreated, dto.AuthResponse{Token: resp.Token, User: dto.NewUserDTO(resp.User)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid credentials"})
		case errors.Is(err, auth.ErrInactiveUser):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Account is inactive"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		}
		return
	}

	h.setTokenCookie(w, resp.Token)
	writeJSON(w, http.StatusOK, dto.AuthResponse{Token: resp.Token, User: dto.NewUserDTO(resp.User)})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserDTO(user))
}

// UpdateMe handles PUT /api/v1/me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), auth.ProfileInput{
		Name:      req.Name,
		Bio:       req.Bio,
		Expertise: req.Expertise,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update profile"})
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserDTO(user))
}

// RegisterMentor handles POST /api/v1/me/mentor
func (h *AuthHandler) RegisterMentor(w http.ResponseWriter, r *http.Request) {
	var req dto.MentorRegistrationRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	resp, err := h.authService.RegisterMentor(r.Context(), middleware.GetUserID(r.Context()), auth.MentorProfileInput{
		Bio:       req.Bio,
		Expertise: req.Expertise,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAlreadyMentor):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "You are already registered as a mentor"})
		case errors.Is(err, auth.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Mentor registration failed"})
		}
		return
	}

	h.setTokenCookie(w, resp.Token)
	writeJSON(w, http.StatusOK, dto.AuthResponse{Token: resp.Token, User: dto.NewUserDTO(resp.User)})
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
}
