package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/compass/internal/api/dto"
	"github.com/hugh/compass/internal/api/middleware"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/pkg/crypto"
	"gorm.io/gorm"
)

// ReflectionHandler stores journal entries sealed with the server's age key.
type ReflectionHandler struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
	logger    *slog.Logger
}

func NewReflectionHandler(db *gorm.DB, encryptor *crypto.Encryptor, logger *slog.Logger) *ReflectionHandler {
	return &ReflectionHandler{db: db, encryptor: encryptor, logger: logger}
}

func listReflections(ctx context.Context, db *gorm.DB, encryptor *crypto.Encryptor, userID uuid.UUID) ([]dto.ReflectionResponse, error) {
	var rows []models.Reflection
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]dto.ReflectionResponse, 0, len(rows))
	for i := range rows {
		body, err := encryptor.DecryptString(rows[i].Body)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.NewReflectionResponse(&rows[i], body))
	}
	return out, nil
}

// List handles GET /api/v1/reflections
func (h *ReflectionHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := listReflections(r.Context(), h.db, h.encryptor, middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /api/v1/reflections
func (h *ReflectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReflectionRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	sealed, err := h.encryptor.EncryptString(req.Body)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	reflection := models.Reflection{
		UserID: middleware.GetUserID(r.Context()),
		Prompt: strings.TrimSpace(req.Prompt),
		Body:   sealed,
	}
	if err := h.db.WithContext(r.Context()).Create(&reflection).Error; err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewReflectionResponse(&reflection, req.Body))
}
