package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/compass/internal/api/dto"
	"github.com/hugh/compass/internal/api/middleware"
	"github.com/hugh/compass/internal/database/models"
	"gorm.io/gorm"
)

const defaultLogDays = 30

type LogHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewLogHandler(db *gorm.DB, logger *slog.Logger) *LogHandler {
	return &LogHandler{db: db, logger: logger}
}

func listLogs(ctx context.Context, db *gorm.DB, userID uuid.UUID, days int) ([]models.DailyLog, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	logs := []models.DailyLog{}
	err := db.WithContext(ctx).
		Where("user_id = ? AND log_date >= ?", userID, since).
		Order("log_date DESC").
		Find(&logs).Error
	return logs, err
}

// List handles GET /api/v1/logs
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := listLogs(r.Context(), h.db, middleware.GetUserID(r.Context()), defaultLogDays)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// Create handles POST /api/v1/logs
func (h *LogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLogRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	logDate := time.Now().UTC()
	if req.LogDate != nil {
		logDate = req.LogDate.UTC()
	}

	entry := models.DailyLog{
		UserID:  middleware.GetUserID(r.Context()),
		LogDate: logDate,
		Mood:    req.Mood,
		Energy:  req.Energy,
		Note:    strings.TrimSpace(req.Note),
	}
	if err := h.db.WithContext(r.Context()).Create(&entry).Error; err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
