package handlers

import (
	"context"
	"errors"
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

type GoalHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGoalHandler(db *gorm.DB, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{db: db, logger: logger}
}

func listGoals(ctx context.Context, db *gorm.DB, userID uuid.UUID, status string) ([]models.Goal, error) {
	query := db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	goals := []models.Goal{}
	err := query.Order("created_at DESC").Find(&goals).Error
	return goals, err
}

// List handles GET /api/v1/goals
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := listGoals(r.Context(), h.db, middleware.GetUserID(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// Create handles POST /api/v1/goals
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGoalRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	goal := models.Goal{
		UserID:      middleware.GetUserID(r.Context()),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		TargetDate:  req.TargetDate,
		Status:      models.GoalActive,
	}
	if err := h.db.WithContext(r.Context()).Create(&goal).Error; err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// Update handles PUT /api/v1/goals/{id}
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	goal, ok := h.load(w, r)
	if !ok {
		return
	}

	var req dto.UpdateGoalRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.TargetDate != nil {
		updates["target_date"] = *req.TargetDate
	}
	if req.Status != nil && models.GoalStatus(*req.Status) != goal.Status {
		updates["status"] = *req.Status
		if models.GoalStatus(*req.Status) == models.GoalCompleted {
			updates["completed_at"] = time.Now().UTC()
		} else {
			updates["completed_at"] = nil
		}
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(r.Context()).Model(goal).Updates(updates).Error; err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		if err := h.db.WithContext(r.Context()).First(goal, "id = ?", goal.ID).Error; err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, goal)
}

// Delete handles DELETE /api/v1/goals/{id}
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	goal, ok := h.load(w, r)
	if !ok {
		return
	}

	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		// Tasks outlive their goal
		if err := tx.Model(&models.Task{}).Where("goal_id = ?", goal.ID).Update("goal_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(goal).Error
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) load(w http.ResponseWriter, r *http.Request) (*models.Goal, bool) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return nil, false
	}

	var goal models.Goal
	err := h.db.WithContext(r.Context()).
		Where("id = ? AND user_id = ?", id, middleware.GetUserID(r.Context())).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Goal not found"})
			return nil, false
		}
		writeServiceError(w, h.logger, err)
		return nil, false
	}
	return &goal, true
}
