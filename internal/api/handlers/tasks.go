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

type TaskHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewTaskHandler(db *gorm.DB, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{db: db, logger: logger}
}

func listTasks(ctx context.Context, db *gorm.DB, userID uuid.UUID, completed string) ([]models.Task, error) {
	query := db.WithContext(ctx).Where("user_id = ?", userID)
	if completed != "" {
		query = query.Where("completed = ?", completed == "true")
	}
	tasks := []models.Task{}
	err := query.Order("completed ASC").Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

// List handles GET /api/v1/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := listTasks(r.Context(), h.db, middleware.GetUserID(r.Context()), r.URL.Query().Get("completed"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create handles POST /api/v1/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.CreateTaskRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	task := models.Task{
		UserID:  userID,
		Title:   strings.TrimSpace(req.Title),
		DueDate: req.DueDate,
	}

	if req.GoalID != "" {
		goalID, _ := uuid.Parse(req.GoalID)
		// The goal must belong to the same user
		var count int64
		if err := h.db.WithContext(r.Context()).Model(&models.Goal{}).
			Where("id = ? AND user_id = ?", goalID, userID).
			Count(&count).Error; err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		if count == 0 {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Goal not found"})
			return
		}
		task.GoalID = &goalID
	}

	if err := h.db.WithContext(r.Context()).Create(&task).Error; err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Toggle handles POST /api/v1/tasks/{id}/toggle
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	task, ok := h.load(w, r)
	if !ok {
		return
	}

	updates := map[string]interface{}{"completed": !task.Completed}
	if task.Completed {
		updates["completed_at"] = nil
	} else {
		updates["completed_at"] = time.Now().UTC()
	}

	if err := h.db.WithContext(r.Context()).Model(task).Updates(updates).Error; err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := h.db.WithContext(r.Context()).First(task, "id = ?", task.ID).Error; err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/v1/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.db.WithContext(r.Context()).Delete(task).Error; err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) load(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return nil, false
	}

	var task models.Task
	err := h.db.WithContext(r.Context()).
		Where("id = ? AND user_id = ?", id, middleware.GetUserID(r.Context())).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Task not found"})
			return nil, false
		}
		writeServiceError(w, h.logger, err)
		return nil, false
	}
	return &task, true
}
