// Package progress computes the COM:PASS progress summary for a user.
package progress

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/compass/internal/database/models"
	"gorm.io/gorm"
)

// Window is how far back log and reflection activity is counted.
const Window = 7 * 24 * time.Hour

type Counts struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Percent   int   `json:"percent"`
}

type Summary struct {
	UserID            uuid.UUID `json:"userId"`
	Goals             Counts    `json:"goals"`
	Tasks             Counts    `json:"tasks"`
	RecentLogs        int64     `json:"recentLogs"`
	RecentReflections int64     `json:"recentReflections"`
	Overall           int       `json:"overall"`
	ComputedAt        time.Time `json:"computedAt"`
}

// Percent returns done as a rounded percentage of total, or 0 when total
// is zero.
func Percent(done, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) * 100 / float64(total)))
}

func newCounts(done, total int64) Counts {
	return Counts{Total: total, Completed: done, Percent: Percent(done, total)}
}

type Calculator struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCalculator(db *gorm.DB) *Calculator {
	return &Calculator{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Compute aggregates the user's goals, tasks and recent journal activity.
// Archived goals are excluded from the goal totals.
func (c *Calculator) Compute(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	db := c.db.WithContext(ctx)
	now := c.now()
	since := now.Add(-Window)

	var goalsTotal, goalsDone int64
	if err := db.Model(&models.Goal{}).
		Where("user_id = ? AND status <> ?", userID, models.GoalArchived).
		Count(&goalsTotal).Error; err != nil {
		return nil, fmt.Errorf("counting goals: %w", err)
	}
	if err := db.Model(&models.Goal{}).
		Where("user_id = ? AND status = ?", userID, models.GoalCompleted).
		Count(&goalsDone).Error; err != nil {
		return nil, fmt.Errorf("counting completed goals: %w", err)
	}

	var tasksTotal, tasksDone int64
	if err := db.Model(&models.Task{}).Where("user_id = ?", userID).Count(&tasksTotal).Error; err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	if err := db.Model(&models.Task{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&tasksDone).Error; err != nil {
		return nil, fmt.Errorf("counting completed tasks: %w", err)
	}

	var logs, reflections int64
	if err := db.Model(&models.DailyLog{}).
		Where("user_id = ? AND log_date >= ?", userID, since).
		Count(&logs).Error; err != nil {
		return nil, fmt.Errorf("counting logs: %w", err)
	}
	if err := db.Model(&models.Reflection{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&reflections).Error; err != nil {
		return nil, fmt.Errorf("counting reflections: %w", err)
	}

	goals := newCounts(goalsDone, goalsTotal)
	tasks := newCounts(tasksDone, tasksTotal)

	return &Summary{
		UserID:            userID,
		Goals:             goals,
		Tasks:             tasks,
		RecentLogs:        logs,
		RecentReflections: reflections,
		Overall:           int(math.Round(float64(goals.Percent+tasks.Percent) / 2)),
		ComputedAt:        now,
	}, nil
}
