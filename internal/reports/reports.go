// Package reports generates the periodic progress summaries shown as AI
// reports and optionally archives them.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/notify"
	"github.com/hugh/compass/internal/progress"
	"gorm.io/gorm"
)

// Notifier receives the report-ready notification after it is stored.
type Notifier interface {
	Dispatch(ctx context.Context, notifications []models.Notification)
}

type Generator struct {
	db         *gorm.DB
	calculator *progress.Calculator
	archiver   Archiver
	notifier   Notifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewGenerator builds a generator. archiver and notifier may be nil.
func NewGenerator(db *gorm.DB, archiver Archiver, notifier Notifier, logger *slog.Logger) *Generator {
	return &Generator{
		db:         db,
		calculator: progress.NewCalculator(db),
		archiver:   archiver,
		notifier:   notifier,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Generate builds a report for the last progress window, stores it with a
// report-ready notification and archives it when an archiver is set.
// Archive failures are logged; the stored report is still returned.
func (g *Generator) Generate(ctx context.Context, userID uuid.UUID) (*models.AIReport, error) {
	summary, err := g.calculator.Compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	end := g.now()
	report := &models.AIReport{
		UserID:         userID,
		PeriodStart:    end.Add(-progress.Window),
		PeriodEnd:      end,
		Summary:        Summarize(summary),
		GoalPercent:    summary.Goals.Percent,
		TaskPercent:    summary.Tasks.Percent,
		OverallPercent: summary.Overall,
	}

	n := models.Notification{
		UserID:  userID,
		Type:    models.NotificationReportReady,
		Title:   "Your progress report is ready",
		Message: fmt.Sprintf("Your COM:PASS progress for the last week is %d%%.", summary.Overall),
	}

	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		return notify.Create(tx, &n)
	})
	if err != nil {
		return nil, err
	}

	if g.archiver != nil {
		if err := g.archive(ctx, report); err != nil {
			g.logger.Error("failed to archive report", "report_id", report.ID, "error", err)
		}
	}

	if g.notifier != nil {
		g.notifier.Dispatch(ctx, []models.Notification{n})
	}

	g.logger.Info("report generated", "report_id", report.ID, "user_id", userID, "overall", report.OverallPercent)
	return report, nil
}

func (g *Generator) archive(ctx context.Context, report *models.AIReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	key := fmt.Sprintf("%s/%s/%s.json", report.UserID, report.PeriodEnd.Format("2006-01-02"), report.ID)
	if err := g.archiver.Archive(ctx, key, body); err != nil {
		return err
	}
	return g.db.WithContext(ctx).Model(report).Update("archive_key", key).Error
}

// GenerateForActiveClients creates a report for every active client. It
// returns the number generated; per-user failures are logged and skipped.
func (g *Generator) GenerateForActiveClients(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	if err := g.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleClient, true).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("listing clients: %w", err)
	}

	generated := 0
	var errs []error
	for _, id := range ids {
		if ctx.Err() != nil {
			return generated, ctx.Err()
		}
		if _, err := g.Generate(ctx, id); err != nil {
			g.logger.Error("failed to generate report", "user_id", id, "error", err)
			errs = append(errs, err)
			continue
		}
		generated++
	}

	if generated == 0 && len(errs) > 0 {
		return 0, errors.Join(errs...)
	}
	return generated, nil
}

// List returns the user's reports, newest first.
func (g *Generator) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.AIReport, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []models.AIReport
	if err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("period_end DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return out, nil
}

// Summarize renders the report text for a progress summary.
func Summarize(s *progress.Summary) string {
	var tone string
	switch {
	case s.Goals.Total == 0 && s.Tasks.Total == 0:
		return "You have not set any goals or tasks yet. Adding one goal is a great first step."
	case s.Overall >= 75:
		tone = "Excellent work this week."
	case s.Overall >= 40:
		tone = "Steady progress this week."
	default:
		tone = "This week was a slower one, and that is okay."
	}

	return fmt.Sprintf("%s You completed %d of %d goals (%d%%) and %d of %d tasks (%d%%). "+
		"You logged %d days and wrote %d reflections in the last 7 days. Overall progress: %d%%.",
		tone,
		s.Goals.Completed, s.Goals.Total, s.Goals.Percent,
		s.Tasks.Completed, s.Tasks.Total, s.Tasks.Percent,
		s.RecentLogs, s.RecentReflections, s.Overall,
	)
}
