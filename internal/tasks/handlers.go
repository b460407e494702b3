package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/compass/internal/notify"
	"github.com/hugh/compass/internal/reports"
	"gorm.io/gorm"
)

type Handler struct {
	db            *gorm.DB
	logger        *slog.Logger
	notifications *notify.Service
	publisher     *notify.Publisher
	reports       *reports.Generator
}

func NewHandler(db *gorm.DB, logger *slog.Logger, publisher *notify.Publisher, generator *reports.Generator) *Handler {
	return &Handler{
		db:            db,
		logger:        logger,
		notifications: notify.NewService(db),
		publisher:     publisher,
		reports:       generator,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeNotificationDeliver, h.HandleNotificationDeliver)
	mux.HandleFunc(TypeWeeklyReports, h.HandleWeeklyReports)
}

func (h *Handler) HandleNotificationDeliver(ctx context.Context, t *asynq.Task) error {
	var payload NotificationDeliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	n, err := h.notifications.Get(ctx, payload.NotificationID)
	if err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			// Soft-deleted or never committed
			h.logger.Warn("notification vanished before delivery", "notification_id", payload.NotificationID)
			return nil
		}
		return err
	}
	if n.DeliveredAt != nil {
		return nil
	}

	receivers, err := h.publisher.Publish(ctx, n)
	if err != nil {
		return err
	}

	if err := h.notifications.MarkDelivered(ctx, n.ID, time.Now().UTC()); err != nil {
		return err
	}

	h.logger.Debug("notification delivered",
		"notification_id", n.ID,
		"user_id", n.UserID,
		"receivers", receivers,
	)
	return nil
}

func (h *Handler) HandleWeeklyReports(ctx context.Context, t *asynq.Task) error {
	h.logger.Info("starting weekly report run")
	start := time.Now()

	count, err := h.reports.GenerateForActiveClients(ctx)
	if err != nil {
		return fmt.Errorf("weekly reports: %w", err)
	}

	h.logger.Info("completed weekly report run",
		"reports", count,
		"duration", time.Since(start),
	)
	return nil
}
