package tasks

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/notify"
	"github.com/hugh/compass/pkg/queue"
)

const deliverMaxRetry = 5

// NotificationDispatcher hands committed notifications to the worker for
// push delivery. Without a queue it publishes directly, and with neither it
// does nothing; the stored rows remain readable through the API either way.
type NotificationDispatcher struct {
	client    *asynq.Client
	publisher *notify.Publisher
	logger    *slog.Logger
}

// NewNotificationDispatcher accepts a nil client and/or publisher.
func NewNotificationDispatcher(client *asynq.Client, publisher *notify.Publisher, logger *slog.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{client: client, publisher: publisher, logger: logger}
}

func (d *NotificationDispatcher) Dispatch(ctx context.Context, notifications []models.Notification) {
	for i := range notifications {
		n := &notifications[i]
		switch {
		case d.client != nil:
			d.enqueue(ctx, n)
		case d.publisher != nil:
			if _, err := d.publisher.Publish(ctx, n); err != nil {
				d.logger.Warn("failed to publish notification", "notification_id", n.ID, "error", err)
			}
		}
	}
}

func (d *NotificationDispatcher) enqueue(ctx context.Context, n *models.Notification) {
	task, err := NewNotificationDeliverTask(NotificationDeliverPayload{
		NotificationID: n.ID,
		UserID:         n.UserID,
	})
	if err != nil {
		d.logger.Error("failed to build delivery task", "notification_id", n.ID, "error", err)
		return
	}

	info, err := d.client.EnqueueContext(ctx, task,
		asynq.Queue(queue.QueueNotifications),
		asynq.MaxRetry(deliverMaxRetry),
	)
	if err != nil {
		d.logger.Error("failed to enqueue notification delivery", "notification_id", n.ID, "error", err)
		return
	}
	d.logger.Debug("notification delivery enqueued", "notification_id", n.ID, "task_id", info.ID)
}
