package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/compass/internal/database/models"
	"github.com/redis/go-redis/v9"
)

// Channel returns the pub/sub channel carrying a user's notifications.
func Channel(userID uuid.UUID) string {
	return "notifications:" + userID.String()
}

// Publisher pushes notifications to the per-user Redis channel that the
// SSE stream endpoint subscribes to.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish returns the number of subscribers that received the message.
func (p *Publisher) Publish(ctx context.Context, n *models.Notification) (int64, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return 0, fmt.Errorf("marshal notification: %w", err)
	}
	receivers, err := p.rdb.Publish(ctx, Channel(n.UserID), data).Result()
	if err != nil {
		return 0, fmt.Errorf("publish notification: %w", err)
	}
	return receivers, nil
}

// Subscribe opens a subscription on the user's channel. The caller must
// Close it.
func (p *Publisher) Subscribe(ctx context.Context, userID uuid.UUID) *redis.PubSub {
	return p.rdb.Subscribe(ctx, Channel(userID))
}
