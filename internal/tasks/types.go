package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeNotificationDeliver = "notification:deliver"
	TypeWeeklyReports       = "report:weekly"
)

// NotificationDeliverPayload identifies a stored notification to push
type NotificationDeliverPayload struct {
	NotificationID uuid.UUID `json:"notification_id"`
	UserID         uuid.UUID `json:"user_id"`
}

func NewNotificationDeliverTask(payload NotificationDeliverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotificationDeliver, data), nil
}

// WeeklyReportsPayload is empty - the handler covers every active client
type WeeklyReportsPayload struct{}

func NewWeeklyReportsTask() *asynq.Task {
	return asynq.NewTask(TypeWeeklyReports, nil)
}
