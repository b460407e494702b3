// Package notify stores in-app notifications and pushes them to connected
// clients over Redis pub/sub.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/compass/internal/database/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("notification not found")

// Create writes n using db, which is normally the caller's open
// transaction so the notification commits or rolls back with the change
// that caused it.
func Create(db *gorm.DB, n *models.Notification) error {
	if n.UserID == uuid.Nil {
		return errors.New("notification recipient is required")
	}
	if err := db.Create(n).Error; err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type ListOptions struct {
	UnreadOnly bool
	Offset     int
	Limit      int
}

// List returns the user's notifications newest first, plus the total
// matching count.
func (s *Service) List(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]models.Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if opts.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting notifications: %w", err)
	}

	var out []models.Notification
	if err := query.
		Order("created_at DESC").
		Offset(opts.Offset).
		Limit(opts.Limit).
		Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("listing notifications: %w", err)
	}
	return out, total, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("marking notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead returns the number of notifications that changed.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// MarkDelivered stamps deliveredAt once; later deliveries of the same
// notification leave the first timestamp in place.
func (s *Service) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND delivered_at IS NULL", id).
		Update("delivered_at", at).Error
}
