package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService handles employee notifications
type NotificationService struct {
	db            *gorm.DB
	notifications *database.Repository[model.UserNotification]
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		db:            db,
		notifications: database.NewRepository[model.UserNotification](db),
	}
}

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	UserID   uint
	Type     model.NotificationType
	Category model.NotificationCategory
	Title    string
	Message  string
	Metadata model.NotificationMetadata
}

// ListNotificationsOptions represents options for listing notifications
type ListNotificationsOptions struct {
	UserID     uint
	UnreadOnly bool
	Category   string
	Page       int
	Limit      int
}

// CreateNotification creates a new notification for an employee
func (s *NotificationService) CreateNotification(ctx context.Context, req CreateNotificationRequest) (*model.UserNotification, error) {
	if req.Type == "" {
		req.Type = model.NotificationTypeInfo
	}
	if req.Category == "" {
		req.Category = model.NotificationCategoryGeneral
	}

	notification := &model.UserNotification{
		UserID:   req.UserID,
		Type:     req.Type,
		Category: req.Category,
		Title:    req.Title,
		Message:  req.Message,
		Metadata: datatypes.NewJSONType(req.Metadata),
	}

	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	log.Debugf("[NOTIFY] created notification %d for profile %d: %s", notification.ID, req.UserID, req.Title)
	return notification, nil
}

// Notify creates a notification and only logs failures. Used by flows where
// the notification is a side effect of a write that already succeeded.
func (s *NotificationService) Notify(ctx context.Context, req CreateNotificationRequest) {
	if s == nil {
		return
	}
	if _, err := s.CreateNotification(ctx, req); err != nil {
		log.Warnf("[NOTIFY] %v", err)
	}
}

// GetNotificationsByUser retrieves one page of a profile's notifications, newest first
func (s *NotificationService) GetNotificationsByUser(ctx context.Context, opts ListNotificationsOptions) ([]model.UserNotification, int64, error) {
	q := database.Query{}.
		Where("user_id", opts.UserID).
		OrderBy("created_at DESC, id DESC").
		Paginate(opts.Page, opts.Limit)

	if opts.UnreadOnly {
		q = q.Where("read", false)
	}
	if opts.Category != "" {
		q = q.Where("category", opts.Category)
	}

	items, total, err := s.notifications.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return items, total, nil
}

// MarkAsRead marks one of the profile's notifications as read
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uint, userID uint) error {
	result := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)

	if result.Error != nil {
		return fmt.Errorf("failed to mark notification as read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification %d: %w", notificationID, ErrNotFound)
	}
	return nil
}

// MarkAllAsRead marks all notifications for a profile as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)

	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetUnreadCount returns the count of unread notifications for a profile
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.notifications.Count(ctx, database.Query{}.Where("user_id", userID).Where("read", false))
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// SentSince reports whether the profile already got a notification of
// category about assignmentID after since
func (s *NotificationService) SentSince(ctx context.Context, userID uint, category model.NotificationCategory, assignmentID uint, since time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ? AND category = ? AND created_at >= ?", userID, category, since).
		Where("(metadata->>'assignment_id')::bigint = ?", assignmentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check sent notifications: %w", err)
	}
	return count > 0, nil
}
