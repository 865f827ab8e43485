package notification

import (
	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles notification-related API endpoints
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotifications handles GET /api/v1/notifications
// Returns one page of the caller's notifications with the unread count
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	params := query.ParseListParams(c)
	notifications, total, err := h.notificationService.GetNotificationsByUser(c.UserContext(), services.ListNotificationsOptions{
		UserID:     sess.ProfileID,
		UnreadOnly: c.QueryBool("unread_only"),
		Category:   c.Query("category"),
		Page:       params.Page,
		Limit:      params.Limit,
	})
	if err != nil {
		return handlers.Fail(c, err, "Notifications")
	}

	unreadCount, err := h.notificationService.GetUnreadCount(c.UserContext(), sess.ProfileID)
	if err != nil {
		return handlers.Fail(c, err, "Notifications")
	}

	return response.Success(c, fiber.Map{
		"notifications": notifications,
		"unread_count":  unreadCount,
		"pagination":    response.CalculatePagination(params.Page, params.Limit, total),
	})
}

// GetUnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	count, err := h.notificationService.GetUnreadCount(c.UserContext(), sess.ProfileID)
	if err != nil {
		return handlers.Fail(c, err, "Notifications")
	}

	return response.Success(c, fiber.Map{
		"unread_count": count,
	})
}

// MarkAsRead handles PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Notification")
	}

	if err := h.notificationService.MarkAsRead(c.UserContext(), id, sess.ProfileID); err != nil {
		return handlers.Fail(c, err, "Notification")
	}

	return response.SuccessWithMessage(c, "Notification marked as read", nil)
}

// MarkAllAsRead handles PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	count, err := h.notificationService.MarkAllAsRead(c.UserContext(), sess.ProfileID)
	if err != nil {
		return handlers.Fail(c, err, "Notifications")
	}

	return response.SuccessWithMessage(c, "All notifications marked as read", fiber.Map{
		"count": count,
	})
}
