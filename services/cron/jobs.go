package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/gofiber/fiber/v2/log"
)

// CleanupTokenBlacklist deletes revoked tokens past their expiry
func (m *CronManager) CleanupTokenBlacklist(ctx context.Context) (string, error) {
	if m.deps.Blacklist == nil {
		return "blacklist not configured", nil
	}
	removed, err := m.deps.Blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to clean token blacklist: %w", err)
	}
	return fmt.Sprintf("removed %d expired tokens", removed), nil
}

// SendOverdueReminders notifies each assignee of an overdue assignment at
// most once per day
func (m *CronManager) SendOverdueReminders(ctx context.Context) (string, error) {
	if m.deps.Projects == nil || m.deps.Notifications == nil {
		return "project services not configured", nil
	}

	now := m.now()
	overdue, err := m.deps.Projects.Overdue(ctx, now)
	if err != nil {
		return "", err
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sent, skipped := 0, 0
	for _, a := range overdue {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		already, err := m.deps.Notifications.SentSince(ctx, a.AssigneeID, model.NotificationCategoryOverdue, a.ID, startOfDay)
		if err != nil {
			log.Warnf("[CRON] skipping reminder for assignment %d: %v", a.ID, err)
			skipped++
			continue
		}
		if already {
			skipped++
			continue
		}

		if _, err := m.deps.Notifications.CreateNotification(ctx, overdueNotification(a, now)); err != nil {
			log.Warnf("[CRON] reminder for assignment %d failed: %v", a.ID, err)
			skipped++
			continue
		}
		sent++
	}

	return fmt.Sprintf("%d overdue assignments, %d reminders sent, %d skipped", len(overdue), sent, skipped), nil
}

func overdueNotification(a model.ProjectAssignment, now time.Time) services.CreateNotificationRequest {
	name := fmt.Sprintf("project #%d", a.ProjectID)
	if a.Project != nil && a.Project.ProjectName != "" {
		name = a.Project.ProjectName
	}
	msg := fmt.Sprintf("%s is past its due date and is still %s.", name, a.Status)
	if a.DueDate != nil {
		if days := int(now.Sub(*a.DueDate).Hours() / 24); days > 0 {
			msg = fmt.Sprintf("%s was due %d day(s) ago and is still %s.", name, days, a.Status)
		} else {
			msg = fmt.Sprintf("%s was due on %s and is still %s.", name, a.DueDate.Format("2 Jan 2006"), a.Status)
		}
	}

	return services.CreateNotificationRequest{
		UserID:   a.AssigneeID,
		Type:     model.NotificationTypeWarning,
		Category: model.NotificationCategoryOverdue,
		Title:    "Assignment overdue",
		Message:  msg,
		Metadata: model.NotificationMetadata{ProjectID: a.ProjectID, AssignmentID: a.ID},
	}
}

// SweepExtractionPreviews drops expired previews held in memory
func (m *CronManager) SweepExtractionPreviews(context.Context) (string, error) {
	if m.deps.Previews == nil {
		return "preview store not configured", nil
	}
	return fmt.Sprintf("removed %d expired previews", m.deps.Previews.Sweep()), nil
}
