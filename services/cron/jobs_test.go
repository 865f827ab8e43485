package cron

import (
	"context"
	"testing"
	"time"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/services/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterJobs(t *testing.T) {
	m := NewCronManager(nil, Dependencies{})
	require.NoError(t, m.registerJobs())
	assert.Len(t, m.cron.Entries(), 3)
}

func TestOverdueNotification(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	due := now.Add(-72 * time.Hour)
	a := model.ProjectAssignment{
		ID:         11,
		ProjectID:  4,
		AssigneeID: 21,
		Status:     model.ProjectStatusStarted,
		DueDate:    &due,
		Project:    &model.Project{ProjectName: "API gateway"},
	}

	req := overdueNotification(a, now)
	assert.Equal(t, uint(21), req.UserID)
	assert.Equal(t, model.NotificationCategoryOverdue, req.Category)
	assert.Equal(t, uint(11), req.Metadata.AssignmentID)
	assert.Contains(t, req.Message, "API gateway was due 3 day(s) ago")

	a.Project = nil
	a.DueDate = nil
	assert.Contains(t, overdueNotification(a, now).Message, "project #4")
}

func TestSweepExtractionPreviews(t *testing.T) {
	m := NewCronManager(nil, Dependencies{})
	msg, err := m.SweepExtractionPreviews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "preview store not configured", msg)

	store := extraction.NewPreviewStore(nil, time.Millisecond)
	require.NoError(t, store.Put(context.Background(), &extraction.Preview{CourseID: 1}))
	time.Sleep(5 * time.Millisecond)

	m.deps.Previews = store
	msg, err = m.SweepExtractionPreviews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "removed 1 expired previews", msg)
}

func TestJobsWithoutDependencies(t *testing.T) {
	m := NewCronManager(nil, Dependencies{})

	msg, err := m.SendOverdueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "project services not configured", msg)

	msg, err = m.CleanupTokenBlacklist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "blacklist not configured", msg)
}
