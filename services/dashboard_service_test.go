package services

import (
	"context"
	"testing"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus([]model.ProjectAssignment{
		{Status: model.ProjectStatusStarted},
		{Status: model.ProjectStatusStarted},
		{Status: model.ProjectStatusCompleted},
	})
	assert.Equal(t, 0, counts[model.ProjectStatusNotStarted])
	assert.Equal(t, 2, counts[model.ProjectStatusStarted])
	assert.Equal(t, 1, counts[model.ProjectStatusCompleted])
	assert.Len(t, counts, 4)
}

func TestAverageProgress(t *testing.T) {
	assert.Equal(t, 0, AverageProgress(nil))
	assert.Equal(t, 50, AverageProgress([]EnrollmentProgress{{Progress: 0}, {Progress: 100}}))
	assert.Equal(t, 34, AverageProgress([]EnrollmentProgress{{Progress: 33}, {Progress: 34}, {Progress: 34}}))
}

func TestTeamDashboard(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	lead := seedProfile(t, db, "lead@example.com", access.TeamLead, nil)
	a := seedProfile(t, db, "a@example.com", access.Trainee, &lead.ID)
	b := seedProfile(t, db, "b@example.com", access.Trainee, &lead.ID)

	course := model.Course{CourseName: "Git basics"}
	require.NoError(t, db.Create(&course).Error)

	notifications := NewNotificationService(db)
	enrollments := NewEnrollmentService(db, notifications)
	projects := NewProjectService(db, notifications)
	svc := NewDashboardService(db, NewEmployeeService(db), enrollments, projects)

	leadSess := &session.Session{ProfileID: lead.ID, Role: access.TeamLead}
	_, err := enrollments.Enroll(ctx, leadSess, course.ID, []uint{a.ID, b.ID})
	require.NoError(t, err)

	d, err := svc.Get(ctx, leadSess)
	require.NoError(t, err)
	require.NotNil(t, d.Team)
	assert.Nil(t, d.Org)
	require.Len(t, d.Team.Members, 2)
	for _, m := range d.Team.Members {
		assert.Len(t, m.Enrollments, 1)
		assert.Equal(t, 0, m.Progress)
	}

	trainee, err := svc.Get(ctx, &session.Session{ProfileID: a.ID, Role: access.Trainee})
	require.NoError(t, err)
	assert.Nil(t, trainee.Team)
	require.NotNil(t, trainee.Mine)
	assert.Len(t, trainee.Mine.Enrollments, 1)
	assert.Equal(t, int64(1), trainee.Unread)
}
