package services

import (
	"context"
	"testing"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0, ProgressPercent(0, 0, model.EnrollmentStatusEnrolled))
	assert.Equal(t, 100, ProgressPercent(0, 0, model.EnrollmentStatusCompleted))
	assert.Equal(t, 33, ProgressPercent(1, 3, model.EnrollmentStatusEnrolled))
	assert.Equal(t, 67, ProgressPercent(2, 3, model.EnrollmentStatusEnrolled))
	assert.Equal(t, 100, ProgressPercent(5, 3, model.EnrollmentStatusEnrolled))
}

func seedProfile(t *testing.T, db *gorm.DB, email string, role access.Role, managerID *uint) model.Profile {
	t.Helper()
	var r model.Role
	require.NoError(t, db.Where("name = ?", role.String()).First(&r).Error)
	p := model.Profile{
		Email:        email,
		PasswordHash: "x",
		FirstName:    email,
		Status:       model.EmployeeStatusActive,
		RoleID:       r.ID,
		ManagerID:    managerID,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestCompleteModuleTracksRealProgress(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	trainee := seedProfile(t, db, "trainee@example.com", access.Trainee, nil)
	sess := &session.Session{ProfileID: trainee.ID, Role: access.Trainee}

	course := model.Course{CourseName: "Compliance"}
	require.NoError(t, db.Create(&course).Error)
	modules := NewModuleService(db)
	first, err := modules.Create(ctx, course.ID, ModuleInput{ModuleName: strPtr("Code of conduct")})
	require.NoError(t, err)
	second, err := modules.Create(ctx, course.ID, ModuleInput{ModuleName: strPtr("Data handling")})
	require.NoError(t, err)

	svc := NewEnrollmentService(db, NewNotificationService(db))

	_, err = svc.CompleteModule(ctx, sess, first.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Enroll(ctx, sess, course.ID, nil)
	require.NoError(t, err)

	res, err := svc.CompleteModule(ctx, sess, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Progress)
	assert.False(t, res.EnrollmentCompleted)

	// completing the same module twice is a no-op
	res, err = svc.CompleteModule(ctx, sess, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Progress)

	res, err = svc.CompleteModule(ctx, sess, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Progress)
	assert.True(t, res.EnrollmentCompleted)

	list, total, err := svc.List(ctx, sess, EnrollmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 100, list[0].Progress)
	assert.Equal(t, model.EnrollmentStatusCompleted, list[0].Status)
}

func TestTraineeCannotEnrollOthers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a := seedProfile(t, db, "a@example.com", access.Trainee, nil)
	b := seedProfile(t, db, "b@example.com", access.Trainee, nil)
	course := model.Course{CourseName: "Tools"}
	require.NoError(t, db.Create(&course).Error)

	svc := NewEnrollmentService(db, nil)
	_, err := svc.Enroll(ctx, &session.Session{ProfileID: a.ID, Role: access.Trainee}, course.ID, []uint{b.ID})
	assert.ErrorIs(t, err, ErrForbidden)
}
