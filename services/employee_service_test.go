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

func TestEmployeeDirectoryScopesByRole(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewEmployeeService(db)

	hr := seedProfile(t, db, "hr@example.com", access.HR, nil)
	lead := seedProfile(t, db, "lead@example.com", access.TeamLead, nil)
	report := seedProfile(t, db, "report@example.com", access.Trainee, &lead.ID)
	loner := seedProfile(t, db, "loner@example.com", access.Trainee, nil)

	tests := []struct {
		name string
		sess *session.Session
		want int64
	}{
		{"hr sees everyone", &session.Session{ProfileID: hr.ID, Role: access.HR}, 4},
		{"lead sees self and reports", &session.Session{ProfileID: lead.ID, Role: access.TeamLead}, 2},
		{"trainee sees self and manager", &session.Session{ProfileID: report.ID, Role: access.Trainee, ManagerID: &lead.ID}, 2},
		{"trainee without manager", &session.Session{ProfileID: loner.ID, Role: access.Trainee}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := svc.List(ctx, tt.sess, EmployeeFilter{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}

	_, err := svc.Get(ctx, &session.Session{ProfileID: loner.ID, Role: access.Trainee}, hr.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateManager(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewEmployeeService(db)

	lead := seedProfile(t, db, "lead@example.com", access.TeamLead, nil)
	trainee := seedProfile(t, db, "trainee@example.com", access.Trainee, nil)
	other := seedProfile(t, db, "other@example.com", access.Trainee, nil)

	assert.NoError(t, svc.ValidateManager(ctx, trainee.ID, lead.ID))
	assert.NoError(t, svc.ValidateManager(ctx, 0, lead.ID))

	for name, managerID := range map[string]uint{
		"self":        lead.ID,
		"trainee":     other.ID,
		"nonexistent": 9999,
	} {
		employeeID := trainee.ID
		if name == "self" {
			employeeID = lead.ID
		}
		err := svc.ValidateManager(ctx, employeeID, managerID)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, name)
		assert.Contains(t, verr.Fields, "manager_id", name)
	}
}

func TestPromoteReassignsReports(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewEmployeeService(db)

	hr := seedProfile(t, db, "hr@example.com", access.HR, nil)
	candidate := seedProfile(t, db, "candidate@example.com", access.Trainee, nil)
	first := seedProfile(t, db, "first@example.com", access.Trainee, nil)
	second := seedProfile(t, db, "second@example.com", access.Trainee, nil)

	hrSess := &session.Session{ProfileID: hr.ID, Role: access.HR}

	_, err := svc.Promote(ctx, &session.Session{ProfileID: first.ID, Role: access.Trainee}, candidate.ID, PromoteInput{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Promote(ctx, hrSess, candidate.ID, PromoteInput{ReportIDs: []uint{candidate.ID}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "report_ids")

	promoted, err := svc.Promote(ctx, hrSess, candidate.ID, PromoteInput{ReportIDs: []uint{first.ID, second.ID}})
	require.NoError(t, err)
	assert.Equal(t, access.TeamLeadName, promoted.Role.Name)

	team, err := svc.Team(ctx, candidate.ID)
	require.NoError(t, err)
	require.Len(t, team, 2)
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, []uint{team[0].ID, team[1].ID})
}

func TestDeleteSelfIsRejected(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmployeeService(db)

	hr := seedProfile(t, db, "hr@example.com", access.HR, nil)
	err := svc.Delete(context.Background(), &session.Session{ProfileID: hr.ID, Role: access.HR}, hr.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDemotingManagerWithReportsIsRejected(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewEmployeeService(db)

	lead := seedProfile(t, db, "lead@example.com", access.TeamLead, nil)
	report := seedProfile(t, db, "report@example.com", access.Trainee, &lead.ID)

	trainee := access.TraineeName
	_, err := svc.Update(ctx, lead.ID, UpdateEmployeeInput{Role: &trainee})
	assert.ErrorIs(t, err, ErrConflict)

	unchanged, err := svc.Get(ctx, &session.Session{ProfileID: lead.ID, Role: access.TeamLead}, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, access.TeamLeadName, unchanged.Role.Name)

	hr := access.HRName
	_, err = svc.Update(ctx, lead.ID, UpdateEmployeeInput{Role: &hr})
	require.NoError(t, err)

	_, err = svc.Update(ctx, report.ID, UpdateEmployeeInput{ClearManager: true})
	require.NoError(t, err)
	demoted, err := svc.Update(ctx, lead.ID, UpdateEmployeeInput{Role: &trainee})
	require.NoError(t, err)
	assert.Equal(t, access.TraineeName, demoted.Role.Name)
}

func TestRoleChangesRevokeTokens(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewEmployeeService(db)

	hr := seedProfile(t, db, "hr@example.com", access.HR, nil)
	trainee := seedProfile(t, db, "trainee@example.com", access.Trainee, nil)

	version := func() int {
		var p model.Profile
		require.NoError(t, db.First(&p, trainee.ID).Error)
		return p.TokenVersion
	}
	start := version()

	dept := "Finance"
	_, err := svc.Update(ctx, trainee.ID, UpdateEmployeeInput{Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, start, version())

	lead := access.TeamLeadName
	_, err = svc.Update(ctx, trainee.ID, UpdateEmployeeInput{Role: &lead})
	require.NoError(t, err)
	assert.Equal(t, start+1, version())

	back := access.TraineeName
	_, err = svc.Update(ctx, trainee.ID, UpdateEmployeeInput{Role: &back})
	require.NoError(t, err)
	_, err = svc.Promote(ctx, &session.Session{ProfileID: hr.ID, Role: access.HR}, trainee.ID, PromoteInput{})
	require.NoError(t, err)
	assert.Equal(t, start+3, version())
}
