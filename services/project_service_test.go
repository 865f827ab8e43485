package services

import (
	"context"
	"testing"
	"time"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	a := &model.ProjectAssignment{Status: model.ProjectStatusNotStarted}
	updates, err := Transition(a, model.ProjectStatusStarted, now)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusStarted, updates["status"])
	assert.Equal(t, now, updates["started_at"])
	assert.Equal(t, model.ProjectStatusStarted, a.Status)

	updates, err = Transition(a, model.ProjectStatusStarted, now)
	require.NoError(t, err)
	assert.Nil(t, updates, "same-state write is a no-op")

	_, err = Transition(a, model.ProjectStatusCompleted, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Transition(&model.ProjectAssignment{Status: model.ProjectStatusNotStarted}, model.ProjectStatusSubmitted, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	submitted := &model.ProjectAssignment{Status: model.ProjectStatusSubmitted, StartedAt: &now}
	updates, err = Transition(submitted, model.ProjectStatusStarted, now.Add(time.Hour))
	require.NoError(t, err)
	assert.NotContains(t, updates, "started_at", "revision keeps the first start time")

	_, err = Transition(&model.ProjectAssignment{Status: model.ProjectStatusCompleted}, model.ProjectStatusStarted, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Transition(a, model.ProjectStatus("Paused"), now)
	assert.Error(t, err)
}

func TestPendingEvaluations(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	evaluated := &model.ProjectEvaluation{ID: 1}

	assignments := []model.ProjectAssignment{
		{Status: model.ProjectStatusSubmitted, Submissions: []model.ProjectSubmission{
			{ID: 1, CreatedAt: t0, Evaluation: evaluated},
		}},
		{Status: model.ProjectStatusSubmitted, Submissions: []model.ProjectSubmission{
			{ID: 2, CreatedAt: t0},
		}},
		{Status: model.ProjectStatusSubmitted, Submissions: []model.ProjectSubmission{
			{ID: 3, CreatedAt: t0, Evaluation: evaluated},
			{ID: 4, CreatedAt: t0.Add(time.Hour)},
		}},
		{Status: model.ProjectStatusStarted},
		{Status: model.ProjectStatusCompleted, Submissions: []model.ProjectSubmission{{ID: 5, CreatedAt: t0}}},
	}

	assert.Equal(t, 2, PendingEvaluations(assignments))
	assert.Equal(t, 0, PendingEvaluations(nil))
}

func TestValidateScores(t *testing.T) {
	assert.NoError(t, validateScores(EvaluateInput{TechnicalScore: 10, QualityScore: 0, DocumentationScore: 5.5, TimelinessScore: 7}))

	err := validateScores(EvaluateInput{TechnicalScore: 11, TimelinessScore: -1})
	require.Error(t, err)
	verr := err.(*ValidationError)
	assert.Contains(t, verr.Fields, "technical_score")
	assert.Contains(t, verr.Fields, "timeliness_score")
	assert.NotContains(t, verr.Fields, "quality_score")
}

func TestProjectLifecycleAndPendingCount(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	lead := seedProfile(t, db, "lead@example.com", access.TeamLead, nil)
	leadSess := &session.Session{ProfileID: lead.ID, Role: access.TeamLead}

	var trainees []model.Profile
	for _, email := range []string{"t1@example.com", "t2@example.com", "t3@example.com"} {
		trainees = append(trainees, seedProfile(t, db, email, access.Trainee, &lead.ID))
	}
	outsider := seedProfile(t, db, "outsider@example.com", access.Trainee, nil)

	svc := NewProjectService(db, NewNotificationService(db))
	project, err := svc.Create(ctx, leadSess, ProjectInput{ProjectName: strPtr("Build a CLI")})
	require.NoError(t, err)

	_, err = svc.Assign(ctx, leadSess, project.ID, []uint{outsider.ID}, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	ids := []uint{trainees[0].ID, trainees[1].ID, trainees[2].ID}
	assigned, err := svc.Assign(ctx, leadSess, project.ID, ids, nil)
	require.NoError(t, err)
	require.Len(t, assigned, 3)

	var submissionIDs []uint
	for i, a := range assigned {
		sess := &session.Session{ProfileID: a.AssigneeID, Role: access.Trainee}

		_, err := svc.Submit(ctx, sess, a.ID, SubmitInput{SubmissionText: "done"})
		assert.ErrorIs(t, err, ErrInvalidTransition, "cannot submit before starting")

		_, err = svc.StartAssignment(ctx, sess, a.ID)
		require.NoError(t, err)
		sub, err := svc.Submit(ctx, sess, a.ID, SubmitInput{SubmissionURL: "https://git.example.com/repo" + string(rune('a'+i))})
		require.NoError(t, err)
		submissionIDs = append(submissionIDs, sub.ID)
	}

	pending, err := svc.CountPendingEvaluations(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pending[project.ID])

	eval, err := svc.Evaluate(ctx, leadSess, submissionIDs[0], EvaluateInput{
		TechnicalScore: 8, QualityScore: 7, DocumentationScore: 6, TimelinessScore: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, 7.5, eval.OverallScore)

	pending, err = svc.CountPendingEvaluations(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending[project.ID])

	_, err = svc.Evaluate(ctx, leadSess, submissionIDs[0], EvaluateInput{})
	assert.Error(t, err)

	summary, err := svc.Get(ctx, leadSess, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.PendingEvaluations)

	trainee := &session.Session{ProfileID: trainees[0].ID, Role: access.Trainee}
	got, err := svc.GetAssignment(ctx, trainee, assigned[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusCompleted, got.Status)

	_, err = svc.GetAssignment(ctx, trainee, assigned[1].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
