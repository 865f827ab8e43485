package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mcq(options ...OptionInput) QuestionInput {
	return QuestionInput{
		QuestionText: "Which port does HTTPS use?",
		QuestionType: string(model.QuestionTypeMultipleChoice),
		Points:       1,
		Options:      options,
	}
}

func TestValidateQuestion(t *testing.T) {
	cases := []struct {
		name    string
		in      QuestionInput
		wantErr string
	}{
		{"valid", mcq(OptionInput{"80", false}, OptionInput{"443", true}), ""},
		{"one option", mcq(OptionInput{"443", true}), "options"},
		{"blank options do not count", mcq(OptionInput{"443", true}, OptionInput{"  ", false}), "options"},
		{"no correct", mcq(OptionInput{"80", false}, OptionInput{"443", false}), "options"},
		{"two correct", mcq(OptionInput{"80", true}, OptionInput{"443", true}), "options"},
		{"blank correct option ignored", mcq(OptionInput{"80", false}, OptionInput{"443", true}, OptionInput{"", true}), ""},
		{"missing text", QuestionInput{QuestionType: "essay"}, "question_text"},
		{"bad type", QuestionInput{QuestionText: "x", QuestionType: "poll"}, "question_type"},
		{"essay needs no options", QuestionInput{QuestionText: "Describe your first week", QuestionType: "essay"}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateQuestion(tc.in)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Contains(t, verr.Fields, tc.wantErr)
		})
	}
}

func TestTrueFalseFollowsSameRule(t *testing.T) {
	in := QuestionInput{
		QuestionText: "Badges must be worn on site",
		QuestionType: string(model.QuestionTypeTrueFalse),
		Options:      []OptionInput{{"True", true}, {"False", true}},
	}
	assert.Error(t, ValidateQuestion(in))

	in.Options[1].IsCorrect = false
	assert.NoError(t, ValidateQuestion(in))
}

func TestQuestionOptionsSkipsBlanksAndNumbers(t *testing.T) {
	opts := questionOptions(7, mcq(OptionInput{" a ", false}, OptionInput{"", true}, OptionInput{"b", true}))
	require.Len(t, opts, 2)
	assert.Equal(t, "a", opts[0].OptionText)
	assert.Equal(t, 1, opts[0].OptionOrder)
	assert.Equal(t, 2, opts[1].OptionOrder)
	assert.Equal(t, uint(7), opts[1].QuestionID)

	assert.Nil(t, questionOptions(7, QuestionInput{QuestionType: "essay", Options: []OptionInput{{"x", true}}}))
}

func TestSaveQuestionReplacesOptions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	course := model.Course{CourseName: "Security"}
	require.NoError(t, db.Create(&course).Error)

	svc := NewAssessmentService(db)
	tpl, err := svc.CreateTemplate(ctx, course.ID, TemplateInput{Title: strPtr("Basics quiz")})
	require.NoError(t, err)

	q, err := svc.CreateQuestion(ctx, tpl.ID, mcq(OptionInput{"80", false}, OptionInput{"443", true}, OptionInput{"22", false}))
	require.NoError(t, err)
	assert.Equal(t, 1, q.QuestionOrder)

	// invalid update leaves stored options untouched
	_, err = svc.UpdateQuestion(ctx, q.ID, mcq(OptionInput{"443", true}))
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&model.QuestionOption{}).Where("question_id = ?", q.ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	_, err = svc.UpdateQuestion(ctx, q.ID, mcq(OptionInput{"443", true}, OptionInput{"8443", false}))
	require.NoError(t, err)

	questions, err := svc.ListQuestions(ctx, &session.Session{ProfileID: 1, Role: access.HR}, tpl.ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	require.Len(t, questions[0].Options, 2)
	assert.Equal(t, "443", questions[0].Options[0].OptionText)
	assert.True(t, questions[0].Options[0].IsCorrect)
}

func TestHideAnswers(t *testing.T) {
	questions := []model.AssessmentQuestion{{
		Explanation: "443 is the HTTPS default",
		Options:     []model.QuestionOption{{OptionText: "80"}, {OptionText: "443", IsCorrect: true}},
	}}
	hideAnswers(questions)
	assert.Empty(t, questions[0].Explanation)
	for _, o := range questions[0].Options {
		assert.False(t, o.IsCorrect)
	}
}

func TestTraineeQuestionsHideAnswerKey(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewAssessmentService(db)

	open := model.Course{CourseName: "Security"}
	hidden := model.Course{CourseName: "Payroll", TargetRole: access.HRName}
	require.NoError(t, db.Create(&open).Error)
	require.NoError(t, db.Create(&hidden).Error)

	in := mcq(OptionInput{"80", false}, OptionInput{"443", true})
	in.Explanation = "443 is the HTTPS default"

	tpl, err := svc.CreateTemplate(ctx, open.ID, TemplateInput{Title: strPtr("Basics quiz")})
	require.NoError(t, err)
	_, err = svc.CreateQuestion(ctx, tpl.ID, in)
	require.NoError(t, err)
	hiddenTpl, err := svc.CreateTemplate(ctx, hidden.ID, TemplateInput{Title: strPtr("Payroll quiz")})
	require.NoError(t, err)

	trainee := &session.Session{ProfileID: 42, Role: access.Trainee}
	hr := &session.Session{ProfileID: 1, Role: access.HR}

	got, err := svc.GetTemplate(ctx, trainee, tpl.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
	assert.Empty(t, got.Questions[0].Explanation)
	for _, o := range got.Questions[0].Options {
		assert.False(t, o.IsCorrect, o.OptionText)
	}

	questions, err := svc.ListQuestions(ctx, trainee, tpl.ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.False(t, questions[0].Options[1].IsCorrect)

	questions, err = svc.ListQuestions(ctx, hr, tpl.ID)
	require.NoError(t, err)
	assert.True(t, questions[0].Options[1].IsCorrect)
	assert.Equal(t, "443 is the HTTPS default", questions[0].Explanation)

	_, err = svc.GetTemplate(ctx, trainee, hiddenTpl.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ListQuestions(ctx, trainee, hiddenTpl.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
