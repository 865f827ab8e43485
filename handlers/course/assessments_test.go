package course

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/session"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asRole(role access.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		middleware.SetSession(c, &session.Session{ProfileID: 42, Role: role})
		return c.Next()
	}
}

func getBody(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestTraineeAssessmentResponsesOmitAnswerKey(t *testing.T) {
	db, err := database.OpenTestDB()
	if errors.Is(err, database.ErrNoTestDatabase) {
		t.Skip("TEST_DB_DSN not set")
	}
	require.NoError(t, err)
	ctx := context.Background()

	course := model.Course{CourseName: "Security"}
	hidden := model.Course{CourseName: "Payroll", TargetRole: access.HRName}
	require.NoError(t, db.Create(&course).Error)
	require.NoError(t, db.Create(&hidden).Error)

	assessments := services.NewAssessmentService(db)
	title := "Basics quiz"
	tpl, err := assessments.CreateTemplate(ctx, course.ID, services.TemplateInput{Title: &title})
	require.NoError(t, err)
	_, err = assessments.CreateQuestion(ctx, tpl.ID, services.QuestionInput{
		QuestionText: "Which port does HTTPS use?",
		QuestionType: string(model.QuestionTypeMultipleChoice),
		Points:       1,
		Explanation:  "443 is the HTTPS default",
		Options:      []services.OptionInput{{OptionText: "80"}, {OptionText: "443", IsCorrect: true}},
	})
	require.NoError(t, err)
	hiddenTpl, err := assessments.CreateTemplate(ctx, hidden.ID, services.TemplateInput{Title: &title})
	require.NoError(t, err)

	h := NewAssessmentHandler(services.NewCourseService(db), assessments)
	app := fiber.New()
	app.Get("/trainee/assessments/:id", asRole(access.Trainee), h.GetAssessment)
	app.Get("/trainee/assessments/:id/questions", asRole(access.Trainee), h.ListQuestions)
	app.Get("/hr/assessments/:id/questions", asRole(access.HR), h.ListQuestions)

	for _, path := range []string{
		fmt.Sprintf("/trainee/assessments/%d", tpl.ID),
		fmt.Sprintf("/trainee/assessments/%d/questions", tpl.ID),
	} {
		status, body := getBody(t, app, path)
		assert.Equal(t, fiber.StatusOK, status, path)
		assert.Contains(t, body, "Which port does HTTPS use?", path)
		assert.NotContains(t, body, "is_correct", path)
		assert.NotContains(t, body, "HTTPS default", path)
	}

	status, body := getBody(t, app, fmt.Sprintf("/hr/assessments/%d/questions", tpl.ID))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"is_correct":true`)
	assert.Contains(t, body, "HTTPS default")

	status, _ = getBody(t, app, fmt.Sprintf("/trainee/assessments/%d", hiddenTpl.ID))
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = getBody(t, app, fmt.Sprintf("/trainee/assessments/%d/questions", hiddenTpl.ID))
	assert.Equal(t, fiber.StatusNotFound, status)
}
