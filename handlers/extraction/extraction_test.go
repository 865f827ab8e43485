package extraction

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/services/extraction"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/session"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type knownCourses map[uint]bool

func (k knownCourses) Exists(_ context.Context, id uint) error {
	if !k[id] {
		return services.ErrNotFound
	}
	return nil
}

type fixedExtractor struct{ result *extraction.Result }

func (f fixedExtractor) Extract(context.Context, extraction.Request) (*extraction.Result, error) {
	return f.result, nil
}

func extractionApp(extractor extraction.Extractor) *fiber.App {
	svc := extraction.NewService(
		knownCourses{7: true},
		extractor,
		extraction.NewLoader(time.Second),
		extraction.NewPreviewStore(nil, time.Hour),
		nil,
	)
	h := NewExtractionHandler(svc)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		middleware.SetSession(c, &session.Session{ProfileID: 3, Role: access.HR})
		return c.Next()
	})
	app.Post("/courses/:courseId/extract", h.Extract)
	app.Post("/courses/:courseId/extract/:previewId/save", h.SavePreview)
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestExtractValidatesSource(t *testing.T) {
	app := extractionApp(nil)

	assert.Equal(t, fiber.StatusUnprocessableEntity, post(t, app, "/courses/7/extract", `{"content":"x"}`))
	assert.Equal(t, fiber.StatusUnprocessableEntity, post(t, app, "/courses/7/extract", `{"source":"docx","content":"x"}`))
}

func TestExtractWithoutExtractor(t *testing.T) {
	app := extractionApp(nil)

	assert.Equal(t, fiber.StatusServiceUnavailable, post(t, app, "/courses/7/extract", `{"source":"text","content":"Week 1"}`))
	assert.Equal(t, fiber.StatusNotFound, post(t, app, "/courses/8/extract", `{"source":"text","content":"Week 1"}`))
}

func TestExtractReportsCollaboratorFailure(t *testing.T) {
	app := extractionApp(fixedExtractor{&extraction.Result{Success: false, Error: "model overloaded"}})

	assert.Equal(t, fiber.StatusBadGateway, post(t, app, "/courses/7/extract", `{"source":"text","content":"Week 1"}`))
}

func TestExtractReturnsPreview(t *testing.T) {
	app := extractionApp(fixedExtractor{&extraction.Result{
		Success: true,
		Modules: []extraction.ExtractedModule{{ModuleName: "Intro"}},
	}})

	assert.Equal(t, fiber.StatusOK, post(t, app, "/courses/7/extract", `{"source":"text","content":"Week 1: Intro"}`))
	assert.Equal(t, fiber.StatusNotFound, post(t, app, "/courses/7/extract/missing/save", ``))
}
