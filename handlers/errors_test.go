package handlers

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/services/extraction"
	"github.com/dabhanushali/enacton-training/services/objectstore"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&services.ValidationError{Fields: map[string]string{"course_name": "required"}}, fiber.StatusUnprocessableEntity},
		{fmt.Errorf("%w: id=%q", query.ErrInvalidID, "x"), fiber.StatusBadRequest},
		{fmt.Errorf("course 4: %w", services.ErrNotFound), fiber.StatusNotFound},
		{services.ErrForbidden, fiber.StatusForbidden},
		{fmt.Errorf("%w: Started -> Not_Started", services.ErrInvalidTransition), fiber.StatusConflict},
		{services.ErrDuplicate, fiber.StatusConflict},
		{database.ErrForeignKey, fiber.StatusUnprocessableEntity},
		{extraction.ErrDisabled, fiber.StatusServiceUnavailable},
		{objectstore.ErrNotConfigured, fiber.StatusServiceUnavailable},
		{fmt.Errorf("%w: boom", extraction.ErrRejected), fiber.StatusBadGateway},
		{extraction.ErrPreviewNotFound, fiber.StatusNotFound},
		{extraction.ErrNothingToSave, fiber.StatusBadRequest},
		{errors.New("connection reset"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return Fail(c, tc.err, "Course") })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
