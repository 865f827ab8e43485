package query

import (
	"net/http/httptest"
	"testing"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListParams(t *testing.T) {
	app := fiber.New()
	var got ListParams
	var managerID *uint
	var parseErr error
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		got = ParseListParams(c)
		managerID, parseErr = OptionalUint(c, "manager_id")
		id, err := ID(c, "id")
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items/7?page=2&limit=500&search=%20go%20&manager_id=3", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, database.MaxPageSize, got.Limit)
	assert.Equal(t, "go", got.Search)
	require.NoError(t, parseErr)
	require.NotNil(t, managerID)
	assert.Equal(t, uint(3), *managerID)

	resp, err = app.Test(httptest.NewRequest("GET", "/items/abc?manager_id=x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.ErrorIs(t, parseErr, ErrInvalidID)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, database.DefaultPageSize, got.Limit)
}

func TestApply(t *testing.T) {
	q := ListParams{Page: 3, Limit: 10, Search: "ops"}.Apply(database.Query{}, "department")
	assert.Equal(t, 20, q.Offset())
	assert.Equal(t, "ops", q.Search)
	assert.Equal(t, []string{"department"}, q.SearchColumns)

	q = ListParams{Page: 1, Limit: 10}.Apply(database.Query{}, "department")
	assert.Empty(t, q.Search)
}
