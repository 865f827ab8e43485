package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/session"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appWithSession(sess *session.Session, perm access.Permission) *fiber.App {
	app := fiber.New()
	app.Get("/guarded", func(c *fiber.Ctx) error {
		if sess != nil {
			SetSession(c, sess)
		}
		return c.Next()
	}, RequirePermission(perm), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestRequirePermission(t *testing.T) {
	cases := []struct {
		name string
		sess *session.Session
		perm access.Permission
		want int
	}{
		{"no session", nil, access.ViewCourses, fiber.StatusUnauthorized},
		{"trainee cannot manage courses", &session.Session{ProfileID: 1, Role: access.Trainee}, access.ManageCourses, fiber.StatusForbidden},
		{"hr manages courses", &session.Session{ProfileID: 2, Role: access.HR}, access.ManageCourses, fiber.StatusNoContent},
		{"team lead evaluates", &session.Session{ProfileID: 3, Role: access.TeamLead}, access.EvaluateSubmissions, fiber.StatusNoContent},
		{"hr cannot manage roles", &session.Session{ProfileID: 4, Role: access.HR}, access.ManageRoles, fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := appWithSession(tc.sess, tc.perm).Test(httptest.NewRequest("GET", "/guarded", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestRequiredRejectsMissingHeader(t *testing.T) {
	m := &AuthMiddleware{}
	app := fiber.New()
	app.Get("/me", m.Required(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLockoutFor(t *testing.T) {
	assert.Equal(t, time.Duration(0), LockoutFor(4))
	assert.Equal(t, 2*time.Minute, LockoutFor(5))
	assert.Equal(t, time.Hour, LockoutFor(10))
	assert.Equal(t, 24*time.Hour, LockoutFor(30))
}

func TestBruteForceWithoutRedisPasses(t *testing.T) {
	b := NewBruteForceProtection(nil)
	app := fiber.New()
	app.Post("/login", b.CheckAndRecordAttempt(), func(c *fiber.Ctx) error {
		require.NoError(t, b.RecordFailedAttempt(c.UserContext(), c.IP(), "a@b.c"))
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuditBodyRedactsPasswords(t *testing.T) {
	out := auditBody([]byte(`{"email":"a@b.c","password":"secret123"}`))
	assert.JSONEq(t, `{"email":"a@b.c","password":"[redacted]"}`, string(out))
	assert.Nil(t, auditBody([]byte("not json")))
}
