package middleware

import (
	"errors"
	"strings"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/auth"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/dabhanushali/enacton-training/utils/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

const localSession = "session"

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// Required is middleware that requires a valid access token. It reloads the
// profile and stores a session.Session built from the database role.
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		if claims.TokenType != auth.TokenTypeAccess {
			return response.Unauthorized(c, "Invalid token type")
		}

		isRevoked, err := m.blacklistService.IsTokenRevoked(c.UserContext(), claims.ID)
		if err != nil {
			log.Errorf("[AUTH] blacklist lookup failed: %v", err)
			return response.InternalServerError(c, "Failed to check token status")
		}
		if isRevoked {
			return response.Unauthorized(c, "Token has been revoked")
		}

		var profile model.Profile
		if err := m.db.WithContext(c.UserContext()).Preload("Role").First(&profile, claims.ProfileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.Unauthorized(c, "Profile not found")
			}
			return response.InternalServerError(c, "Failed to load profile")
		}

		if profile.TokenVersion != claims.TokenVersion {
			return response.Unauthorized(c, "Token has been invalidated")
		}
		if profile.Status == model.EmployeeStatusInactive {
			return response.Unauthorized(c, "Account is inactive")
		}

		role, err := profile.AccessRole()
		if err != nil {
			log.Errorf("[AUTH] profile %d has unknown role %q", profile.ID, profile.Role.Name)
			return response.Forbidden(c, "Account has no valid role")
		}

		c.Locals(localSession, &session.Session{
			ProfileID: profile.ID,
			Email:     profile.Email,
			Role:      role,
			Status:    string(profile.Status),
			ManagerID: profile.ManagerID,
			TokenJTI:  claims.ID,
		})

		return c.Next()
	}
}

// Optional authenticates the request when a bearer token is present and
// passes anonymous requests through without a session
func (m *AuthMiddleware) Optional() fiber.Handler {
	required := m.Required()
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Next()
		}
		return required(c)
	}
}

// RequirePermission rejects callers whose role does not hold perm. Must run after Required.
func RequirePermission(perm access.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := GetSession(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}
		if !sess.Can(perm) {
			return response.Forbidden(c, "Insufficient permissions")
		}
		return c.Next()
	}
}

// GetSession extracts the caller session from context
func GetSession(c *fiber.Ctx) (*session.Session, bool) {
	sess, ok := c.Locals(localSession).(*session.Session)
	return sess, ok && sess != nil
}

// SetSession stores sess on the context; used by tests and internal callers
func SetSession(c *fiber.Ctx, sess *session.Session) {
	c.Locals(localSession, sess)
}
