package auth

import (
	"strings"
	"time"

	"github.com/dabhanushali/enacton-training/model"
	authutil "github.com/dabhanushali/enacton-training/utils/auth"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshToken exchanges a refresh token for a new pair and revokes the old one
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	ctx := c.UserContext()

	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, "Invalid or expired refresh token")
	}
	if claims.TokenType != authutil.TokenTypeRefresh {
		return response.Unauthorized(c, "Invalid token type")
	}

	isRevoked, err := h.blacklistService.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check token status")
	}
	if isRevoked {
		return response.Unauthorized(c, "Token has been revoked")
	}

	var profile model.Profile
	if err := h.db.WithContext(ctx).Preload("Role").First(&profile, claims.ProfileID).Error; err != nil {
		return response.Unauthorized(c, "Account not found")
	}
	if profile.TokenVersion != claims.TokenVersion {
		return response.Unauthorized(c, "Token has been invalidated")
	}
	if profile.Status == model.EmployeeStatusInactive {
		return response.Unauthorized(c, "Account is inactive")
	}

	// role comes from the database, so a promotion takes effect on refresh
	pair, err := h.jwtManager.GeneratePair(profile.ID, profile.Email, profile.Role.Name, profile.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	expiresAt, err := h.jwtManager.GetTokenExpiry(req.RefreshToken)
	if err != nil {
		expiresAt = time.Now().Add(7 * 24 * time.Hour)
	}
	if err := h.blacklistService.RevokeToken(ctx, claims.ID, profile.ID, expiresAt, "token_refresh"); err != nil {
		// the old token still expires on its own
		log.Warnf("[AUTH] failed to revoke refreshed token for profile %d: %v", profile.ID, err)
	}

	return response.Success(c, pair)
}

// Logout revokes the caller's access token
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	if sess.TokenJTI == "" {
		return response.BadRequest(c, "No token ID found")
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	if token, found := strings.CutPrefix(c.Get("Authorization"), "Bearer "); found {
		if exp, err := h.jwtManager.GetTokenExpiry(token); err == nil {
			expiresAt = exp
		}
	}

	if err := h.blacklistService.RevokeToken(c.UserContext(), sess.TokenJTI, sess.ProfileID, expiresAt, "logout"); err != nil {
		return response.InternalServerError(c, "Failed to logout")
	}

	return response.SuccessWithMessage(c, "Successfully logged out", nil)
}
