package auth

import (
	"errors"

	"github.com/dabhanushali/enacton-training/model"
	authutil "github.com/dabhanushali/enacton-training/utils/auth"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword sets a new password and invalidates every issued token
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	ctx := c.UserContext()

	var profile model.Profile
	if err := h.db.WithContext(ctx).First(&profile, sess.ProfileID).Error; err != nil {
		return response.Unauthorized(c, "Account not found")
	}

	if err := authutil.VerifyPassword(profile.PasswordHash, req.CurrentPassword); err != nil {
		return response.BadRequest(c, "Current password is incorrect")
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		if errors.Is(err, authutil.ErrPasswordTooShort) || errors.Is(err, authutil.ErrPasswordNoLetter) {
			return response.ValidationError(c, err)
		}
		return response.InternalServerError(c, "Failed to process password")
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&profile).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return h.blacklistService.WithTx(tx).RevokeAllProfileTokens(ctx, profile.ID)
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	return response.SuccessWithMessage(c, "Password changed successfully. Please log in again with your new password", nil)
}
