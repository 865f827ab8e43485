package auth

import (
	"errors"
	"strings"

	"github.com/dabhanushali/enacton-training/model"
	authutil "github.com/dabhanushali/enacton-training/utils/auth"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles employee login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	ctx := c.UserContext()
	ip := c.IP()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var profile model.Profile
	err := h.db.WithContext(ctx).Preload("Role").Preload("Manager").Where("email = ?", email).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.InternalServerError(c, "Failed to load account")
	}

	// same answer for unknown email and wrong password
	if err != nil || authutil.VerifyPassword(profile.PasswordHash, req.Password) != nil {
		if err := h.bruteForceProtection.RecordFailedAttempt(ctx, ip, email); err != nil {
			log.Warnf("[AUTH] failed to record login attempt: %v", err)
		}
		return response.Unauthorized(c, "Invalid email or password")
	}

	if profile.Status == model.EmployeeStatusInactive {
		return response.Unauthorized(c, "Account is inactive")
	}

	if err := h.bruteForceProtection.RecordSuccessfulAttempt(ctx, ip); err != nil {
		log.Warnf("[AUTH] failed to clear login attempts: %v", err)
	}

	pair, err := h.jwtManager.GeneratePair(profile.ID, profile.Email, profile.Role.Name, profile.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	log.Infof("[AUTH] %s logged in as %s", profile.Email, profile.Role.Name)
	return response.Success(c, AuthResponse{Profile: &profile, TokenPair: *pair})
}
