package auth

import (
	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest holds the fields employees may change about themselves
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,notblank,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
}

// ProfileResponse is the caller's own profile with what their role may do
type ProfileResponse struct {
	Profile     interface{}         `json:"profile"`
	Permissions []access.Permission `json:"permissions"`
}

// GetProfile returns the caller's profile with role and manager
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	profile, err := h.employees.Get(c.UserContext(), sess, sess.ProfileID)
	if err != nil {
		return handlers.Fail(c, err, "Profile")
	}

	return response.Success(c, ProfileResponse{
		Profile:     profile,
		Permissions: access.Permissions(sess.Role),
	})
}

// UpdateProfile changes the caller's own personal details
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	profile, err := h.employees.Update(c.UserContext(), sess.ProfileID, services.UpdateEmployeeInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return handlers.Fail(c, err, "Profile")
	}

	return response.SuccessWithMessage(c, "Profile updated successfully", profile)
}
