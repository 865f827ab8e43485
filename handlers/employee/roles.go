package employee

import (
	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/dabhanushali/enacton-training/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// RoleHandler serves the fixed role catalogue
type RoleHandler struct {
	roles     *services.RoleService
	validator *validation.Validator
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roles *services.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles, validator: validation.NewValidator()}
}

// CreateRoleRequest provisions one of the known roles
type CreateRoleRequest struct {
	Name        string `json:"name" validate:"required,role"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// UpdateRoleRequest changes a role description
type UpdateRoleRequest struct {
	Description string `json:"description" validate:"max=1000"`
}

// ListRoles handles GET /api/v1/roles
func (h *RoleHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.roles.List(c.UserContext())
	if err != nil {
		return handlers.Fail(c, err, "Roles")
	}
	return response.Success(c, roles)
}

// CreateRole handles POST /api/v1/roles
func (h *RoleHandler) CreateRole(c *fiber.Ctx) error {
	var req CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	role, err := h.roles.Create(c.UserContext(), req.Name, req.Description)
	if err != nil {
		return handlers.Fail(c, err, "Role")
	}
	return response.Created(c, role)
}

// UpdateRole handles PUT /api/v1/roles/:id
func (h *RoleHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Role")
	}

	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	role, err := h.roles.UpdateDescription(c.UserContext(), id, req.Description)
	if err != nil {
		return handlers.Fail(c, err, "Role")
	}
	return response.SuccessWithMessage(c, "Role updated successfully", role)
}
