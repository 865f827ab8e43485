package project

import (
	"time"

	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/gofiber/fiber/v2"
)

// AssignRequest assigns a project to employees
type AssignRequest struct {
	EmployeeIDs []uint     `json:"employee_ids" validate:"required,min=1,dive,min=1"`
	DueDate     *time.Time `json:"due_date"`
}

// AssignProject handles POST /api/v1/projects/:id/assignments
func (h *ProjectHandler) AssignProject(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Project")
	}

	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	assignments, err := h.projects.Assign(c.UserContext(), sess, id, req.EmployeeIDs, req.DueDate)
	if err != nil {
		return handlers.Fail(c, err, "Project")
	}
	return response.Created(c, assignments)
}

// ListAssignments handles GET /api/v1/assignments
func (h *ProjectHandler) ListAssignments(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	params := query.ParseListParams(c)
	projectID, err := query.OptionalUint(c, "project_id")
	if err != nil {
		return handlers.Fail(c, err, "Project")
	}
	assigneeID, err := query.OptionalUint(c, "assignee_id")
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}

	f := services.AssignmentFilter{
		ProjectID:  projectID,
		AssigneeID: assigneeID,
		Status:     c.Query("status"),
		Page:       params.Page,
		Limit:      params.Limit,
	}
	assignments, total, err := h.projects.ListAssignments(c.UserContext(), sess, f)
	if err != nil {
		return handlers.Fail(c, err, "Assignments")
	}
	return response.Paginated(c, assignments, response.CalculatePagination(f.Page, f.Limit, total))
}

// GetAssignment handles GET /api/v1/assignments/:assignmentId
func (h *ProjectHandler) GetAssignment(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "assignmentId")
	if err != nil {
		return handlers.Fail(c, err, "Assignment")
	}

	assignment, err := h.projects.GetAssignment(c.UserContext(), sess, id)
	if err != nil {
		return handlers.Fail(c, err, "Assignment")
	}
	return response.Success(c, assignment)
}

// StartAssignment handles POST /api/v1/assignments/:assignmentId/start
func (h *ProjectHandler) StartAssignment(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "assignmentId")
	if err != nil {
		return handlers.Fail(c, err, "Assignment")
	}

	assignment, err := h.projects.StartAssignment(c.UserContext(), sess, id)
	if err != nil {
		return handlers.Fail(c, err, "Assignment")
	}
	return response.SuccessWithMessage(c, "Assignment started", assignment)
}

// DeleteAssignment handles DELETE /api/v1/assignments/:assignmentId
func (h *ProjectHandler) DeleteAssignment(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "assignmentId")
	if err != nil {
		return handlers.Fail(c, err, "Assignment")
	}

	if err := h.projects.DeleteAssignment(c.UserContext(), sess, id); err != nil {
		return handlers.Fail(c, err, "Assignment")
	}
	return response.SuccessWithMessage(c, "Assignment removed", nil)
}
