package project

import (
	"time"

	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/services/objectstore"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/dabhanushali/enacton-training/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// ProjectHandler handles projects, assignments, submissions and evaluations
type ProjectHandler struct {
	projects  *services.ProjectService
	store     *objectstore.Store
	validator *validation.Validator
}

// NewProjectHandler creates a project handler. store may be nil, in which
// case submissions accept text and links only.
func NewProjectHandler(projects *services.ProjectService, store *objectstore.Store) *ProjectHandler {
	return &ProjectHandler{
		projects:  projects,
		store:     store,
		validator: validation.NewValidator(),
	}
}

// ProjectRequest represents the body for creating or updating a project
type ProjectRequest struct {
	ProjectName  *string    `json:"project_name" validate:"omitempty,max=255"`
	Description  *string    `json:"description"`
	Instructions *string    `json:"instructions"`
	Deliverables *string    `json:"deliverables"`
	CourseID     *uint      `json:"course_id" validate:"omitempty,min=1"`
	DueDate      *time.Time `json:"due_date"`
	Status       *string    `json:"status" validate:"omitempty,project_status"`
}

func (r ProjectRequest) input() services.ProjectInput {
	return services.ProjectInput{
		ProjectName:  r.ProjectName,
		Description:  r.Description,
		Instructions: r.Instructions,
		Deliverables: r.Deliverables,
		CourseID:     r.CourseID,
		DueDate:      r.DueDate,
		Status:       r.Status,
	}
}

// ListProjects handles GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	params := query.ParseListParams(c)
	courseID, err := query.OptionalUint(c, "course_id")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}

	f := services.ProjectFilter{
		CourseID: courseID,
		Status:   c.Query("status"),
		Search:   params.Search,
		Page:     params.Page,
		Limit:    params.Limit,
	}
	projects, total, err := h.projects.List(c.UserContext(), sess, f)
	if err != nil {
		return handlers.Fail(c, err, "Projects")
	}
	return response.Paginated(c, projects, response.CalculatePagination(f.Page, f.Limit, total))
}

// GetProject handles GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Project")
	}

	project, err := h.projects.Get(c.UserContext(), sess, id)
	if err != nil {
		return handlers.Fail(c, err, "Project")
	}
	return response.Success(c, project)
}

// CreateProject handles POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	project, err := h.projects.Create(c.UserContext(), sess, req.input())
	if err != nil {
		return handlers.Fail(c, err, "Project")
	}
	return response.Created(c, project)
}

// UpdateProject handles PUT /api/v1/projects/:id
func (h *ProjectHandler) UpdateProject(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Project")
	}

	var req ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	project, err := h.projects.Update(c.UserContext(), sess, id, req.input())
	if err != nil {
		return handlers.Fail(c, err, "Project")
	}
	return response.SuccessWithMessage(c, "Project updated successfully", project)
}

// DeleteProject handles DELETE /api/v1/projects/:id
func (h *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Project")
	}

	if err := h.projects.Delete(c.UserContext(), sess, id); err != nil {
		return handlers.Fail(c, err, "Project")
	}
	return response.SuccessWithMessage(c, "Project deleted successfully", nil)
}
