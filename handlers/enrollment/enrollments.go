package enrollment

import (
	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/dabhanushali/enacton-training/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// EnrollmentHandler handles course enrollments
type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
	validator   *validation.Validator
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollments *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		validator:   validation.NewValidator(),
	}
}

// EnrollRequest lists the employees to enroll. Empty enrolls the caller.
type EnrollRequest struct {
	EmployeeIDs []uint `json:"employee_ids" validate:"omitempty,dive,min=1"`
}

// Enroll handles POST /api/v1/courses/:courseId/enrollments
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := query.ID(c, "courseId")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}

	var req EnrollRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	enrolled, err := h.enrollments.Enroll(c.UserContext(), sess, courseID, req.EmployeeIDs)
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}

	withProgress, err := h.enrollments.WithProgress(c.UserContext(), enrolled)
	if err != nil {
		return handlers.Fail(c, err, "Enrollments")
	}
	return response.Created(c, withProgress)
}

// ListEnrollments handles GET /api/v1/enrollments
func (h *EnrollmentHandler) ListEnrollments(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	params := query.ParseListParams(c)
	employeeID, err := query.OptionalUint(c, "employee_id")
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}
	courseID, err := query.OptionalUint(c, "course_id")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}

	f := services.EnrollmentFilter{
		EmployeeID: employeeID,
		CourseID:   courseID,
		Status:     c.Query("status"),
		Page:       params.Page,
		Limit:      params.Limit,
	}
	rows, total, err := h.enrollments.List(c.UserContext(), sess, f)
	if err != nil {
		return handlers.Fail(c, err, "Enrollments")
	}
	return response.Paginated(c, rows, response.CalculatePagination(f.Page, f.Limit, total))
}

// CompleteEnrollment handles PUT /api/v1/enrollments/:id/complete
func (h *EnrollmentHandler) CompleteEnrollment(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Enrollment")
	}

	enrollment, err := h.enrollments.Complete(c.UserContext(), sess, id)
	if err != nil {
		return handlers.Fail(c, err, "Enrollment")
	}
	return response.SuccessWithMessage(c, "Enrollment completed", enrollment)
}

// DeleteEnrollment handles DELETE /api/v1/enrollments/:id
func (h *EnrollmentHandler) DeleteEnrollment(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Enrollment")
	}

	if err := h.enrollments.Delete(c.UserContext(), sess, id); err != nil {
		return handlers.Fail(c, err, "Enrollment")
	}
	return response.SuccessWithMessage(c, "Enrollment removed", nil)
}
