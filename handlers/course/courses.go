package course

import (
	"strconv"

	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/dabhanushali/enacton-training/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	courses   *services.CourseService
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courses *services.CourseService) *CourseHandler {
	return &CourseHandler{
		courses:   courses,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	CourseName         *string  `json:"course_name" validate:"required,notblank,max=255"`
	CourseDescription  *string  `json:"course_description" validate:"omitempty,max=5000"`
	CourseType         *string  `json:"course_type" validate:"omitempty,max=50"`
	DifficultyLevel    *string  `json:"difficulty_level" validate:"omitempty,max=50"`
	IsMandatory        *bool    `json:"is_mandatory"`
	TargetRole         *string  `json:"target_role" validate:"omitempty,role"`
	LearningObjectives *string  `json:"learning_objectives"`
	Prerequisites      *string  `json:"prerequisites"`
	Skills             []string `json:"skills" validate:"omitempty,dive,max=100"`
	DurationHours      *int     `json:"duration_hours" validate:"omitempty,gte=0"`
	InstructorID       *uint    `json:"instructor_id" validate:"omitempty,min=1"`
}

// UpdateCourseRequest represents the request body for updating a course
type UpdateCourseRequest struct {
	CourseName         *string  `json:"course_name" validate:"omitempty,notblank,max=255"`
	CourseDescription  *string  `json:"course_description" validate:"omitempty,max=5000"`
	CourseType         *string  `json:"course_type" validate:"omitempty,max=50"`
	DifficultyLevel    *string  `json:"difficulty_level" validate:"omitempty,max=50"`
	IsMandatory        *bool    `json:"is_mandatory"`
	TargetRole         *string  `json:"target_role" validate:"omitempty,role"`
	LearningObjectives *string  `json:"learning_objectives"`
	Prerequisites      *string  `json:"prerequisites"`
	Skills             []string `json:"skills" validate:"omitempty,dive,max=100"`
	DurationHours      *int     `json:"duration_hours" validate:"omitempty,gte=0"`
	InstructorID       *uint    `json:"instructor_id" validate:"omitempty,min=1"`
}

func (r CreateCourseRequest) input() services.CourseInput {
	return services.CourseInput{
		CourseName:         r.CourseName,
		CourseDescription:  r.CourseDescription,
		CourseType:         r.CourseType,
		DifficultyLevel:    r.DifficultyLevel,
		IsMandatory:        r.IsMandatory,
		TargetRole:         r.TargetRole,
		LearningObjectives: r.LearningObjectives,
		Prerequisites:      r.Prerequisites,
		Skills:             r.Skills,
		DurationHours:      r.DurationHours,
		InstructorID:       r.InstructorID,
	}
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	params := query.ParseListParams(c)
	f := services.CourseFilter{
		TargetRole:      c.Query("target_role"),
		CourseType:      c.Query("course_type"),
		DifficultyLevel: c.Query("difficulty_level"),
		Search:          params.Search,
		Page:            params.Page,
		Limit:           params.Limit,
	}
	if raw := c.Query("is_mandatory"); raw != "" {
		mandatory, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "is_mandatory must be true or false")
		}
		f.IsMandatory = &mandatory
	}

	courses, total, err := h.courses.List(c.UserContext(), sess, f)
	if err != nil {
		return handlers.Fail(c, err, "Courses")
	}

	return response.Paginated(c, courses, response.CalculatePagination(f.Page, f.Limit, total))
}

// GetCourse handles GET /api/v1/courses/:courseId
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "courseId")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}

	course, err := h.courses.Get(c.UserContext(), sess, id)
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}
	return response.Success(c, course)
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course, err := h.courses.Create(c.UserContext(), sess, req.input())
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}
	return response.Created(c, course)
}

// UpdateCourse handles PUT /api/v1/courses/:courseId
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id, err := query.ID(c, "courseId")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course, err := h.courses.Update(c.UserContext(), id, CreateCourseRequest(req).input())
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}
	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// DeleteCourse handles DELETE /api/v1/courses/:courseId
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id, err := query.ID(c, "courseId")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}

	if err := h.courses.Delete(c.UserContext(), id); err != nil {
		return handlers.Fail(c, err, "Course")
	}
	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}
