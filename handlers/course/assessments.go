package course

import (
	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/dabhanushali/enacton-training/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// AssessmentHandler handles assessment templates and their questions
type AssessmentHandler struct {
	courses     *services.CourseService
	assessments *services.AssessmentService
	validator   *validation.Validator
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(courses *services.CourseService, assessments *services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		courses:     courses,
		assessments: assessments,
		validator:   validation.NewValidator(),
	}
}

// TemplateRequest represents the body for creating or updating a template
type TemplateRequest struct {
	Title            *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description      *string `json:"description"`
	AssessmentType   *string `json:"assessment_type" validate:"omitempty,assessment_type"`
	PassingScore     *int    `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	TimeLimitMinutes *int    `json:"time_limit_minutes" validate:"omitempty,gte=0"`
	MaxAttempts      *int    `json:"max_attempts" validate:"omitempty,gte=0"`
	Instructions     *string `json:"instructions"`
	IsMandatory      *bool   `json:"is_mandatory"`
}

// OptionRequest is one answer choice
type OptionRequest struct {
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuestionRequest is a full question with its options. Option rules are
// checked by the service so every failing field is reported at once.
type QuestionRequest struct {
	QuestionText  string          `json:"question_text"`
	QuestionType  string          `json:"question_type"`
	Points        int             `json:"points"`
	QuestionOrder int             `json:"question_order"`
	Explanation   string          `json:"explanation"`
	Options       []OptionRequest `json:"options"`
}

func (r TemplateRequest) input() services.TemplateInput {
	return services.TemplateInput{
		Title:            r.Title,
		Description:      r.Description,
		AssessmentType:   r.AssessmentType,
		PassingScore:     r.PassingScore,
		TimeLimitMinutes: r.TimeLimitMinutes,
		MaxAttempts:      r.MaxAttempts,
		Instructions:     r.Instructions,
		IsMandatory:      r.IsMandatory,
	}
}

func (r QuestionRequest) input() services.QuestionInput {
	options := make([]services.OptionInput, len(r.Options))
	for i, o := range r.Options {
		options[i] = services.OptionInput{OptionText: o.OptionText, IsCorrect: o.IsCorrect}
	}
	return services.QuestionInput{
		QuestionText:  validation.SanitizeString(r.QuestionText),
		QuestionType:  r.QuestionType,
		Points:        r.Points,
		QuestionOrder: r.QuestionOrder,
		Explanation:   r.Explanation,
		Options:       options,
	}
}

// ListAssessments handles GET /api/v1/courses/:courseId/assessments
func (h *AssessmentHandler) ListAssessments(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := query.ID(c, "courseId")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}
	if _, err := h.courses.Get(c.UserContext(), sess, courseID); err != nil {
		return handlers.Fail(c, err, "Course")
	}

	templates, err := h.assessments.ListTemplates(c.UserContext(), courseID)
	if err != nil {
		return handlers.Fail(c, err, "Assessments")
	}
	return response.Success(c, templates)
}

// CreateAssessment handles POST /api/v1/courses/:courseId/assessments
func (h *AssessmentHandler) CreateAssessment(c *fiber.Ctx) error {
	courseID, err := query.ID(c, "courseId")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}

	var req TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	template, err := h.assessments.CreateTemplate(c.UserContext(), courseID, req.input())
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}
	return response.Created(c, template)
}

// GetAssessment handles GET /api/v1/assessments/:id
func (h *AssessmentHandler) GetAssessment(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Assessment")
	}

	template, err := h.assessments.GetTemplate(c.UserContext(), sess, id)
	if err != nil {
		return handlers.Fail(c, err, "Assessment")
	}
	return response.Success(c, template)
}

// UpdateAssessment handles PUT /api/v1/assessments/:id
func (h *AssessmentHandler) UpdateAssessment(c *fiber.Ctx) error {
	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Assessment")
	}

	var req TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	template, err := h.assessments.UpdateTemplate(c.UserContext(), id, req.input())
	if err != nil {
		return handlers.Fail(c, err, "Assessment")
	}
	return response.SuccessWithMessage(c, "Assessment updated successfully", template)
}

// DeleteAssessment handles DELETE /api/v1/assessments/:id
func (h *AssessmentHandler) DeleteAssessment(c *fiber.Ctx) error {
	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Assessment")
	}

	if err := h.assessments.DeleteTemplate(c.UserContext(), id); err != nil {
		return handlers.Fail(c, err, "Assessment")
	}
	return response.SuccessWithMessage(c, "Assessment deleted successfully", nil)
}

// ListQuestions handles GET /api/v1/assessments/:id/questions
func (h *AssessmentHandler) ListQuestions(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Assessment")
	}

	questions, err := h.assessments.ListQuestions(c.UserContext(), sess, id)
	if err != nil {
		return handlers.Fail(c, err, "Assessment")
	}
	return response.Success(c, questions)
}

// CreateQuestion handles POST /api/v1/assessments/:id/questions
func (h *AssessmentHandler) CreateQuestion(c *fiber.Ctx) error {
	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Assessment")
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	question, err := h.assessments.CreateQuestion(c.UserContext(), id, req.input())
	if err != nil {
		return handlers.Fail(c, err, "Assessment")
	}
	return response.Created(c, question)
}

// UpdateQuestion handles PUT /api/v1/questions/:id
func (h *AssessmentHandler) UpdateQuestion(c *fiber.Ctx) error {
	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Question")
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	question, err := h.assessments.UpdateQuestion(c.UserContext(), id, req.input())
	if err != nil {
		return handlers.Fail(c, err, "Question")
	}
	return response.SuccessWithMessage(c, "Question updated successfully", question)
}

// DeleteQuestion handles DELETE /api/v1/questions/:id
func (h *AssessmentHandler) DeleteQuestion(c *fiber.Ctx) error {
	id, err := query.ID(c, "id")
	if err != nil {
		return handlers.Fail(c, err, "Question")
	}

	if err := h.assessments.DeleteQuestion(c.UserContext(), id); err != nil {
		return handlers.Fail(c, err, "Question")
	}
	return response.SuccessWithMessage(c, "Question deleted successfully", nil)
}
