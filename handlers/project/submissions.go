package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/services/objectstore"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/dabhanushali/enacton-training/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// MaxSubmissionFileSize caps a submitted attachment
const MaxSubmissionFileSize = 50 << 20

// SubmitRequest is the JSON or form body of a submission
type SubmitRequest struct {
	SubmissionText string `json:"submission_text" form:"submission_text" validate:"max=20000"`
	SubmissionURL  string `json:"submission_url" form:"submission_url" validate:"omitempty,url"`
}

// EvaluateRequest scores a submission on a 0-10 scale per criterion
type EvaluateRequest struct {
	TechnicalScore     float64 `json:"technical_score"`
	QualityScore       float64 `json:"quality_score"`
	DocumentationScore float64 `json:"documentation_score"`
	TimelinessScore    float64 `json:"timeliness_score"`
	Feedback           string  `json:"feedback" validate:"max=10000"`
	Strengths          string  `json:"strengths" validate:"max=5000"`
	Improvements       string  `json:"improvements" validate:"max=5000"`
	RequestRevision    bool    `json:"request_revision"`
}

// Submit handles POST /api/v1/assignments/:assignmentId/submissions.
// Accepts JSON, or multipart with an optional "file" part.
func (h *ProjectHandler) Submit(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "assignmentId")
	if err != nil {
		return handlers.Fail(c, err, "Assignment")
	}

	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	in := services.SubmitInput{
		SubmissionText: req.SubmissionText,
		SubmissionURL:  req.SubmissionURL,
	}

	ctx := c.UserContext()
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		if fileHeader, err := c.FormFile("file"); err == nil {
			if h.store == nil {
				return handlers.Fail(c, objectstore.ErrNotConfigured, "Submission")
			}
			if fileHeader.Size > MaxSubmissionFileSize {
				return response.BadRequest(c, fmt.Sprintf("File exceeds the %d MB limit", MaxSubmissionFileSize>>20))
			}

			file, err := fileHeader.Open()
			if err != nil {
				return response.InternalServerError(c, "Failed to read uploaded file")
			}
			defer file.Close()

			key := objectstore.NewKey(fmt.Sprintf("submissions/%d", id), fileHeader.Filename)
			if _, err := h.store.Upload(ctx, key, file, objectstore.ContentType(fileHeader.Filename)); err != nil {
				log.Errorf("[STORAGE] submission upload for assignment %d failed: %v", id, err)
				return response.InternalServerError(c, "Failed to store file")
			}
			in.FileKey = key
			in.FileName = validation.SanitizeString(filepath.Base(fileHeader.Filename))
		}
	}

	submission, err := h.projects.Submit(ctx, sess, id, in)
	if err != nil {
		if in.FileKey != "" {
			if delErr := h.store.Delete(ctx, in.FileKey); delErr != nil {
				log.Warnf("[STORAGE] orphaned object %s: %v", in.FileKey, delErr)
			}
		}
		return handlers.Fail(c, err, "Assignment")
	}
	return response.Created(c, submission)
}

// ListSubmissions handles GET /api/v1/assignments/:assignmentId/submissions
func (h *ProjectHandler) ListSubmissions(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "assignmentId")
	if err != nil {
		return handlers.Fail(c, err, "Assignment")
	}

	submissions, err := h.projects.ListSubmissions(c.UserContext(), sess, id)
	if err != nil {
		return handlers.Fail(c, err, "Assignment")
	}
	return response.Success(c, submissions)
}

// Evaluate handles POST /api/v1/submissions/:submissionId/evaluation
func (h *ProjectHandler) Evaluate(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "submissionId")
	if err != nil {
		return handlers.Fail(c, err, "Submission")
	}

	var req EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	evaluation, err := h.projects.Evaluate(c.UserContext(), sess, id, services.EvaluateInput{
		TechnicalScore:     req.TechnicalScore,
		QualityScore:       req.QualityScore,
		DocumentationScore: req.DocumentationScore,
		TimelinessScore:    req.TimelinessScore,
		Feedback:           req.Feedback,
		Strengths:          req.Strengths,
		Improvements:       req.Improvements,
		RequestRevision:    req.RequestRevision,
	})
	if err != nil {
		return handlers.Fail(c, err, "Submission")
	}
	return response.Created(c, evaluation)
}

// GetEvaluation handles GET /api/v1/submissions/:submissionId/evaluation
func (h *ProjectHandler) GetEvaluation(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "submissionId")
	if err != nil {
		return handlers.Fail(c, err, "Submission")
	}

	evaluation, err := h.projects.GetEvaluation(c.UserContext(), sess, id)
	if err != nil {
		return handlers.Fail(c, err, "Evaluation")
	}
	return response.Success(c, evaluation)
}
