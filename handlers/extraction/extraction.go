package extraction

import (
	"fmt"
	"io"
	"strings"

	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/services/extraction"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/dabhanushali/enacton-training/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// MaxPDFSize caps a PDF sent for extraction
const MaxPDFSize = 20 << 20

// ExtractionHandler turns pasted text, a web page or a PDF into module previews
type ExtractionHandler struct {
	service   *extraction.Service
	validator *validation.Validator
}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler(service *extraction.Service) *ExtractionHandler {
	return &ExtractionHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// ExtractRequest is the JSON body for text and url sources
type ExtractRequest struct {
	Source  string `json:"source" validate:"required,oneof=text url pdf"`
	Content string `json:"content" validate:"max=200000"`
}

// SaveRequest optionally carries reviewer-edited modules
type SaveRequest struct {
	Modules []extraction.ExtractedModule `json:"modules"`
}

// Extract handles POST /api/v1/courses/:courseId/extract.
// JSON {source, content} or multipart with a "file" PDF part.
func (h *ExtractionHandler) Extract(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := query.ID(c, "courseId")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}

	var (
		source  extraction.Source
		content string
		file    []byte
	)

	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return response.BadRequest(c, "A PDF file is required")
		}
		if fileHeader.Size > MaxPDFSize {
			return response.BadRequest(c, fmt.Sprintf("File exceeds the %d MB limit", MaxPDFSize>>20))
		}

		f, err := fileHeader.Open()
		if err != nil {
			return response.InternalServerError(c, "Failed to read uploaded file")
		}
		defer f.Close()

		file, err = io.ReadAll(f)
		if err != nil {
			return response.InternalServerError(c, "Failed to read uploaded file")
		}
		source = extraction.SourcePDF
	} else {
		var req ExtractRequest
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
		if err := h.validator.ValidateStruct(req); err != nil {
			return response.ValidationError(c, err)
		}
		source = extraction.Source(req.Source)
		content = req.Content
	}

	preview, err := h.service.Preview(c.UserContext(), courseID, sess.ProfileID, source, content, file)
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}
	return response.Success(c, preview)
}

// SavePreview handles POST /api/v1/courses/:courseId/extract/:previewId/save
func (h *ExtractionHandler) SavePreview(c *fiber.Ctx) error {
	courseID, err := query.ID(c, "courseId")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}
	previewID := c.Params("previewId")

	var req SaveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	modules, err := h.service.Save(c.UserContext(), courseID, previewID, req.Modules)
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}
	return response.Created(c, modules)
}
