package course

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/services/objectstore"
	"github.com/dabhanushali/enacton-training/utils/content"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/dabhanushali/enacton-training/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const (
	// MaxModuleFileSize caps uploaded module material
	MaxModuleFileSize = 200 << 20
	fileURLExpiry     = time.Hour
)

// ModuleHandler handles module authoring, viewing and completion
type ModuleHandler struct {
	courses     *services.CourseService
	modules     *services.ModuleService
	enrollments *services.EnrollmentService
	store       *objectstore.Store
	validator   *validation.Validator
}

// NewModuleHandler creates a module handler. store may be nil when object
// storage is not configured; uploads then answer 503.
func NewModuleHandler(courses *services.CourseService, modules *services.ModuleService, enrollments *services.EnrollmentService, store *objectstore.Store) *ModuleHandler {
	return &ModuleHandler{
		courses:     courses,
		modules:     modules,
		enrollments: enrollments,
		store:       store,
		validator:   validation.NewValidator(),
	}
}

// LinkRequest is one secondary resource link
type LinkRequest struct {
	Name string `json:"name" validate:"max=255"`
	URL  string `json:"url" validate:"required,url"`
}

// ModuleRequest represents the body for creating or updating a module
type ModuleRequest struct {
	ParentModuleID           *uint         `json:"parent_module_id" validate:"omitempty,min=1"`
	ModuleName               *string       `json:"module_name" validate:"omitempty,notblank,max=255"`
	ModuleDescription        *string       `json:"module_description"`
	ContentType              *string       `json:"content_type" validate:"omitempty,content_type"`
	ContentURL               *string       `json:"content_url"`
	Links                    []LinkRequest `json:"links" validate:"omitempty,dive"`
	TextContent              *string       `json:"text_content"`
	IsRequired               *bool         `json:"is_required"`
	Points                   *int          `json:"points" validate:"omitempty,gte=0"`
	EstimatedDurationMinutes *int          `json:"estimated_duration_minutes" validate:"omitempty,gte=0"`
}

// ReorderRequest lists every top-level module id in the new order
type ReorderRequest struct {
	ModuleIDs []uint `json:"module_ids" validate:"required,min=1,dive,min=1"`
}

func (r ModuleRequest) input() services.ModuleInput {
	in := services.ModuleInput{
		ParentModuleID:           r.ParentModuleID,
		ModuleName:               r.ModuleName,
		ModuleDescription:        r.ModuleDescription,
		ContentType:              r.ContentType,
		ContentURL:               r.ContentURL,
		TextContent:              r.TextContent,
		IsRequired:               r.IsRequired,
		Points:                   r.Points,
		EstimatedDurationMinutes: r.EstimatedDurationMinutes,
	}
	if r.Links != nil {
		in.Links = make([]content.Link, len(r.Links))
		for i, l := range r.Links {
			in.Links[i] = content.Link{Name: l.Name, URL: l.URL}
		}
	}
	return in
}

// ListModules handles GET /api/v1/courses/:courseId/modules
func (h *ModuleHandler) ListModules(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := query.ID(c, "courseId")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}

	// course visibility gates its modules
	if _, err := h.courses.Get(c.UserContext(), sess, courseID); err != nil {
		return handlers.Fail(c, err, "Course")
	}

	modules, err := h.modules.ListByCourse(c.UserContext(), courseID)
	if err != nil {
		return handlers.Fail(c, err, "Modules")
	}
	return response.Success(c, modules)
}

// CreateModule handles POST /api/v1/courses/:courseId/modules
func (h *ModuleHandler) CreateModule(c *fiber.Ctx) error {
	courseID, err := query.ID(c, "courseId")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}

	var req ModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	module, err := h.modules.Create(c.UserContext(), courseID, req.input())
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}
	return response.Created(c, module)
}

// GetModule handles GET /api/v1/modules/:moduleId
func (h *ModuleHandler) GetModule(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "moduleId")
	if err != nil {
		return handlers.Fail(c, err, "Module")
	}

	module, err := h.modules.Get(c.UserContext(), sess, id)
	if err != nil {
		return handlers.Fail(c, err, "Module")
	}
	return response.Success(c, module)
}

// UpdateModule handles PUT /api/v1/modules/:moduleId
func (h *ModuleHandler) UpdateModule(c *fiber.Ctx) error {
	id, err := query.ID(c, "moduleId")
	if err != nil {
		return handlers.Fail(c, err, "Module")
	}

	var req ModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	module, err := h.modules.Update(c.UserContext(), id, req.input())
	if err != nil {
		return handlers.Fail(c, err, "Module")
	}
	return response.SuccessWithMessage(c, "Module updated successfully", module)
}

// DeleteModule handles DELETE /api/v1/modules/:moduleId
func (h *ModuleHandler) DeleteModule(c *fiber.Ctx) error {
	id, err := query.ID(c, "moduleId")
	if err != nil {
		return handlers.Fail(c, err, "Module")
	}

	if err := h.modules.Delete(c.UserContext(), id); err != nil {
		return handlers.Fail(c, err, "Module")
	}
	return response.SuccessWithMessage(c, "Module deleted successfully", nil)
}

// ReorderModules handles PUT /api/v1/courses/:courseId/modules/order
func (h *ModuleHandler) ReorderModules(c *fiber.Ctx) error {
	courseID, err := query.ID(c, "courseId")
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}

	var req ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	modules, err := h.modules.Reorder(c.UserContext(), courseID, req.ModuleIDs)
	if err != nil {
		return handlers.Fail(c, err, "Course")
	}
	return response.SuccessWithMessage(c, "Modules reordered", modules)
}

// ViewModule handles GET /api/v1/modules/:moduleId/view
func (h *ModuleHandler) ViewModule(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "moduleId")
	if err != nil {
		return handlers.Fail(c, err, "Module")
	}

	var resolve func(key string) (string, error)
	if h.store != nil {
		resolve = func(key string) (string, error) {
			return h.store.PresignedURL(key, fileURLExpiry)
		}
	}

	view, err := h.modules.View(c.UserContext(), sess, id, resolve)
	if err != nil {
		return handlers.Fail(c, err, "Module")
	}
	return response.Success(c, view)
}

// CompleteModule handles POST /api/v1/modules/:moduleId/complete
func (h *ModuleHandler) CompleteModule(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "moduleId")
	if err != nil {
		return handlers.Fail(c, err, "Module")
	}

	result, err := h.enrollments.CompleteModule(c.UserContext(), sess, id)
	if err != nil {
		return handlers.Fail(c, err, "Module")
	}
	return response.Success(c, result)
}

// UploadModuleFile handles POST /api/v1/modules/:moduleId/file
func (h *ModuleHandler) UploadModuleFile(c *fiber.Ctx) error {
	if h.store == nil {
		return handlers.Fail(c, objectstore.ErrNotConfigured, "Module")
	}

	id, err := query.ID(c, "moduleId")
	if err != nil {
		return handlers.Fail(c, err, "Module")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A file is required")
	}
	if fileHeader.Size > MaxModuleFileSize {
		return response.BadRequest(c, fmt.Sprintf("File exceeds the %d MB limit", MaxModuleFileSize>>20))
	}

	contentType := objectstore.ContentType(fileHeader.Filename)
	moduleType := moduleContentType(contentType)
	if moduleType == "" {
		return response.BadRequest(c, "Only PDF and video files can be attached to a module")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	ctx := c.UserContext()
	key := objectstore.NewKey(fmt.Sprintf("modules/%d", id), fileHeader.Filename)
	url, err := h.store.Upload(ctx, key, file, contentType)
	if err != nil {
		log.Errorf("[STORAGE] module %d upload failed: %v", id, err)
		return response.InternalServerError(c, "Failed to store file")
	}

	name := validation.SanitizeString(filepath.Base(fileHeader.Filename))
	module, err := h.modules.SetPrimaryFile(ctx, id, key, url, name, moduleType)
	if err != nil {
		if delErr := h.store.Delete(ctx, key); delErr != nil {
			log.Warnf("[STORAGE] orphaned object %s: %v", key, delErr)
		}
		return handlers.Fail(c, err, "Module")
	}
	return response.SuccessWithMessage(c, "File attached", module)
}

func moduleContentType(mime string) model.ContentType {
	switch {
	case mime == "application/pdf":
		return model.ContentTypePDF
	case strings.HasPrefix(mime, "video/"):
		return model.ContentTypeVideo
	}
	return ""
}
