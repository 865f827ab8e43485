package handlers

import (
	"errors"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/services/extraction"
	"github.com/dabhanushali/enacton-training/services/objectstore"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Fail writes the response for a service error. what names the resource in
// not-found and internal error messages, e.g. "Course".
func Fail(c *fiber.Ctx, err error, what string) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return response.ValidationError(c, err)
	case errors.Is(err, query.ErrInvalidID):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, what+" not found")
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "")
	case errors.Is(err, services.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		return response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrDuplicate):
		return response.Conflict(c, what+" already exists")
	case errors.Is(err, services.ErrBadReference), errors.Is(err, database.ErrForeignKey):
		return response.Error(c, fiber.StatusUnprocessableEntity, err.Error(), "BAD_REFERENCE")
	case errors.Is(err, database.ErrNotNull):
		return response.Error(c, fiber.StatusUnprocessableEntity, err.Error(), "MISSING_FIELD")

	case errors.Is(err, extraction.ErrDisabled), errors.Is(err, objectstore.ErrNotConfigured):
		return response.ServiceUnavailable(c, err.Error())
	case errors.Is(err, extraction.ErrRejected):
		return response.BadGateway(c, err.Error())
	case errors.Is(err, extraction.ErrPreviewNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, extraction.ErrEmptyContent),
		errors.Is(err, extraction.ErrUnsupportedSource),
		errors.Is(err, extraction.ErrNothingToSave):
		return response.BadRequest(c, err.Error())
	}

	log.Errorf("[API] %s %s: %v", c.Method(), c.Path(), err)
	return response.InternalServerError(c, "Failed to process "+what)
}
