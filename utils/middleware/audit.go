package middleware

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// sensitive request fields never written to the audit trail
var redactedFields = []string{"password", "new_password", "current_password"}

// AuditLog records successful privileged mutations. It runs after the
// handler and writes asynchronously so the response is not delayed.
func AuditLog(db *gorm.DB, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil || status >= fiber.StatusBadRequest {
			return err
		}

		sess, ok := GetSession(c)
		if !ok {
			return err
		}

		// fiber reuses the context after return; copy what the goroutine needs
		entry := model.AuditLog{
			ActorID:     sess.ProfileID,
			ActorRole:   sess.Role.String(),
			Action:      action,
			Resource:    resource,
			ResourceID:  auditResourceID(c),
			NewValue:    auditBody(c.Body()),
			StatusCode:  status,
			IPAddress:   c.IP(),
			UserAgent:   utils.CopyString(c.Get(fiber.HeaderUserAgent)),
			Description: utils.CopyString(c.Method() + " " + c.Path()),
		}

		go func() {
			if err := db.WithContext(context.Background()).Create(&entry).Error; err != nil {
				log.Errorf("[AUDIT] failed to record %s on %s/%d: %v", action, resource, entry.ResourceID, err)
			}
		}()

		return err
	}
}

func auditResourceID(c *fiber.Ctx) uint {
	for _, name := range []string{"id", "employeeId", "courseId"} {
		if raw := c.Params(name); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
				return uint(id)
			}
		}
	}
	return 0
}

func auditBody(body []byte) datatypes.JSON {
	if len(body) == 0 {
		return nil
	}
	var values map[string]interface{}
	if err := json.Unmarshal(body, &values); err != nil {
		return nil
	}
	for _, f := range redactedFields {
		if _, ok := values[f]; ok {
			values[f] = "[redacted]"
		}
	}
	out, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(out)
}
