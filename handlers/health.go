package handlers

import (
	"context"
	"time"

	"github.com/dabhanushali/enacton-training/utils/cache"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthCheck reports database and Redis reachability. Redis is optional,
// so only a failing database makes the service unhealthy.
func HealthCheck(db *gorm.DB, redisCache *cache.RedisCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		checks := fiber.Map{"database": "ok", "redis": "disabled"}
		status := fiber.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			checks["database"] = err.Error()
			status = fiber.StatusServiceUnavailable
		}

		if redisCache != nil {
			checks["redis"] = "ok"
			if err := redisCache.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
			}
		}

		state := "ok"
		if status != fiber.StatusOK {
			state = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{"status": state, "checks": checks})
	}
}
