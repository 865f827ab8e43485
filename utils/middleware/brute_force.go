package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/dabhanushali/enacton-training/utils/cache"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// BruteForceProtection locks out IPs after repeated failed logins. With no
// Redis configured every check passes.
type BruteForceProtection struct {
	redisCache *cache.RedisCache
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(redisCache *cache.RedisCache) *BruteForceProtection {
	return &BruteForceProtection{
		redisCache: redisCache,
	}
}

func attemptKey(ip string) string { return fmt.Sprintf("brute_force:attempts:%s", ip) }
func lockKey(ip string) string    { return fmt.Sprintf("brute_force:lock:%s", ip) }

// LockoutFor returns the lock duration after the given number of failed attempts
func LockoutFor(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}

// CheckAndRecordAttempt middleware rejects requests from locked IPs
func (b *BruteForceProtection) CheckAndRecordAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if b == nil || b.redisCache == nil {
			return c.Next()
		}

		ctx := c.UserContext()
		key := lockKey(c.IP())

		locked, err := b.redisCache.Exists(ctx, key)
		if err != nil {
			// cache outage must not block logins
			log.Warnf("[AUTH] brute force check skipped: %v", err)
			return c.Next()
		}

		if locked {
			ttl, _ := b.redisCache.TTL(ctx, key)
			retryAfter := int(ttl.Seconds())
			if retryAfter < 0 {
				retryAfter = 60
			}

			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
		}

		return c.Next()
	}
}

// RecordFailedAttempt records a failed login and applies progressive lockouts
func (b *BruteForceProtection) RecordFailedAttempt(ctx context.Context, ip, email string) error {
	if b == nil || b.redisCache == nil {
		return nil
	}

	attempts, err := b.redisCache.Increment(ctx, attemptKey(ip))
	if err != nil {
		return nil
	}

	if attempts == 1 {
		b.redisCache.Expire(ctx, attemptKey(ip), 15*time.Minute)
	}

	lockDuration := LockoutFor(attempts)
	if lockDuration == 0 {
		return nil
	}

	log.Warnf("[AUTH] locking %s for %s after %d failed logins (last email %s)", ip, lockDuration, attempts, email)
	return b.redisCache.Set(ctx, lockKey(ip), "locked", lockDuration)
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(ctx context.Context, ip string) error {
	if b == nil || b.redisCache == nil {
		return nil
	}
	return b.redisCache.Delete(ctx, attemptKey(ip), lockKey(ip))
}
