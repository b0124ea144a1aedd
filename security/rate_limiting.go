package security

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// FlowRateLimit caps how often one caller may start a purchase or transfer
// attempt. The window is a fixed minute keyed by wallet address when the
// request carries one, falling back to the client IP.
func (r *RateLimiter) FlowRateLimit(maxPerMinute int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := c.Request().Header.Get("X-Wallet-Address")
			if caller == "" {
				caller = c.RealIP()
			}
			key := fmt.Sprintf("ratelimit:flow:%s", caller)

			count, err := r.redis.Incr(c.Request().Context(), key).Result()
			if err != nil {
				// Redis being down should not block purchases.
				return next(c)
			}
			if count == 1 {
				r.redis.Expire(c.Request().Context(), key, time.Minute)
			}
			if count > maxPerMinute {
				return c.JSON(429, map[string]any{
					"status":  false,
					"message": "Too many attempts. Please try again later.",
				})
			}

			return next(c)
		}
	}
}
