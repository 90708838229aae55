package middleware

import (
	"log"
	"net/http"
	"strconv"

	"github.com/saravanan10393/prompt-playground/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

type rateLimitError struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Remaining  int    `json:"remaining"`
}

// RateLimit gates a route on the limiter's decision. Runs after TokenAuth
// so the identity is already resolved. A panic inside the check fails
// open: rate limiting protects capacity, it must never take the API down.
func RateLimit(limiter *ratelimit.Limiter, cfg ratelimit.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := func() (result ratelimit.Result) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("rate limit middleware panic on %s: %v", c.FullPath(), r)
					result = ratelimit.Result{Allowed: true}
				}
			}()
			return limiter.Check(c.Request.Context(), c.GetUint("user_id"), c.FullPath(), cfg)
		}()

		if result.Allowed {
			c.Next()
			return
		}

		status := http.StatusTooManyRequests
		if result.AuthRequired {
			status = http.StatusUnauthorized
		}

		if result.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(result.RetryAfter))
		}
		if result.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		}

		c.AbortWithStatusJSON(status, rateLimitError{
			Error:      result.Message,
			RetryAfter: result.RetryAfter,
			Limit:      result.Limit,
			Remaining:  result.Remaining,
		})
	}
}
