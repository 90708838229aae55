package ratelimit

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"
)

type Config struct {
	MaxRequests  int
	Window       time.Duration
	RequireAuth  bool
	BlockMessage string
}

// DefaultConfig is merged under any per-endpoint overrides.
var DefaultConfig = Config{
	MaxRequests:  50,
	Window:       10 * time.Hour,
	RequireAuth:  true,
	BlockMessage: "Rate limit exceeded. Please try again later.",
}

type Result struct {
	Allowed      bool
	Message      string
	Remaining    int
	RetryAfter   int // seconds until the window resets, 0 when allowed
	Limit        int
	AuthRequired bool
}

// Limiter computes allow/deny decisions per (user, endpoint) on top of a
// CounterStore. Store failures are swallowed and the request allowed
// (fail-open): the store is a best-effort auxiliary, not the source of
// truth. Set Strict to invert that tradeoff per deployment.
type Limiter struct {
	store  CounterStore
	Strict bool
}

func NewLimiter(store CounterStore) *Limiter {
	return &Limiter{store: store}
}

func key(userID uint, endpoint string) string {
	return fmt.Sprintf("ratelimit:%d:%s", userID, endpoint)
}

// Merge fills zero-valued fields from the defaults so call sites only
// spell out what differs.
func (c Config) merged() Config {
	if c.MaxRequests <= 0 {
		c.MaxRequests = DefaultConfig.MaxRequests
	}
	if c.Window <= 0 {
		c.Window = DefaultConfig.Window
	}
	if c.BlockMessage == "" {
		c.BlockMessage = DefaultConfig.BlockMessage
	}
	return c
}

func (l *Limiter) Check(ctx context.Context, userID uint, endpoint string, cfg Config) Result {
	cfg = cfg.merged()

	if cfg.RequireAuth && userID == 0 {
		return Result{
			Allowed:      false,
			AuthRequired: true,
			Message:      "Authentication required. Please authenticate to use this API.",
		}
	}

	// Anonymous and auth not required: allow with full quota. There is
	// no per-IP fallback key.
	if userID == 0 {
		return Result{
			Allowed:   true,
			Remaining: cfg.MaxRequests,
			Limit:     cfg.MaxRequests,
		}
	}

	k := key(userID, endpoint)

	count, err := l.store.Increment(ctx, k, cfg.Window)
	if err != nil {
		return l.failOpen(endpoint, userID, err)
	}

	if count > int64(cfg.MaxRequests) {
		retryAfter := int(math.Ceil(cfg.Window.Seconds()))
		if ttl, err := l.store.TTL(ctx, k); err != nil {
			log.Printf("rate limit ttl lookup failed for %s: %v", k, err)
		} else if ttl > 0 {
			retryAfter = int(math.Ceil(ttl.Seconds()))
		}

		return Result{
			Allowed:    false,
			Message:    cfg.BlockMessage,
			Remaining:  0,
			RetryAfter: retryAfter,
			Limit:      cfg.MaxRequests,
		}
	}

	remaining := cfg.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   true,
		Remaining: remaining,
		Limit:     cfg.MaxRequests,
	}
}

// Reset clears the counter for one (user, endpoint) pair.
func (l *Limiter) Reset(ctx context.Context, userID uint, endpoint string) error {
	return l.store.Reset(ctx, key(userID, endpoint))
}

func (l *Limiter) failOpen(endpoint string, userID uint, err error) Result {
	log.Printf("rate limit check failed for user %d on %s: %v", userID, endpoint, err)
	if l.Strict {
		return Result{
			Allowed: false,
			Message: "Rate limiting unavailable. Please try again later.",
		}
	}
	return Result{
		Allowed: true,
		Message: "Rate limit check failed, allowing request",
	}
}
