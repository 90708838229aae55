package ratelimit

import (
	"context"
	"time"
)

// CounterStore is the shared substrate for rate limiting: an atomically
// incrementable counter per key with a per-key expiration window. The
// increment must be atomic across concurrent callers; everything else in
// the limiter is derived from that single guarantee.
type CounterStore interface {
	// Increment raises the counter by 1 and returns the new count. The
	// expiration is set only when the returned count is 1, i.e. the key
	// was just created. Later increments must not touch the deadline,
	// otherwise concurrent first-requests keep pushing the window out
	// and it never expires.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)

	// TTL returns the remaining lifetime of the key, or <= 0 when the
	// key is missing or has no deadline.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Reset removes the key entirely.
	Reset(ctx context.Context, key string) error
}
