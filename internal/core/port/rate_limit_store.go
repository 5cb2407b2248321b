package port

import (
	"context"
	"time"
)

// RateLimitStore maintains fixed-window counters. Increment must be atomic
// with window creation: the first hit in a window creates the counter with
// the window TTL, later hits only increment. Read-modify-write from the
// caller side is not acceptable.
type RateLimitStore interface {
	// IncrementAndTTL bumps the counter for key, creating it with the window
	// TTL when absent, and returns the post-increment count together with the
	// remaining window duration.
	IncrementAndTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
