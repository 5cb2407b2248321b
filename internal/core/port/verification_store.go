package port

import (
	"context"
	"time"
)

// VerificationStore keeps short-lived email verification codes. Backends are
// selected at construction time (Redis in production, in-memory fallback);
// callers never branch on which one is active.
type VerificationStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Find returns repository.ErrNotFound for unknown or expired codes.
	Find(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}
