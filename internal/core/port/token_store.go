package port

import (
	"context"
	"time"
)

// RefreshTokenStore persists refresh-token state keyed by token hash. A live
// record means the token is ACTIVE; deletion or TTL expiry ends the session.
type RefreshTokenStore interface {
	// Save stores hash -> userID with the supplied TTL and adds the hash to
	// the user's token index set.
	Save(ctx context.Context, tokenHash string, userID int64, ttl time.Duration) error
	// Exists reports whether the hash still maps to a live record.
	Exists(ctx context.Context, tokenHash string) (bool, error)
	// Delete removes the record and its index membership. Returns
	// repository.ErrNotFound when the record was already gone, which callers
	// use as the single-use gate during rotation.
	Delete(ctx context.Context, tokenHash string) error
	// DeleteAllForUser drains every record referenced by the user's index set
	// and removes the set itself. Returns the number of records deleted.
	DeleteAllForUser(ctx context.Context, userID int64) (int, error)
}

// BlacklistStore marks access-token hashes as revoked until natural expiry.
type BlacklistStore interface {
	Add(ctx context.Context, tokenHash string, ttl time.Duration) error
	Contains(ctx context.Context, tokenHash string) (bool, error)
}
