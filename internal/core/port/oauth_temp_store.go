package port

import (
	"context"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
)

// OAuthTempStore stashes provider user info between the OAuth2 callback and
// signup completion. Keys are opaque and single-use.
type OAuthTempStore interface {
	// Store persists the info under a freshly generated key and returns it.
	Store(ctx context.Context, info domain.OAuthUserInfo) (string, error)
	// Retrieve returns repository.ErrNotFound for unknown or expired keys.
	Retrieve(ctx context.Context, tempKey string) (*domain.OAuthUserInfo, error)
	Delete(ctx context.Context, tempKey string) (bool, error)
}
