package port

import (
	"context"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
)

// UserRepository exposes the account lookups and writes the auth core needs.
// Implementations return repository.ErrNotFound for missing rows.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user domain.User, auth domain.UserAuth) (*domain.User, error)
	GetAuthByType(ctx context.Context, userID int64, authType domain.AuthType) (*domain.UserAuth, error)
	TouchAuthLastUsed(ctx context.Context, authID int64) error
}
