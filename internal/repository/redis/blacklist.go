package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
)

const blacklistKeyPrefix = "jwt:blacklist:"

// BlacklistRepository stores presence markers for revoked access-token hashes.
// The TTL handed in must equal the token's remaining lifetime so entries never
// outlive the tokens they blacklist.
type BlacklistRepository struct {
	client *red.Client
}

// NewBlacklistRepository wires a Redis client into a blacklist store.
func NewBlacklistRepository(client *red.Client) *BlacklistRepository {
	return &BlacklistRepository{client: client}
}

// Add marks the token hash revoked until the supplied TTL elapses.
func (r *BlacklistRepository) Add(ctx context.Context, tokenHash string, ttl time.Duration) error {
	tokenHash = strings.TrimSpace(tokenHash)
	if tokenHash == "" {
		return errors.New("token hash must not be empty")
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	if err := r.client.Set(ctx, blacklistKeyPrefix+tokenHash, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set blacklist entry: %w", err)
	}

	return nil
}

// Contains reports whether a presence marker exists for the hash.
func (r *BlacklistRepository) Contains(ctx context.Context, tokenHash string) (bool, error) {
	tokenHash = strings.TrimSpace(tokenHash)
	if tokenHash == "" {
		return false, errors.New("token hash must not be empty")
	}

	n, err := r.client.Exists(ctx, blacklistKeyPrefix+tokenHash).Result()
	if err != nil {
		return false, fmt.Errorf("redis check blacklist entry: %w", err)
	}

	return n > 0, nil
}

var _ port.BlacklistStore = (*BlacklistRepository)(nil)
