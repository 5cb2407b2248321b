package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	userTokensKeyPrefix   = "user_tokens:"
)

// RefreshTokenRepository persists refresh-token records and the per-user
// token index in Redis. A record under refresh_token:<hash> maps to the
// owning user id; user_tokens:<userId> is a set of the user's live hashes.
// Both carry the refresh validity TTL.
type RefreshTokenRepository struct {
	client *red.Client
}

// NewRefreshTokenRepository wires a Redis client into a refresh token store.
func NewRefreshTokenRepository(client *red.Client) *RefreshTokenRepository {
	return &RefreshTokenRepository{client: client}
}

// Save stores the hash -> userID mapping and registers the hash in the user's
// token index, both expiring with the supplied TTL.
func (r *RefreshTokenRepository) Save(ctx context.Context, tokenHash string, userID int64, ttl time.Duration) error {
	tokenHash = strings.TrimSpace(tokenHash)
	switch {
	case tokenHash == "":
		return errors.New("token hash must not be empty")
	case userID <= 0:
		return errors.New("user id must be positive")
	case ttl <= 0:
		return errors.New("ttl must be positive")
	}

	tokenKey := refreshTokenKeyPrefix + tokenHash
	userKey := userTokensKey(userID)

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, tokenKey, strconv.FormatInt(userID, 10), ttl)
	pipe.SAdd(ctx, userKey, tokenHash)
	pipe.Expire(ctx, userKey, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save refresh token: %w", err)
	}

	return nil
}

// Exists reports whether the hash still maps to a live record.
func (r *RefreshTokenRepository) Exists(ctx context.Context, tokenHash string) (bool, error) {
	tokenHash = strings.TrimSpace(tokenHash)
	if tokenHash == "" {
		return false, errors.New("token hash must not be empty")
	}

	n, err := r.client.Exists(ctx, refreshTokenKeyPrefix+tokenHash).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists refresh token: %w", err)
	}

	return n > 0, nil
}

// Delete removes the record and its index membership. The atomic DEL on the
// record key is the single-use gate for rotation: of two concurrent deletes
// exactly one observes the key present.
func (r *RefreshTokenRepository) Delete(ctx context.Context, tokenHash string) error {
	tokenHash = strings.TrimSpace(tokenHash)
	if tokenHash == "" {
		return errors.New("token hash must not be empty")
	}

	tokenKey := refreshTokenKeyPrefix + tokenHash

	userIDRaw, err := r.client.Get(ctx, tokenKey).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("redis get refresh token owner: %w", err)
	}

	deleted, err := r.client.Del(ctx, tokenKey).Result()
	if err != nil {
		return fmt.Errorf("redis delete refresh token: %w", err)
	}
	if deleted == 0 {
		return repository.ErrNotFound
	}

	if userID, convErr := strconv.ParseInt(userIDRaw, 10, 64); convErr == nil {
		if err := r.client.SRem(ctx, userTokensKey(userID), tokenHash).Err(); err != nil {
			return fmt.Errorf("redis remove token from user index: %w", err)
		}
	}

	return nil
}

// DeleteAllForUser drains the user's token index and removes every referenced
// record plus the index itself. Returns the number of records deleted.
func (r *RefreshTokenRepository) DeleteAllForUser(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, errors.New("user id must be positive")
	}

	userKey := userTokensKey(userID)

	hashes, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis list user tokens: %w", err)
	}

	removed := 0
	for _, hash := range hashes {
		deleted, err := r.client.Del(ctx, refreshTokenKeyPrefix+hash).Result()
		if err != nil {
			return removed, fmt.Errorf("redis delete refresh token: %w", err)
		}
		removed += int(deleted)
	}

	if err := r.client.Del(ctx, userKey).Err(); err != nil {
		return removed, fmt.Errorf("redis delete user token index: %w", err)
	}

	return removed, nil
}

func userTokensKey(userID int64) string {
	return userTokensKeyPrefix + strconv.FormatInt(userID, 10)
}

var _ port.RefreshTokenStore = (*RefreshTokenRepository)(nil)
