package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	red "github.com/redis/go-redis/v9"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository"
)

const oauthTempKeyPrefix = "oauth2_temp:"

// OAuthTempRepository stashes provider user info between the OAuth2 callback
// and signup completion. Entries are JSON payloads under oauth2_temp:<uuid>
// and expire automatically.
type OAuthTempRepository struct {
	client *red.Client
	ttl    time.Duration
}

// NewOAuthTempRepository wires a Redis client into a temp-info store.
func NewOAuthTempRepository(client *red.Client, ttl time.Duration) *OAuthTempRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OAuthTempRepository{client: client, ttl: ttl}
}

// Store persists the info under a freshly generated key and returns the key.
func (r *OAuthTempRepository) Store(ctx context.Context, info domain.OAuthUserInfo) (string, error) {
	if !info.Valid() {
		return "", errors.New("oauth user info is incomplete")
	}

	payload, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("marshal oauth temp info: %w", err)
	}

	tempKey := oauthTempKeyPrefix + uuid.NewString()
	if err := r.client.Set(ctx, tempKey, payload, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis store oauth temp info: %w", err)
	}

	return tempKey, nil
}

// Retrieve loads and validates the stashed info.
func (r *OAuthTempRepository) Retrieve(ctx context.Context, tempKey string) (*domain.OAuthUserInfo, error) {
	if !validTempKey(tempKey) {
		return nil, errors.New("invalid temp key format")
	}

	raw, err := r.client.Get(ctx, tempKey).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get oauth temp info: %w", err)
	}

	var info domain.OAuthUserInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("unmarshal oauth temp info: %w", err)
	}
	if !info.Valid() {
		// Stored payload is corrupt; drop it so it cannot be replayed.
		_, _ = r.Delete(ctx, tempKey)
		return nil, repository.ErrNotFound
	}

	return &info, nil
}

// Delete removes the entry, reporting whether it existed.
func (r *OAuthTempRepository) Delete(ctx context.Context, tempKey string) (bool, error) {
	if !validTempKey(tempKey) {
		return false, nil
	}

	deleted, err := r.client.Del(ctx, tempKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis delete oauth temp info: %w", err)
	}

	return deleted > 0, nil
}

func validTempKey(tempKey string) bool {
	return strings.HasPrefix(tempKey, oauthTempKeyPrefix) && len(tempKey) > len(oauthTempKeyPrefix)
}

var _ port.OAuthTempStore = (*OAuthTempRepository)(nil)
