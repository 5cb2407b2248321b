package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository"
)

const verificationKeyPrefix = "email_verification:"

// VerificationRepository keeps email verification codes in Redis with a
// short TTL. Expiry is handled entirely by Redis.
type VerificationRepository struct {
	client *red.Client
}

// NewVerificationRepository wires a Redis client into a verification store.
func NewVerificationRepository(client *red.Client) *VerificationRepository {
	return &VerificationRepository{client: client}
}

// Save stores the code for the email, replacing any previous code.
func (r *VerificationRepository) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	email = normalizeEmail(email)
	switch {
	case email == "":
		return errors.New("email must not be empty")
	case strings.TrimSpace(code) == "":
		return errors.New("code must not be empty")
	case ttl <= 0:
		return errors.New("ttl must be positive")
	}

	if err := r.client.Set(ctx, verificationKeyPrefix+email, code, ttl).Err(); err != nil {
		return fmt.Errorf("redis save verification code: %w", err)
	}

	return nil
}

// Find returns the stored code or repository.ErrNotFound.
func (r *VerificationRepository) Find(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", errors.New("email must not be empty")
	}

	code, err := r.client.Get(ctx, verificationKeyPrefix+email).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("redis get verification code: %w", err)
	}

	return code, nil
}

// Delete removes the stored code. Deleting an absent code is not an error.
func (r *VerificationRepository) Delete(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return errors.New("email must not be empty")
	}

	if err := r.client.Del(ctx, verificationKeyPrefix+email).Err(); err != nil {
		return fmt.Errorf("redis delete verification code: %w", err)
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ port.VerificationStore = (*VerificationRepository)(nil)
