package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/config"
)

// Rate-limited actions. Token refresh shares the login policy on purpose:
// an attacker replaying stolen refresh tokens should hit the same wall as
// one guessing passwords.
const (
	ActionEmailSend   = "email_send"
	ActionSignup      = "signup"
	ActionLogin       = "login"
	ActionEmailVerify = "email_verify"
)

// RateLimitService enforces fixed-window admission policies over
// (action, identity) pairs. A store failure fails the request rather than
// silently bypassing the limiter.
type RateLimitService struct {
	store    port.RateLimitStore
	policies map[string]config.RateLimitPolicy
	logger   *zap.Logger
}

// NewRateLimitService binds the configured policies to a counter store.
func NewRateLimitService(store port.RateLimitStore, cfg config.RateLimitSettings, logger *zap.Logger) *RateLimitService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RateLimitService{
		store:  store,
		logger: logger,
		policies: map[string]config.RateLimitPolicy{
			ActionEmailSend:   cfg.EmailSend,
			ActionSignup:      cfg.Signup,
			ActionLogin:       cfg.Login,
			ActionEmailVerify: cfg.EmailVerify,
		},
	}
}

// CheckAndConsume admits or denies one attempt for the (action, identity)
// pair. The first attempt in a window always succeeds; once the
// post-increment count exceeds the limit the call fails with a RateLimitError
// carrying the remaining window as retry-after.
func (s *RateLimitService) CheckAndConsume(ctx context.Context, action, identity string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return fmt.Errorf("identity is required")
	}

	policy, ok := s.policies[action]
	if !ok {
		return fmt.Errorf("unknown rate limit action %q", action)
	}
	if policy.Limit <= 0 || policy.Window <= 0 {
		return nil
	}

	count, ttl, err := s.store.IncrementAndTTL(ctx, action+":"+identity, policy.Window)
	if err != nil {
		// Never degrade to unlimited attempts when the store is unreachable.
		return fmt.Errorf("rate limit store: %w", err)
	}

	if count > int64(policy.Limit) {
		s.logger.Warn("rate limit exceeded",
			zap.String("action", action),
			zap.Int64("count", count),
			zap.Int("limit", policy.Limit),
		)
		return &RateLimitError{Action: action, RetryAfter: ttl}
	}

	return nil
}
