package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/security"
)

// BlacklistService marks access tokens revoked until their natural expiry.
// Lookups fail closed: anything that cannot be positively identified as a
// valid, non-revoked token counts as blacklisted.
type BlacklistService struct {
	codec  *security.TokenCodec
	store  port.BlacklistStore
	logger *zap.Logger
	now    func() time.Time
}

// NewBlacklistService constructs the blacklist manager.
func NewBlacklistService(codec *security.TokenCodec, store port.BlacklistStore, log *zap.Logger) *BlacklistService {
	if log == nil {
		log = zap.NewNop()
	}

	return &BlacklistService{
		codec:  codec,
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *BlacklistService) WithClock(clock func() time.Time) *BlacklistService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// AddAccessToken blacklists the token for exactly its remaining lifetime.
// Already-expired or unverifiable tokens are skipped: expiry alone keeps
// them out, so storing a marker would only waste space.
func (s *BlacklistService) AddAccessToken(ctx context.Context, token string) error {
	claims, err := s.codec.Verify(token)
	if err != nil {
		s.logger.Debug("skipping blacklist for unverifiable token", zap.Error(err))
		return nil
	}
	if claims.Kind != domain.TokenKindAccess {
		s.logger.Debug("skipping blacklist for non-access token")
		return nil
	}

	remaining := claims.RemainingTTL(s.now().UTC())
	if remaining <= 0 {
		return nil
	}

	if err := s.store.Add(ctx, security.HashToken(token), remaining); err != nil {
		return err
	}

	return nil
}

// IsTokenBlacklisted reports whether the token must be rejected. True for
// empty, malformed, expired, or wrong-kind tokens and on store failures;
// false only for a structurally valid, unexpired access token with no
// blacklist marker.
func (s *BlacklistService) IsTokenBlacklisted(ctx context.Context, token string) bool {
	if token == "" {
		return true
	}

	claims, err := s.codec.Verify(token)
	if err != nil || claims.Kind != domain.TokenKindAccess {
		return true
	}

	listed, err := s.store.Contains(ctx, security.HashToken(token))
	if err != nil {
		s.logger.Warn("blacklist lookup failed, failing closed", zap.Error(err))
		return true
	}

	return listed
}
