package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/logger"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/security"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository"
)

// TokenService owns the refresh-token lifecycle: issuance, rotation,
// revocation, and single-session enforcement. A token is ACTIVE exactly while
// its hash has a live store record; rotation and revocation delete the
// record, expiry lets the TTL reap it.
type TokenService struct {
	codec      *security.TokenCodec
	tokens     port.RefreshTokenStore
	users      port.UserRepository
	rateLimits *RateLimitService
	audit      port.AuditPublisher
	logger     *zap.Logger

	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService constructs the refresh-token manager.
func NewTokenService(
	codec *security.TokenCodec,
	tokens port.RefreshTokenStore,
	users port.UserRepository,
	rateLimits *RateLimitService,
	audit port.AuditPublisher,
	log *zap.Logger,
	accessTTL, refreshTTL time.Duration,
) *TokenService {
	if log == nil {
		log = zap.NewNop()
	}
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &TokenService{
		codec:      codec,
		tokens:     tokens,
		users:      users,
		rateLimits: rateLimits,
		audit:      audit,
		logger:     log,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccessToken mints a short-lived access token for the user.
func (s *TokenService) IssueAccessToken(user domain.User) (string, error) {
	return s.codec.Issue(user.Email, user.ID, domain.TokenKindAccess, s.accessTTL)
}

// CreateRefreshToken issues a refresh token for the user and stores its hash.
// All previously active tokens for the user are revoked first: issuing a new
// refresh token is what enforces the single-session policy.
func (s *TokenService) CreateRefreshToken(ctx context.Context, user domain.User, clientIP string) (string, error) {
	if user.ID <= 0 || user.Email == "" {
		return "", fmt.Errorf("user identity is required")
	}

	if _, err := s.RevokeAllUserTokens(ctx, user.ID); err != nil {
		return "", fmt.Errorf("revoke prior sessions: %w", err)
	}

	token, err := s.codec.Issue(user.Email, user.ID, domain.TokenKindRefresh, s.refreshTTL)
	if err != nil {
		return "", fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.tokens.Save(ctx, security.HashToken(token), user.ID, s.refreshTTL); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}

	s.logger.Info("refresh token created",
		zap.String("user_id", logger.MaskUserID(user.ID)),
		zap.String("client_ip", logger.MaskIP(clientIP)),
	)

	return token, nil
}

// Rotate exchanges a valid refresh token for a brand-new access+refresh pair.
// Deleting the old record before storing the new one is the single-use gate:
// of two concurrent rotations with the same token, exactly one finds the
// record and wins; the other observes it gone and fails like any invalid
// token. Rotated, revoked, and expired states all surface as the same
// generic error so callers learn nothing about why.
func (s *TokenService) Rotate(ctx context.Context, oldToken, clientIP string) (*domain.TokenPair, error) {
	if s.rateLimits != nil {
		if err := s.rateLimits.CheckAndConsume(ctx, ActionLogin, clientIP); err != nil {
			return nil, err
		}
	}

	claims, err := s.codec.Verify(oldToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if claims.Kind != domain.TokenKindRefresh {
		return nil, ErrInvalidRefreshToken
	}

	oldHash := security.HashToken(oldToken)
	active, err := s.tokens.Exists(ctx, oldHash)
	if err != nil {
		// Store failure fails closed: an unverifiable token is an invalid one.
		s.logger.Warn("refresh token lookup failed", zap.Error(err))
		return nil, ErrInvalidRefreshToken
	}
	if !active {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.tokens.Delete(ctx, oldHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A concurrent rotation already consumed the token.
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}

	accessToken, err := s.IssueAccessToken(*user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	newRefresh, err := s.codec.Issue(user.Email, user.ID, domain.TokenKindRefresh, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.tokens.Save(ctx, security.HashToken(newRefresh), user.ID, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.publishAudit(ctx, domain.AuditEvent{
		Type:     domain.AuditTokenRotated,
		UserID:   user.ID,
		Email:    logger.MaskEmail(user.Email),
		ClientIP: logger.MaskIP(clientIP),
	})

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

// Revoke deletes the token's record and index membership. Best effort:
// failures are logged, never returned, because callers (logout) must not
// fail on cleanup.
func (s *TokenService) Revoke(ctx context.Context, token string) {
	if token == "" {
		return
	}

	if err := s.tokens.Delete(ctx, security.HashToken(token)); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("refresh token revocation failed", zap.Error(err))
		}
	}
}

// RevokeAllUserTokens deletes every active refresh token for the user,
// used by single-session enforcement and logout-everywhere.
func (s *TokenService) RevokeAllUserTokens(ctx context.Context, userID int64) (int, error) {
	removed, err := s.tokens.DeleteAllForUser(ctx, userID)
	if err != nil {
		return removed, fmt.Errorf("revoke user tokens: %w", err)
	}
	return removed, nil
}

// IsValidRefreshToken reports whether the token verifies, carries the
// refresh kind, and is still ACTIVE in the store. No side effects.
func (s *TokenService) IsValidRefreshToken(ctx context.Context, token string) bool {
	claims, err := s.codec.Verify(token)
	if err != nil || claims.Kind != domain.TokenKindRefresh {
		return false
	}

	active, err := s.tokens.Exists(ctx, security.HashToken(token))
	if err != nil {
		return false
	}
	return active
}

// RefreshTTL exposes the validity window, used by callers surfacing cookie
// max-age.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *TokenService) publishAudit(ctx context.Context, event domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := s.audit.Publish(ctx, event); err != nil {
		s.logger.Warn("audit publish failed", zap.Error(err))
	}
}
