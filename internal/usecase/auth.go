package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/logger"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/security"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository"
)

// LoginResult carries the issued credentials and display fields for the
// authenticated user.
type LoginResult struct {
	Tokens domain.TokenPair
	User   domain.User
}

// AuthService coordinates the login, refresh, and logout flows.
type AuthService struct {
	users      port.UserRepository
	tokens     *TokenService
	blacklist  *BlacklistService
	rateLimits *RateLimitService
	audit      port.AuditPublisher
	logger     *zap.Logger
}

// NewAuthService constructs the auth orchestrator.
func NewAuthService(
	users port.UserRepository,
	tokens *TokenService,
	blacklist *BlacklistService,
	rateLimits *RateLimitService,
	audit port.AuditPublisher,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}

	return &AuthService{
		users:      users,
		tokens:     tokens,
		blacklist:  blacklist,
		rateLimits: rateLimits,
		audit:      audit,
		logger:     log,
	}
}

// Login authenticates a local (email/password) account and issues a token
// pair. Every failure path runs the full bcrypt comparison (against a dummy
// hash when no credential exists) and collapses into ErrInvalidCredentials,
// so neither timing nor the error reveals whether the email is registered.
func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if s.rateLimits != nil {
		if err := s.rateLimits.CheckAndConsume(ctx, ActionLogin, clientIP); err != nil {
			return nil, err
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			security.VerifyPassword(password, security.DummyHash)
			return nil, s.failLogin(ctx, email, clientIP, "user not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	auth, err := s.users.GetAuthByType(ctx, user.ID, domain.AuthTypeLocal)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			security.VerifyPassword(password, security.DummyHash)
			return nil, s.failLogin(ctx, email, clientIP, "no local credential")
		}
		return nil, fmt.Errorf("lookup credential: %w", err)
	}

	if !security.VerifyPassword(password, auth.PasswordHash) {
		return nil, s.failLogin(ctx, email, clientIP, "password mismatch")
	}

	if err := s.users.TouchAuthLastUsed(ctx, auth.ID); err != nil {
		s.logger.Warn("failed to stamp credential last use", zap.Error(err))
	}

	accessToken, err := s.tokens.IssueAccessToken(*user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.tokens.CreateRefreshToken(ctx, *user, clientIP)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	s.publishAudit(ctx, domain.AuditEvent{
		Type:     domain.AuditLoginSucceeded,
		UserID:   user.ID,
		Email:    logger.MaskEmail(user.Email),
		ClientIP: logger.MaskIP(clientIP),
	})

	s.logger.Info("login succeeded",
		zap.String("user_id", logger.MaskUserID(user.ID)),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	return &LoginResult{
		Tokens: domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken},
		User:   *user,
	}, nil
}

// Refresh exchanges a refresh token for a new pair via the rotation path.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, clientIP string) (*domain.TokenPair, error) {
	return s.tokens.Rotate(ctx, refreshToken, clientIP)
}

// Logout blacklists the access token and revokes the refresh token, both
// best effort. Logout is idempotent and never fails visibly: a user holding
// already-dead tokens still deserves a clean exit.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) {
	if accessToken != "" {
		if err := s.blacklist.AddAccessToken(ctx, accessToken); err != nil {
			s.logger.Warn("access token blacklisting failed", zap.Error(err))
		}
	}

	if refreshToken != "" {
		s.tokens.Revoke(ctx, refreshToken)
	}

	s.publishAudit(ctx, domain.AuditEvent{Type: domain.AuditLogout})
}

// ParseAccessToken verifies the token, asserts the access kind, and checks
// the blacklist. Used by the auth middleware on every protected request.
func (s *AuthService) ParseAccessToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := s.tokens.codec.Verify(token)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}
	if claims.Kind != domain.TokenKindAccess {
		return nil, ErrInvalidAccessToken
	}
	if s.blacklist.IsTokenBlacklisted(ctx, token) {
		return nil, ErrInvalidAccessToken
	}

	return claims, nil
}

func (s *AuthService) failLogin(ctx context.Context, email, clientIP, reason string) error {
	s.publishAudit(ctx, domain.AuditEvent{
		Type:     domain.AuditLoginFailed,
		Email:    logger.MaskEmail(email),
		ClientIP: logger.MaskIP(clientIP),
		Detail:   reason,
	})

	s.logger.Warn("login failed",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("client_ip", logger.MaskIP(clientIP)),
	)

	return ErrInvalidCredentials
}

func (s *AuthService) publishAudit(ctx context.Context, event domain.AuditEvent) {
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
