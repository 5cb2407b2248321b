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
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository"
)

// SocialLoginResult distinguishes the two callback outcomes: an existing
// account gets tokens immediately, a first-time visitor gets a temp key for
// the signup-completion step.
type SocialLoginResult struct {
	Tokens  *domain.TokenPair
	User    *domain.User
	TempKey string
}

// NewUser reports whether the caller must complete signup with the temp key.
func (r SocialLoginResult) NewUser() bool {
	return r.TempKey != ""
}

// SocialService handles OAuth2 social login: provider payload parsing,
// existing-account matching, and deferred signup for first-time users.
type SocialService struct {
	users  port.UserRepository
	temp   port.OAuthTempStore
	tokens *TokenService
	audit  port.AuditPublisher
	logger *zap.Logger
}

// NewSocialService constructs the social login flow.
func NewSocialService(
	users port.UserRepository,
	temp port.OAuthTempStore,
	tokens *TokenService,
	audit port.AuditPublisher,
	log *zap.Logger,
) *SocialService {
	if log == nil {
		log = zap.NewNop()
	}

	return &SocialService{
		users:  users,
		temp:   temp,
		tokens: tokens,
		audit:  audit,
		logger: log,
	}
}

// ParseUserInfo normalizes a provider's user-info payload. Only Google is
// wired today; Naver and Kakao return ErrProviderNotSupported until their
// console registrations land.
func ParseUserInfo(provider domain.OAuthProvider, payload map[string]any) (*domain.OAuthUserInfo, error) {
	switch provider {
	case domain.ProviderGoogle:
		return parseGoogleUserInfo(payload)
	case domain.ProviderNaver, domain.ProviderKakao:
		return nil, ErrProviderNotSupported
	default:
		return nil, ErrProviderNotSupported
	}
}

func parseGoogleUserInfo(payload map[string]any) (*domain.OAuthUserInfo, error) {
	info := &domain.OAuthUserInfo{
		Provider: domain.ProviderGoogle,
		SocialID: stringField(payload, "sub"),
		Email:    stringField(payload, "email"),
		Name:     stringField(payload, "name"),
	}
	if !info.Valid() {
		return nil, fmt.Errorf("google userinfo payload missing sub or email")
	}
	return info, nil
}

func stringField(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

// HandleCallback matches the provider identity against existing accounts.
// A match issues a token pair; a miss stashes the info and returns a temp key
// the client presents to CompleteSignup.
func (s *SocialService) HandleCallback(ctx context.Context, info domain.OAuthUserInfo, clientIP string) (*SocialLoginResult, error) {
	if !info.Valid() {
		return nil, fmt.Errorf("incomplete provider user info")
	}

	user, err := s.users.GetByEmail(ctx, info.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup user: %w", err)
		}

		tempKey, err := s.temp.Store(ctx, info)
		if err != nil {
			return nil, fmt.Errorf("stash provider info: %w", err)
		}

		s.logger.Info("social signup pending",
			zap.String("provider", string(info.Provider)),
			zap.String("email", logger.MaskEmail(info.Email)),
		)

		return &SocialLoginResult{TempKey: tempKey}, nil
	}

	pair, err := s.issuePair(ctx, *user, clientIP)
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, domain.AuditEvent{
		Type:     domain.AuditLoginSucceeded,
		UserID:   user.ID,
		Email:    logger.MaskEmail(user.Email),
		ClientIP: logger.MaskIP(clientIP),
		Detail:   string(info.Provider),
	})

	return &SocialLoginResult{Tokens: pair, User: user}, nil
}

// CompleteSignup consumes the temp key, creates the social account, and logs
// the new user in. The temp record is deleted up front so a key is never
// redeemable twice.
func (s *SocialService) CompleteSignup(ctx context.Context, tempKey, name, phone, clientIP string) (*SocialLoginResult, error) {
	info, err := s.temp.Retrieve(ctx, tempKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTempInfoNotFound
		}
		return nil, fmt.Errorf("retrieve provider info: %w", err)
	}

	if deleted, err := s.temp.Delete(ctx, tempKey); err != nil {
		return nil, fmt.Errorf("consume temp key: %w", err)
	} else if !deleted {
		// A concurrent completion already consumed the key.
		return nil, ErrTempInfoNotFound
	}

	if name == "" {
		name = info.Name
	}

	user, err := s.users.Create(ctx,
		domain.User{
			Name:  name,
			Email: info.Email,
			Phone: phone,
			Role:  domain.UserRoleUser,
		},
		domain.UserAuth{
			AuthType: authTypeFor(info.Provider),
			SocialID: info.SocialID,
			Verified: true,
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create social user: %w", err)
	}

	pair, err := s.issuePair(ctx, *user, clientIP)
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, domain.AuditEvent{
		Type:     domain.AuditSignupCompleted,
		UserID:   user.ID,
		Email:    logger.MaskEmail(user.Email),
		ClientIP: logger.MaskIP(clientIP),
		Detail:   string(info.Provider),
	})

	s.logger.Info("social signup completed",
		zap.String("provider", string(info.Provider)),
		zap.String("user_id", logger.MaskUserID(user.ID)),
	)

	return &SocialLoginResult{Tokens: pair, User: user}, nil
}

func (s *SocialService) issuePair(ctx context.Context, user domain.User, clientIP string) (*domain.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := s.tokens.CreateRefreshToken(ctx, user, clientIP)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func authTypeFor(provider domain.OAuthProvider) domain.AuthType {
	switch provider {
	case domain.ProviderGoogle:
		return domain.AuthTypeGoogle
	case domain.ProviderNaver:
		return domain.AuthTypeNaver
	case domain.ProviderKakao:
		return domain.AuthTypeKakao
	default:
		return domain.AuthType(provider)
	}
}

func (s *SocialService) publishAudit(ctx context.Context, event domain.AuditEvent) {
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
