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

const verificationCodeLength = 6

// SignupInput is the payload for local account creation.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Code     string
	ClientIP string
}

// RegistrationService owns verification-code issuance and local signup.
type RegistrationService struct {
	users      port.UserRepository
	codes      port.VerificationStore
	notifier   port.Notifier
	rateLimits *RateLimitService
	audit      port.AuditPublisher
	logger     *zap.Logger

	codeTTL time.Duration
}

// NewRegistrationService constructs the registration flow.
func NewRegistrationService(
	users port.UserRepository,
	codes port.VerificationStore,
	notifier port.Notifier,
	rateLimits *RateLimitService,
	audit port.AuditPublisher,
	log *zap.Logger,
	codeTTL time.Duration,
) *RegistrationService {
	if log == nil {
		log = zap.NewNop()
	}
	if codeTTL <= 0 {
		codeTTL = 5 * time.Minute
	}

	return &RegistrationService{
		users:      users,
		codes:      codes,
		notifier:   notifier,
		rateLimits: rateLimits,
		audit:      audit,
		logger:     log,
		codeTTL:    codeTTL,
	}
}

// IssueVerificationCode generates a fresh code for the email and hands it to
// the notifier. Re-issuing overwrites any previous code, so only the latest
// one verifies.
func (s *RegistrationService) IssueVerificationCode(ctx context.Context, email, clientIP string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if s.rateLimits != nil {
		if err := s.rateLimits.CheckAndConsume(ctx, ActionEmailSend, clientIP); err != nil {
			return err
		}
	}

	code, err := security.GenerateNumericCode(verificationCodeLength)
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}

	if err := s.codes.Save(ctx, email, code, s.codeTTL); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	if err := s.notifier.SendVerificationCode(ctx, email, code); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}

	s.logger.Info("verification code issued",
		zap.String("email", logger.MaskEmail(email)),
	)

	return nil
}

// Signup creates a local account after checking the rate limits, email
// uniqueness, verification code, and password strength. The duplicate-email
// check runs before the code comparison so a taken address is reported even
// when the code is wrong; the code comparison itself is constant-time.
func (s *RegistrationService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	if s.rateLimits != nil {
		if err := s.rateLimits.CheckAndConsume(ctx, ActionSignup, in.ClientIP); err != nil {
			return nil, err
		}
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrDuplicateEmail
	}

	if s.rateLimits != nil {
		// Keyed by email: each address gets its own budget of code guesses.
		if err := s.rateLimits.CheckAndConsume(ctx, ActionEmailVerify, email); err != nil {
			return nil, err
		}
	}

	stored, err := s.codes.Find(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVerificationCodeExpired
		}
		return nil, fmt.Errorf("find verification code: %w", err)
	}

	if !security.ConstantTimeEquals(stored, in.Code) {
		return nil, ErrVerificationCodeMismatch
	}

	if err := security.CheckPasswordStrength(in.Password, email, in.Name); err != nil {
		return nil, ErrPasswordTooWeak
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx,
		domain.User{
			Name:  strings.TrimSpace(in.Name),
			Email: email,
			Phone: strings.TrimSpace(in.Phone),
			Role:  domain.UserRoleUser,
		},
		domain.UserAuth{
			AuthType:     domain.AuthTypeLocal,
			PasswordHash: hash,
			Verified:     true,
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the race against a concurrent signup for the same email.
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.codes.Delete(ctx, email); err != nil {
		s.logger.Warn("failed to delete consumed verification code", zap.Error(err))
	}

	s.publishAudit(ctx, domain.AuditEvent{
		Type:     domain.AuditSignupCompleted,
		UserID:   user.ID,
		Email:    logger.MaskEmail(user.Email),
		ClientIP: logger.MaskIP(in.ClientIP),
	})

	s.logger.Info("signup completed",
		zap.String("user_id", logger.MaskUserID(user.ID)),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	return user, nil
}

func (s *RegistrationService) publishAudit(ctx context.Context, event domain.AuditEvent) {
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

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
