package usecase

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials indicates email or password did not match. All
	// login failures collapse into this one error so callers cannot tell
	// which step failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken indicates the refresh token is expired, revoked,
	// rotated, or malformed; the states are deliberately indistinguishable.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrInvalidAccessToken indicates the access token is malformed, expired,
	// or blacklisted.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrVerificationCodeMismatch indicates the supplied code does not match.
	ErrVerificationCodeMismatch = errors.New("verification code mismatch")
	// ErrVerificationCodeExpired indicates no code is stored for the email.
	ErrVerificationCodeExpired = errors.New("verification code expired or missing")
	// ErrPasswordTooWeak indicates the password failed the strength gate.
	ErrPasswordTooWeak = errors.New("password too weak")
	// ErrProviderNotSupported indicates the OAuth2 provider has no parser.
	ErrProviderNotSupported = errors.New("oauth provider not supported")
	// ErrTempInfoNotFound indicates the OAuth2 temp key is unknown or expired.
	ErrTempInfoNotFound = errors.New("oauth temp info not found")
)

// RateLimitError reports a denied admission with the seconds a caller must
// wait before retrying; handlers surface it as 429 plus a Retry-After header.
type RateLimitError struct {
	Action     string
	RetryAfter time.Duration
}

// Error implements error.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Action, e.RetryAfter)
}

// RetryAfterSeconds returns the wait rounded up to whole seconds, never
// below 1 so clients cannot busy-loop on a zero hint.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
