package domain

import (
	"strings"
	"time"
)

// TokenKind distinguishes access tokens from refresh tokens. The kind is
// embedded as a claim so one kind can never be presented in place of the other.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// ParseTokenKind normalizes a raw claim value into a TokenKind.
func ParseTokenKind(raw string) (TokenKind, bool) {
	switch TokenKind(strings.ToLower(strings.TrimSpace(raw))) {
	case TokenKindAccess:
		return TokenKindAccess, true
	case TokenKindRefresh:
		return TokenKindRefresh, true
	default:
		return "", false
	}
}

// TokenClaims carries the verified contents of a signed token. TokenID is
// unique per issuance, so two tokens minted in the same second still hash to
// distinct store keys.
type TokenClaims struct {
	TokenID   string
	Email     string
	UserID    int64
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RemainingTTL returns how long the token stays valid relative to now.
// Non-positive results mean the token already expired.
func (c TokenClaims) RemainingTTL(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

// TokenPair bundles the credentials returned by login and refresh flows.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
