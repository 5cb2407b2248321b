package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
)

var (
	// ErrTokenMalformed indicates the token cannot be parsed at all.
	ErrTokenMalformed = errors.New("token: malformed")
	// ErrTokenSignature indicates the MAC did not verify.
	ErrTokenSignature = errors.New("token: bad signature")
	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.New("token: expired")
	// ErrTokenKindUnsupported indicates the kind claim is absent or unknown.
	ErrTokenKindUnsupported = errors.New("token: unsupported kind")
)

type signedClaims struct {
	UserID int64  `json:"userId"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256-signed access and refresh tokens.
// The signing secret is validated once at construction and never mutated.
type TokenCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenCodec constructs a codec after running the hard secret gates.
// Weak-pattern warnings are returned for the caller to log; they do not
// block startup.
func NewTokenCodec(secret, issuer string) (*TokenCodec, []string, error) {
	warnings, err := ValidateSecret(secret)
	if err != nil {
		return nil, nil, err
	}

	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, warnings, nil
}

// WithClock overrides the internal clock, used in tests.
func (c *TokenCodec) WithClock(clock func() time.Time) *TokenCodec {
	if clock != nil {
		c.now = clock
	}
	return c
}

// Issue produces a signed token carrying subject email, user id, kind,
// issued-at, expiry, and a random jti. The jti makes every issuance unique:
// rotation and re-login must never reproduce an earlier token string, or the
// hash-keyed store records would collide.
func (c *TokenCodec) Issue(email string, userID int64, kind domain.TokenKind, ttl time.Duration) (string, error) {
	if email == "" {
		return "", fmt.Errorf("email is required")
	}
	if userID <= 0 {
		return "", fmt.Errorf("user id is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive")
	}
	if kind != domain.TokenKindAccess && kind != domain.TokenKindRefresh {
		return "", ErrTokenKindUnsupported
	}

	now := c.now().UTC()
	claims := signedClaims{
		UserID: userID,
		Kind:   string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks signature integrity and expiry, then decodes the claims.
func (c *TokenCodec) Verify(token string) (*domain.TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMalformed
	}

	claims := &signedClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenSignature
	}

	kind, ok := domain.ParseTokenKind(claims.Kind)
	if !ok {
		return nil, ErrTokenKindUnsupported
	}
	if claims.Subject == "" || claims.UserID <= 0 {
		return nil, ErrTokenMalformed
	}

	result := &domain.TokenClaims{
		TokenID: claims.ID,
		Email:   claims.Subject,
		UserID:  claims.UserID,
		Kind:    kind,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}

	return result, nil
}

// KindOf verifies the token and returns its kind, used to assert that an
// access token is not presented where a refresh token is required and vice
// versa.
func (c *TokenCodec) KindOf(token string) (domain.TokenKind, error) {
	claims, err := c.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Kind, nil
}

// HashToken calculates a SHA-256 hex digest of the raw token string. Only
// hashes are persisted so a compromised store never yields usable tokens.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
