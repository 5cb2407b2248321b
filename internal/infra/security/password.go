package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

// DummyHash is a precomputed bcrypt hash compared against when no credential
// record exists, so "user not found" and "wrong password" cost the same.
// It is the hash of an unguessable random value; no input ever matches it.
const DummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

const bcryptCost = 10

// HashPassword derives a bcrypt hash for the provided password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored bcrypt hash.
// The comparison always runs the full KDF; callers on the user-not-found path
// pass DummyHash to keep timing uniform.
func VerifyPassword(password, storedHash string) bool {
	if storedHash == "" {
		storedHash = DummyHash
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

const minPasswordScore = 2

// CheckPasswordStrength rejects passwords zxcvbn scores below the minimum.
// User-supplied identity inputs are fed in so derivatives of them score low.
func CheckPasswordStrength(password string, userInputs ...string) error {
	result := zxcvbn.PasswordStrength(password, userInputs)
	if result.Score < minPasswordScore {
		return fmt.Errorf("password is too weak (score %d of 4)", result.Score)
	}
	return nil
}
