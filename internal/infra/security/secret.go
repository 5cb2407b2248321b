package security

import (
	"errors"
	"fmt"
)

const minSecretLength = 32

// Placeholder values that ship in sample configs and must never reach
// production.
var knownPlaceholderSecrets = []string{
	"your-super-super-long-and-secure-secret-key-for-jwt-hs256",
	"change-me-change-me-change-me-change-me",
}

// ErrSecretMissing indicates no signing secret was configured.
var ErrSecretMissing = errors.New("jwt secret must be configured")

// ValidateSecret enforces the startup gates on the signing secret. Presence,
// minimum length, and placeholder detection are hard failures; repeated or
// sequential character runs only produce warnings.
func ValidateSecret(secret string) ([]string, error) {
	if secret == "" {
		return nil, ErrSecretMissing
	}
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters, got %d", minSecretLength, len(secret))
	}
	for _, placeholder := range knownPlaceholderSecrets {
		if secret == placeholder {
			return nil, errors.New("default jwt secret detected, configure a unique key")
		}
	}

	var warnings []string
	if hasRepeatedRun(secret, 4) {
		warnings = append(warnings, "jwt secret contains 4+ repeated characters")
	}
	if hasSequentialRun(secret, 4) {
		warnings = append(warnings, "jwt secret contains 4+ sequential characters")
	}

	return warnings, nil
}

func hasRepeatedRun(s string, run int) bool {
	count := 1
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] {
			count++
			if count >= run {
				return true
			}
		} else {
			count = 1
		}
	}
	return false
}

func hasSequentialRun(s string, run int) bool {
	count := 1
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1]+1 {
			count++
			if count >= run {
				return true
			}
		} else {
			count = 1
		}
	}
	return false
}
