package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository"
)

type entry struct {
	code      string
	expiresAt time.Time
}

// VerificationStore is the in-memory fallback for verification codes, used
// when Redis is not configured. Same contract as the Redis implementation;
// callers never branch on which backend is active.
type VerificationStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewVerificationStore constructs an empty in-memory store.
func NewVerificationStore() *VerificationStore {
	return &VerificationStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *VerificationStore) WithClock(clock func() time.Time) *VerificationStore {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Save stores the code for the email, replacing any previous code.
func (s *VerificationStore) Save(_ context.Context, email, code string, ttl time.Duration) error {
	email = normalize(email)
	switch {
	case email == "":
		return errors.New("email must not be empty")
	case strings.TrimSpace(code) == "":
		return errors.New("code must not be empty")
	case ttl <= 0:
		return errors.New("ttl must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = entry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

// Find returns the stored code or repository.ErrNotFound once expired.
func (s *VerificationStore) Find(_ context.Context, email string) (string, error) {
	email = normalize(email)
	if email == "" {
		return "", errors.New("email must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[email]
	if !ok {
		return "", repository.ErrNotFound
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, email)
		return "", repository.ErrNotFound
	}

	return e.code, nil
}

// Delete removes the stored code. Deleting an absent code is not an error.
func (s *VerificationStore) Delete(_ context.Context, email string) error {
	email = normalize(email)
	if email == "" {
		return errors.New("email must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
	return nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ port.VerificationStore = (*VerificationStore)(nil)
