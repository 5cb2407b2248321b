package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/security"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository"
)

const testSecret = "k4mX9qL2vT8pR5wZ7nB3cF6hJ1dG0sYe"

func newTestCodec(t *testing.T) *security.TokenCodec {
	t.Helper()

	codec, _, err := security.NewTokenCodec(testSecret, "drhong-auth")
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	return codec
}

//

type stubUserRepository struct {
	usersByEmail map[string]domain.User
	usersByID    map[int64]domain.User
	authsByUser  map[int64]domain.UserAuth

	created           []domain.User
	touchedAuthIDs    []int64
	duplicateOnCreate bool
	nextID            int64
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{
		usersByEmail: make(map[string]domain.User),
		usersByID:    make(map[int64]domain.User),
		authsByUser:  make(map[int64]domain.UserAuth),
		nextID:       100,
	}
}

func (r *stubUserRepository) addUser(user domain.User, auth domain.UserAuth) {
	r.usersByEmail[user.Email] = user
	r.usersByID[user.ID] = user
	auth.UserID = user.ID
	r.authsByUser[user.ID] = auth
}

func (r *stubUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := r.usersByEmail[email]; ok {
		copy := user
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if user, ok := r.usersByID[id]; ok {
		copy := user
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.usersByEmail[email]
	return ok, nil
}

func (r *stubUserRepository) Create(_ context.Context, user domain.User, auth domain.UserAuth) (*domain.User, error) {
	if r.duplicateOnCreate {
		return nil, repository.ErrDuplicate
	}
	if _, ok := r.usersByEmail[user.Email]; ok {
		return nil, repository.ErrDuplicate
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	r.addUser(user, auth)
	r.created = append(r.created, user)

	copy := user
	return &copy, nil
}

func (r *stubUserRepository) GetAuthByType(_ context.Context, userID int64, authType domain.AuthType) (*domain.UserAuth, error) {
	if auth, ok := r.authsByUser[userID]; ok && auth.AuthType == authType {
		copy := auth
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepository) TouchAuthLastUsed(_ context.Context, authID int64) error {
	r.touchedAuthIDs = append(r.touchedAuthIDs, authID)
	return nil
}

//

// stubRefreshTokenStore is mutex-guarded so rotation race tests can hammer it
// from multiple goroutines; Delete is the atomic single-use gate, exactly as
// the Redis repository implements it.
type stubRefreshTokenStore struct {
	mu      sync.Mutex
	records map[string]int64

	saveErr   error
	existsErr error
	deleteErr error
}

func newStubRefreshTokenStore() *stubRefreshTokenStore {
	return &stubRefreshTokenStore{records: make(map[string]int64)}
}

func (s *stubRefreshTokenStore) Save(_ context.Context, tokenHash string, userID int64, _ time.Duration) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[tokenHash] = userID
	return nil
}

func (s *stubRefreshTokenStore) Exists(_ context.Context, tokenHash string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[tokenHash]
	return ok, nil
}

func (s *stubRefreshTokenStore) Delete(_ context.Context, tokenHash string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[tokenHash]; !ok {
		return repository.ErrNotFound
	}
	delete(s.records, tokenHash)
	return nil
}

func (s *stubRefreshTokenStore) DeleteAllForUser(_ context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for hash, owner := range s.records {
		if owner == userID {
			delete(s.records, hash)
			removed++
		}
	}
	return removed, nil
}

func (s *stubRefreshTokenStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

//

type stubBlacklistStore struct {
	entries map[string]time.Duration

	addErr      error
	containsErr error
}

func newStubBlacklistStore() *stubBlacklistStore {
	return &stubBlacklistStore{entries: make(map[string]time.Duration)}
}

func (s *stubBlacklistStore) Add(_ context.Context, tokenHash string, ttl time.Duration) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.entries[tokenHash] = ttl
	return nil
}

func (s *stubBlacklistStore) Contains(_ context.Context, tokenHash string) (bool, error) {
	if s.containsErr != nil {
		return false, s.containsErr
	}
	_, ok := s.entries[tokenHash]
	return ok, nil
}

//

type stubRateLimitStore struct {
	counts map[string]int64
	ttl    time.Duration
	err    error
}

func newStubRateLimitStore() *stubRateLimitStore {
	return &stubRateLimitStore{counts: make(map[string]int64), ttl: time.Minute}
}

func (s *stubRateLimitStore) IncrementAndTTL(_ context.Context, key string, _ time.Duration) (int64, time.Duration, error) {
	if s.err != nil {
		return 0, 0, s.err
	}
	s.counts[key]++
	return s.counts[key], s.ttl, nil
}

//

type stubVerificationStore struct {
	codes map[string]string

	saveErr error
	findErr error
	deleted []string
}

func newStubVerificationStore() *stubVerificationStore {
	return &stubVerificationStore{codes: make(map[string]string)}
}

func (s *stubVerificationStore) Save(_ context.Context, email, code string, _ time.Duration) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.codes[email] = code
	return nil
}

func (s *stubVerificationStore) Find(_ context.Context, email string) (string, error) {
	if s.findErr != nil {
		return "", s.findErr
	}
	code, ok := s.codes[email]
	if !ok {
		return "", repository.ErrNotFound
	}
	return code, nil
}

func (s *stubVerificationStore) Delete(_ context.Context, email string) error {
	delete(s.codes, email)
	s.deleted = append(s.deleted, email)
	return nil
}

//

type stubOAuthTempStore struct {
	entries map[string]domain.OAuthUserInfo
	nextKey string
}

func newStubOAuthTempStore() *stubOAuthTempStore {
	return &stubOAuthTempStore{
		entries: make(map[string]domain.OAuthUserInfo),
		nextKey: "oauth2_temp:stub-key",
	}
}

func (s *stubOAuthTempStore) Store(_ context.Context, info domain.OAuthUserInfo) (string, error) {
	if !info.Valid() {
		return "", errors.New("oauth user info is incomplete")
	}
	s.entries[s.nextKey] = info
	return s.nextKey, nil
}

func (s *stubOAuthTempStore) Retrieve(_ context.Context, tempKey string) (*domain.OAuthUserInfo, error) {
	info, ok := s.entries[tempKey]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := info
	return &copy, nil
}

func (s *stubOAuthTempStore) Delete(_ context.Context, tempKey string) (bool, error) {
	if _, ok := s.entries[tempKey]; !ok {
		return false, nil
	}
	delete(s.entries, tempKey)
	return true, nil
}

//

type stubAuditPublisher struct {
	events []domain.AuditEvent
	err    error
}

func (p *stubAuditPublisher) Publish(_ context.Context, event domain.AuditEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *stubAuditPublisher) lastEventType() domain.AuditEventType {
	if len(p.events) == 0 {
		return ""
	}
	return p.events[len(p.events)-1].Type
}

//

type stubNotifier struct {
	sent []struct {
		Email string
		Code  string
	}
	err error
}

func (n *stubNotifier) SendVerificationCode(_ context.Context, email, code string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, struct {
		Email string
		Code  string
	}{Email: email, Code: code})
	return nil
}
