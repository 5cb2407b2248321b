package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/security"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/usecase"
)

const testSecret = "k4mX9qL2vT8pR5wZ7nB3cF6hJ1dG0sYe"

type stubBlacklistStore struct {
	entries map[string]time.Duration
}

func (s *stubBlacklistStore) Add(_ context.Context, tokenHash string, ttl time.Duration) error {
	if s.entries == nil {
		s.entries = make(map[string]time.Duration)
	}
	s.entries[tokenHash] = ttl
	return nil
}

func (s *stubBlacklistStore) Contains(_ context.Context, tokenHash string) (bool, error) {
	_, ok := s.entries[tokenHash]
	return ok, nil
}

type authFixture struct {
	codec     *security.TokenCodec
	blacklist *stubBlacklistStore
	engine    *gin.Engine
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	gin.SetMode(gin.TestMode)

	codec, _, err := security.NewTokenCodec(testSecret, "test-issuer")
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	blacklist := &stubBlacklistStore{}
	tokenService := usecase.NewTokenService(codec, nil, nil, nil, nil, nil, time.Hour, 7*24*time.Hour)
	blacklistService := usecase.NewBlacklistService(codec, blacklist, nil)
	auth := usecase.NewAuthService(nil, tokenService, blacklistService, nil, nil, nil)

	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/protected", RequireAuth(auth), func(c *gin.Context) {
		id, ok := GetAuthenticatedUserID(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user id in context"})
			return
		}
		claims := GetAccessTokenClaims(c)
		if claims == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no claims in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id, "email": claims.Email})
	})

	return &authFixture{codec: codec, blacklist: blacklist, engine: engine}
}

func (f *authFixture) request(t *testing.T, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	f.engine.ServeHTTP(w, req)

	return w
}

func (f *authFixture) issue(t *testing.T, kind domain.TokenKind, ttl time.Duration) string {
	t.Helper()

	token, err := f.codec.Issue("user@example.com", 42, kind, ttl)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	return token
}

func TestRequireAuth_ValidToken(t *testing.T) {
	f := newAuthFixture(t)
	token := f.issue(t, domain.TokenKindAccess, time.Hour)

	w := f.request(t, "Bearer "+token)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"user_id":42`) {
		t.Fatalf("expected user id in response, got %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "user@example.com") {
		t.Fatalf("expected claims email in response, got %s", w.Body.String())
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	f := newAuthFixture(t)

	w := f.request(t, "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	f := newAuthFixture(t)
	token := f.issue(t, domain.TokenKindAccess, time.Hour)

	for _, header := range []string{
		"Basic " + token,
		token,
		"Bearer ",
	} {
		w := f.request(t, header)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected status 401, got %d", header, w.Code)
		}
	}
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	f := newAuthFixture(t)

	w := f.request(t, "Bearer not-a-jwt")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestRequireAuth_RefreshTokenRejected(t *testing.T) {
	f := newAuthFixture(t)
	token := f.issue(t, domain.TokenKindRefresh, time.Hour)

	w := f.request(t, "Bearer "+token)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token must not open protected routes, got %d", w.Code)
	}
}

func TestRequireAuth_BlacklistedToken(t *testing.T) {
	f := newAuthFixture(t)
	token := f.issue(t, domain.TokenKindAccess, time.Hour)

	if err := f.blacklist.Add(context.Background(), security.HashToken(token), time.Hour); err != nil {
		t.Fatalf("blacklist add: %v", err)
	}

	w := f.request(t, "Bearer "+token)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("blacklisted token must be rejected, got %d", w.Code)
	}
}

func TestRequireAuth_ErrorCarriesRequestID(t *testing.T) {
	f := newAuthFixture(t)

	w := f.request(t, "")

	if !strings.Contains(w.Body.String(), "request_id") {
		t.Fatalf("expected request_id in error body, got %s", w.Body.String())
	}
}

func TestGetAuthenticatedUserID_Unset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if _, ok := GetAuthenticatedUserID(c); ok {
		t.Fatalf("expected no user id on a bare context")
	}
	if claims := GetAccessTokenClaims(c); claims != nil {
		t.Fatalf("expected no claims on a bare context")
	}
}
