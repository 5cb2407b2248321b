package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestRefreshTokenRepository_SaveAndExists(t *testing.T) {
	t.Helper()

	client, server := newTestRedis(t)
	repo := NewRefreshTokenRepository(client)

	ctx := context.Background()
	ttl := time.Hour

	if err := repo.Save(ctx, "hash-1", 42, ttl); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	active, err := repo.Exists(ctx, "hash-1")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if !active {
		t.Fatalf("expected saved token to exist")
	}

	remaining := server.TTL("refresh_token:hash-1")
	if remaining <= 0 || remaining > ttl {
		t.Fatalf("expected record ttl within (0, %v], got %v", ttl, remaining)
	}

	indexed, err := server.SIsMember("user_tokens:42", "hash-1")
	if err != nil {
		t.Fatalf("SIsMember returned error: %v", err)
	}
	if !indexed {
		t.Fatalf("expected hash registered in user token index")
	}
}

func TestRefreshTokenRepository_DeleteIsSingleUse(t *testing.T) {
	t.Helper()

	client, server := newTestRedis(t)
	repo := NewRefreshTokenRepository(client)

	ctx := context.Background()

	if err := repo.Save(ctx, "hash-1", 42, time.Hour); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := repo.Delete(ctx, "hash-1"); err != nil {
		t.Fatalf("first Delete returned error: %v", err)
	}

	if err := repo.Delete(ctx, "hash-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	indexed, err := server.SIsMember("user_tokens:42", "hash-1")
	if err != nil && !errors.Is(err, miniredis.ErrKeyNotFound) {
		t.Fatalf("SIsMember returned error: %v", err)
	}
	if indexed {
		t.Fatalf("expected hash removed from user token index")
	}

	active, err := repo.Exists(ctx, "hash-1")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if active {
		t.Fatalf("expected deleted token to be gone")
	}
}

func TestRefreshTokenRepository_DeleteAllForUser(t *testing.T) {
	t.Helper()

	client, _ := newTestRedis(t)
	repo := NewRefreshTokenRepository(client)

	ctx := context.Background()

	for _, hash := range []string{"hash-1", "hash-2", "hash-3"} {
		if err := repo.Save(ctx, hash, 7, time.Hour); err != nil {
			t.Fatalf("Save(%s) returned error: %v", hash, err)
		}
	}
	if err := repo.Save(ctx, "other-hash", 8, time.Hour); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	removed, err := repo.DeleteAllForUser(ctx, 7)
	if err != nil {
		t.Fatalf("DeleteAllForUser returned error: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed tokens, got %d", removed)
	}

	for _, hash := range []string{"hash-1", "hash-2", "hash-3"} {
		active, err := repo.Exists(ctx, hash)
		if err != nil {
			t.Fatalf("Exists returned error: %v", err)
		}
		if active {
			t.Fatalf("expected %s to be deleted", hash)
		}
	}

	// The other user's token must survive.
	active, err := repo.Exists(ctx, "other-hash")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if !active {
		t.Fatalf("expected other user's token to survive")
	}
}

func TestRefreshTokenRepository_ExpiredRecordIsGone(t *testing.T) {
	t.Helper()

	client, server := newTestRedis(t)
	repo := NewRefreshTokenRepository(client)

	ctx := context.Background()

	if err := repo.Save(ctx, "hash-1", 42, time.Minute); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	server.FastForward(2 * time.Minute)

	active, err := repo.Exists(ctx, "hash-1")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if active {
		t.Fatalf("expected expired token to be gone")
	}
}

func TestRefreshTokenRepository_InvalidInput(t *testing.T) {
	t.Helper()

	client, _ := newTestRedis(t)
	repo := NewRefreshTokenRepository(client)

	ctx := context.Background()

	if err := repo.Save(ctx, "", 42, time.Hour); err == nil {
		t.Fatalf("expected error for empty hash")
	}
	if err := repo.Save(ctx, "hash", 0, time.Hour); err == nil {
		t.Fatalf("expected error for non-positive user id")
	}
	if err := repo.Save(ctx, "hash", 42, 0); err == nil {
		t.Fatalf("expected error for non-positive ttl")
	}
	if _, err := repo.Exists(ctx, " "); err == nil {
		t.Fatalf("expected error for blank hash")
	}
}
