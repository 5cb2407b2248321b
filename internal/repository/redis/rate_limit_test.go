package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitRepository_CountsWithinWindow(t *testing.T) {
	t.Helper()

	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client)

	ctx := context.Background()
	window := time.Minute

	for want := int64(1); want <= 3; want++ {
		count, ttl, err := repo.IncrementAndTTL(ctx, "login:10.0.0.1", window)
		if err != nil {
			t.Fatalf("IncrementAndTTL returned error: %v", err)
		}
		if count != want {
			t.Fatalf("expected count %d, got %d", want, count)
		}
		if ttl <= 0 || ttl > window {
			t.Fatalf("expected ttl within (0, %v], got %v", window, ttl)
		}
	}
}

func TestRateLimitRepository_IndependentKeys(t *testing.T) {
	t.Helper()

	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client)

	ctx := context.Background()

	if _, _, err := repo.IncrementAndTTL(ctx, "login:10.0.0.1", time.Minute); err != nil {
		t.Fatalf("IncrementAndTTL returned error: %v", err)
	}

	count, _, err := repo.IncrementAndTTL(ctx, "login:10.0.0.2", time.Minute)
	if err != nil {
		t.Fatalf("IncrementAndTTL returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected fresh counter for distinct key, got %d", count)
	}
}

func TestRateLimitRepository_WindowResets(t *testing.T) {
	t.Helper()

	client, server := newTestRedis(t)
	repo := NewRateLimitRepository(client)

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, _, err := repo.IncrementAndTTL(ctx, "signup:10.0.0.1", time.Minute); err != nil {
			t.Fatalf("IncrementAndTTL returned error: %v", err)
		}
	}

	server.FastForward(2 * time.Minute)

	count, _, err := repo.IncrementAndTTL(ctx, "signup:10.0.0.1", time.Minute)
	if err != nil {
		t.Fatalf("IncrementAndTTL returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected counter reset after window expiry, got %d", count)
	}
}

func TestRateLimitRepository_InvalidInput(t *testing.T) {
	t.Helper()

	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client)

	ctx := context.Background()

	if _, _, err := repo.IncrementAndTTL(ctx, "", time.Minute); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, _, err := repo.IncrementAndTTL(ctx, "login:ip", 0); err == nil {
		t.Fatalf("expected error for non-positive window")
	}
}
