package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"contractview/internal/render"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), time.Hour)
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, s
}

func TestNewRedisStore(t *testing.T) {
	store, _ := setupTestRedis(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNewRedisStoreBadURL(t *testing.T) {
	if _, err := NewRedisStore("not a url", time.Hour); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestValuesOfUnknownSessionIsEmpty(t *testing.T) {
	store, _ := setupTestRedis(t)

	values, err := store.Values(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected empty table, got %v", values)
	}
}

func TestSetValueAndResolve(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	if err := store.SetValue(ctx, "sess-1", "party", "ACME Ltd"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := store.SetValue(ctx, "sess-1", "blank", ""); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	values, err := store.Values(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if got := render.Resolve("party", "default", values); got != "ACME Ltd" {
		t.Errorf("expected override, got %q", got)
	}
	if got := render.Resolve("blank", "default", values); got != "" {
		t.Errorf("expected empty override to win over default, got %q", got)
	}
	if got := render.Resolve("other", "default", values); got != "default" {
		t.Errorf("expected default, got %q", got)
	}

	if ttl := s.TTL("mentions:sess-1"); ttl != time.Hour {
		t.Errorf("expected ttl refreshed to 1h, got %s", ttl)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	_ = store.SetValue(ctx, "a", "party", "Alpha")
	_ = store.SetValue(ctx, "b", "party", "Beta")

	a, _ := store.Values(ctx, "a")
	b, _ := store.Values(ctx, "b")
	if a["party"] != "Alpha" || b["party"] != "Beta" {
		t.Fatalf("sessions leaked into each other: a=%v b=%v", a, b)
	}
}

func TestDeleteValueAndClear(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	_ = store.SetValue(ctx, "sess", "x", "1")
	_ = store.SetValue(ctx, "sess", "y", "2")

	if err := store.DeleteValue(ctx, "sess", "x"); err != nil {
		t.Fatalf("DeleteValue failed: %v", err)
	}
	values, _ := store.Values(ctx, "sess")
	if _, ok := values["x"]; ok {
		t.Fatalf("expected x to be removed, got %v", values)
	}

	if err := store.Clear(ctx, "sess"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if s.Exists("mentions:sess") {
		t.Fatal("expected session hash to be deleted")
	}
}

func TestExpiredSessionFallsBackToDefaults(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	_ = store.SetValue(ctx, "sess", "x", "1")
	s.FastForward(2 * time.Hour)

	values, err := store.Values(ctx, "sess")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected expired table to be empty, got %v", values)
	}
}

func TestInvalidSessionIDs(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	for _, id := range []string{"", "has space", "a:b", "star*"} {
		if _, err := store.Values(ctx, id); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Values(%q): expected ErrInvalidSessionID, got %v", id, err)
		}
		if err := store.SetValue(ctx, id, "x", "1"); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("SetValue(%q): expected ErrInvalidSessionID, got %v", id, err)
		}
	}
	if err := store.SetValue(ctx, "ok", "", "1"); err == nil {
		t.Error("expected error for empty mention id")
	}
}
