package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := New("uid", "office@example.org", true)
	if s.ExpiresAt.Sub(s.CreatedAt) != PersistentTTL {
		t.Errorf("persistent ttl = %v", s.ExpiresAt.Sub(s.CreatedAt))
	}
	if err := store.Create(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, s.ID)
	if err != nil || got == nil || got.UserID != "uid" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if err := store.Revoke(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Get(ctx, s.ID); got != nil {
		t.Error("revoked session still active")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	s := New("uid", "", false)
	_ = store.Create(ctx, s)
	now = now.Add(BrowserTTL + time.Second)
	if got, _ := store.Get(ctx, s.ID); got != nil {
		t.Error("expired session still active")
	}
}

func TestMemoryStoreTokensAreOneTime(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.PutToken(ctx, "tok", "office@example.org", time.Hour)
	v, err := store.TakeToken(ctx, "tok")
	if err != nil || v != "office@example.org" {
		t.Fatalf("TakeToken = %q, %v", v, err)
	}
	if _, err := store.TakeToken(ctx, "tok"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("second take err = %v", err)
	}
}
