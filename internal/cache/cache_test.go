package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryCache_SetGet(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Expected value, got %q", got)
	}
}

func TestInMemoryCache_MissingKey(t *testing.T) {
	c := NewInMemoryCache()

	_, err := c.Get(context.Background(), "absent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewInMemoryCacheWithClock(func() time.Time { return now })
	ctx := context.Background()

	c.Set(ctx, "key", []byte("value"), 30*time.Second)

	now = now.Add(30 * time.Second)
	if _, err := c.Get(ctx, "key"); err != nil {
		t.Errorf("Entry at exactly its TTL must still be served, got %v", err)
	}

	now = now.Add(time.Second)
	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after expiry, got %v", err)
	}
}

func TestInMemoryCache_OverwriteResetsTTL(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewInMemoryCacheWithClock(func() time.Time { return now })
	ctx := context.Background()

	c.Set(ctx, "key", []byte("old"), 10*time.Second)
	now = now.Add(5 * time.Second)
	c.Set(ctx, "key", []byte("new"), 10*time.Second)

	now = now.Add(8 * time.Second)
	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Expected the rewritten entry to survive, got %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Expected last write to win, got %q", got)
	}
}

func TestInMemoryCache_Delete(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "key", []byte("value"), time.Minute)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	type probe struct {
		Status   string `json:"status"`
		Upstream bool   `json:"upstream"`
	}

	c := NewInMemoryCache()
	ctx := context.Background()

	in := probe{Status: "ok", Upstream: true}
	if err := SetJSON(ctx, c, "probe", in, time.Minute); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var out probe
	if err := GetJSON(ctx, c, "probe", &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out != in {
		t.Errorf("Round trip mismatch: %+v != %+v", out, in)
	}

	if err := GetJSON(ctx, c, "missing", &out); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
