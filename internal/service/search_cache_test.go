package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestInMemorySearchCacheStoreGetSetInvalidate(t *testing.T) {
	store := NewInMemorySearchCacheStore()
	ctx := context.Background()

	gen, _ := store.Generation(ctx)
	if err := store.Set(ctx, gen, "q=seoul|page=1|size=20", []byte(`{"x":1}`), time.Minute); err != nil {
		t.Fatalf("set cache: %v", err)
	}
	got, ok, err := store.Get(ctx, gen, "q=seoul|page=1|size=20")
	if err != nil {
		t.Fatalf("get cache: %v", err)
	}
	if !ok || string(got) != `{"x":1}` {
		t.Fatalf("expected cache hit, got ok=%v payload=%s", ok, got)
	}

	if err := store.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	next, _ := store.Generation(ctx)
	if next == gen {
		t.Fatal("expected a new generation after invalidation")
	}
	if _, ok, _ := store.Get(ctx, next, "q=seoul|page=1|size=20"); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func TestInMemorySearchCacheStoreDropsFillFromOldGeneration(t *testing.T) {
	store := NewInMemorySearchCacheStore()
	ctx := context.Background()

	old, _ := store.Generation(ctx)
	if err := store.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if err := store.Set(ctx, old, "q=mapo", []byte("stale"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	current, _ := store.Generation(ctx)
	if _, ok, _ := store.Get(ctx, current, "q=mapo"); ok {
		t.Fatal("fill from an old generation must not be visible")
	}
	if _, ok, _ := store.Get(ctx, old, "q=mapo"); ok {
		t.Fatal("fill from an old generation must not be stored")
	}
}

func TestInMemorySearchCacheStoreIgnoresNonPositiveTTL(t *testing.T) {
	store := NewInMemorySearchCacheStore()
	ctx := context.Background()
	if err := store.Set(ctx, 0, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := store.Get(ctx, 0, "k"); ok {
		t.Fatal("zero ttl must not be cached")
	}
}

func TestRedisSearchCacheStoreVersioning(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	store := NewRedisSearchCacheStore(client, "test_search")
	ctx := context.Background()

	gen, err := store.Generation(ctx)
	if err != nil || gen != 0 {
		t.Fatalf("expected generation 0, got %d err=%v", gen, err)
	}
	if err := store.Set(ctx, gen, "q=busan", []byte("page"), 30*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	dataKey := "test_search:v0:" + hashToken("q=busan")
	if !mr.Exists(dataKey) {
		t.Fatalf("expected data key %s", dataKey)
	}
	if ttl := mr.TTL(dataKey); ttl != 30*time.Second {
		t.Fatalf("expected 30s ttl, got %s", ttl)
	}
	if got, ok, err := store.Get(ctx, gen, "q=busan"); err != nil || !ok || string(got) != "page" {
		t.Fatalf("expected hit, got ok=%v payload=%q err=%v", ok, got, err)
	}

	if err := store.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	next, err := store.Generation(ctx)
	if err != nil || next != 1 {
		t.Fatalf("expected generation 1, got %d err=%v", next, err)
	}
	if _, ok, err := store.Get(ctx, next, "q=busan"); err != nil || ok {
		t.Fatalf("expected miss on new version, got ok=%v err=%v", ok, err)
	}

	mr.FastForward(31 * time.Second)
	if mr.Exists(dataKey) {
		t.Fatal("stale version entry should age out")
	}
}

func TestNilRedisSearchCacheStoreIsNoop(t *testing.T) {
	store := NewRedisSearchCacheStore(nil, "")
	ctx := context.Background()
	if err := store.Set(ctx, 0, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, err := store.Get(ctx, 0, "k"); ok || err != nil {
		t.Fatalf("expected noop miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
}
