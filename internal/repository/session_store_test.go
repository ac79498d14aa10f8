package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisSideStoreHonoursTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	refresh := NewRefreshTokenStore(NewRedisSideStore(client))
	if err := refresh.Save(ctx, "kim@esc.dev", "rt-1", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := mr.TTL("refresh_token:kim@esc.dev"); got != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", got)
	}
	if err := refresh.Save(ctx, "kim@esc.dev", "rt-2", time.Hour); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := refresh.Find(ctx, "kim@esc.dev")
	if err != nil || got != "rt-2" {
		t.Fatalf("expected last write to win, got %q %v", got, err)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := refresh.Find(ctx, "kim@esc.dev"); !errors.Is(err, ErrSessionEntryNotFound) {
		t.Fatalf("expected expired entry, got %v", err)
	}
}

func TestRedisLogoutAccessTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	denylist := NewLogoutAccessTokenStore(NewRedisSideStore(client))
	if err := denylist.Save(ctx, "access.jwt.value", "kim@esc.dev", 10*time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ok, err := denylist.Exists(ctx, "access.jwt.value"); err != nil || !ok {
		t.Fatalf("expected denylisted token, got %v %v", ok, err)
	}
	if ok, _ := denylist.Exists(ctx, "other.jwt.value"); ok {
		t.Fatal("unexpected denylist hit")
	}
	if mr.Exists("logout_access_token:access.jwt.value") {
		t.Fatal("raw token must not be used as the redis key")
	}

	mr.FastForward(11 * time.Minute)
	if ok, _ := denylist.Exists(ctx, "access.jwt.value"); ok {
		t.Fatal("expected denylist entry to self-expire")
	}

	if err := denylist.Save(ctx, "expired.jwt", "kim@esc.dev", 0); err != nil {
		t.Fatalf("save zero ttl: %v", err)
	}
	if ok, _ := denylist.Exists(ctx, "expired.jwt"); ok {
		t.Fatal("zero ttl must not create an entry")
	}
}

func TestMemorySideStoreLazyExpiry(t *testing.T) {
	store := NewMemorySideStore()
	base := time.Now()
	store.now = func() time.Time { return base }
	ctx := context.Background()

	refresh := NewRefreshTokenStore(store)
	if err := refresh.Save(ctx, "kim@esc.dev", "rt", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, err := refresh.Find(ctx, "kim@esc.dev"); err != nil || got != "rt" {
		t.Fatalf("find: %q %v", got, err)
	}

	store.now = func() time.Time { return base.Add(time.Minute) }
	if _, err := refresh.Find(ctx, "kim@esc.dev"); !errors.Is(err, ErrSessionEntryNotFound) {
		t.Fatalf("expected expiry at the ttl boundary, got %v", err)
	}

	store.now = func() time.Time { return base }
	_ = refresh.Save(ctx, "lee@esc.dev", "rt", time.Minute)
	if err := refresh.Delete(ctx, "lee@esc.dev"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := refresh.Find(ctx, "lee@esc.dev"); !errors.Is(err, ErrSessionEntryNotFound) {
		t.Fatalf("expected deleted entry, got %v", err)
	}
}
