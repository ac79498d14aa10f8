package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/minwonhaeso/esc-server/internal/observability"
)

var ErrSessionEntryNotFound = errors.New("session store entry not found")

const (
	refreshTokenKeyPrefix      = "refresh_token:"
	logoutAccessTokenKeyPrefix = "logout_access_token:"
)

// SideStore is a key-value store whose entries expire on their own.
type SideStore interface {
	Save(ctx context.Context, key, value string, ttl time.Duration) error
	Find(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type RefreshTokenStore interface {
	Save(ctx context.Context, email, token string, ttl time.Duration) error
	Find(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

type LogoutAccessTokenStore interface {
	Save(ctx context.Context, accessToken, email string, ttl time.Duration) error
	Exists(ctx context.Context, accessToken string) (bool, error)
}

type sideStoreRefreshTokens struct{ store SideStore }

func NewRefreshTokenStore(store SideStore) RefreshTokenStore {
	return &sideStoreRefreshTokens{store: store}
}

func (s *sideStoreRefreshTokens) Save(ctx context.Context, email, token string, ttl time.Duration) error {
	err := s.store.Save(ctx, refreshTokenKeyPrefix+email, token, ttl)
	recordSessionStore(ctx, "refresh_token", "save", err)
	return err
}

func (s *sideStoreRefreshTokens) Find(ctx context.Context, email string) (string, error) {
	token, err := s.store.Find(ctx, refreshTokenKeyPrefix+email)
	recordSessionStore(ctx, "refresh_token", "find", err)
	return token, err
}

func (s *sideStoreRefreshTokens) Delete(ctx context.Context, email string) error {
	err := s.store.Delete(ctx, refreshTokenKeyPrefix+email)
	recordSessionStore(ctx, "refresh_token", "delete", err)
	return err
}

type sideStoreLogoutTokens struct{ store SideStore }

func NewLogoutAccessTokenStore(store SideStore) LogoutAccessTokenStore {
	return &sideStoreLogoutTokens{store: store}
}

func (s *sideStoreLogoutTokens) Save(ctx context.Context, accessToken, email string, ttl time.Duration) error {
	err := s.store.Save(ctx, logoutAccessTokenKey(accessToken), email, ttl)
	recordSessionStore(ctx, "logout_access_token", "save", err)
	return err
}

func (s *sideStoreLogoutTokens) Exists(ctx context.Context, accessToken string) (bool, error) {
	_, err := s.store.Find(ctx, logoutAccessTokenKey(accessToken))
	recordSessionStore(ctx, "logout_access_token", "find", err)
	if errors.Is(err, ErrSessionEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func logoutAccessTokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return logoutAccessTokenKeyPrefix + hex.EncodeToString(sum[:])
}

func recordSessionStore(ctx context.Context, store, op string, err error) {
	outcome := "success"
	switch {
	case errors.Is(err, ErrSessionEntryNotFound):
		outcome = "miss"
	case err != nil:
		outcome = "error"
	}
	observability.RecordSessionStoreOperation(ctx, store, op, outcome)
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemorySideStore expires entries lazily on read.
type MemorySideStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySideStore() *MemorySideStore {
	return &MemorySideStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemorySideStore) Save(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl <= 0 {
		delete(s.entries, key)
		return nil
	}
	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemorySideStore) Find(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return "", ErrSessionEntryNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return "", ErrSessionEntryNotFound
	}
	return entry.value, nil
}

func (s *MemorySideStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
