package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/edu-platform/backend/internal/cache"
)

// ErrSessionNotFound is returned when a bearer token resolves to no
// active server session.
var ErrSessionNotFound = errors.New("session not found or expired")

const sessionKeyPrefix = "session:"

// TokenStore issues opaque server session tokens mapping to identities.
// Tokens live in Redis with a TTL; revocation deletes the mapping.
type TokenStore struct {
	cache cache.CacheService
	ttl   time.Duration
}

func NewTokenStore(cacheService cache.CacheService, ttl time.Duration) *TokenStore {
	return &TokenStore{cache: cacheService, ttl: ttl}
}

func (s *TokenStore) Issue(ctx context.Context, identity *Identity) (string, error) {
	token := uuid.NewString()
	if err := s.cache.Set(ctx, sessionKeyPrefix+token, identity, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (s *TokenStore) Resolve(ctx context.Context, token string) (*Identity, error) {
	var identity Identity
	if err := s.cache.Get(ctx, sessionKeyPrefix+token, &identity); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &identity, nil
}

func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+token)
}
