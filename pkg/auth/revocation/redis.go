package revocation

import (
	"context"
	"strings"
	"time"

	redisclient "github.com/angelmondragon/catalog-backend/pkg/redis"
)

// minTTL keeps a revocation alive briefly even for tokens already at expiry.
const minTTL = time.Second

type kvStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}

type keyer interface {
	RevokedTokenKey(jti string) string
}

// RedisStore keeps revoked token ids as expiring redis keys.
type RedisStore struct {
	store kvStore
	keyer keyer
}

func NewRedisStore(client *redisclient.Client) *RedisStore {
	return &RedisStore{store: client, keyer: client}
}

func (s *RedisStore) Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, ErrEmptyJTI
	}
	if ttl < minTTL {
		ttl = minTTL
	}
	return s.store.SetNX(ctx, s.keyer.RevokedTokenKey(jti), "1", ttl)
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, ErrEmptyJTI
	}
	return s.store.Exists(ctx, s.keyer.RevokedTokenKey(jti))
}
