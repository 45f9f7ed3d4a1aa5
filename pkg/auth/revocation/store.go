// Package revocation tracks token ids (jti) that must no longer be accepted.
// Entries expire with the token they revoke, so the set never outgrows the
// population of live tokens.
package revocation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	redisclient "github.com/angelmondragon/catalog-backend/pkg/redis"
)

var ErrEmptyJTI = errors.New("token id is required")

// Store is the revocation set consulted on every token validation. Revoke reports
// false when the jti was already revoked, which makes it usable as a single-use claim.
type Store interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// New selects the configured backend. The redis client may be nil for the memory backend.
func New(cfg config.AuthConfig, client *redisclient.Client) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.RevocationBackend)) {
	case "", config.RevocationBackendRedis:
		if client == nil {
			return nil, fmt.Errorf("redis client is required for the %s revocation backend", config.RevocationBackendRedis)
		}
		return NewRedisStore(client), nil
	case config.RevocationBackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown revocation backend %q", cfg.RevocationBackend)
	}
}
