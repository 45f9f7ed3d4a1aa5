package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/redis"
)

// Manager tracks processed task IDs per consumer using Redis SETNX with a TTL.
// Keys follow the `catalog:idempotency:task:processed:<consumer>:<task_id>` pattern.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewManager builds a guard that marks tasks as processed for the given TTL.
func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{
		store: store,
		ttl:   ttl,
	}, nil
}

// CheckAndMarkProcessed returns true if the task has already been processed and
// otherwise marks it as processed with the configured TTL.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer string, taskID uuid.UUID) (bool, error) {
	key, err := m.processedKey(consumer, taskID)
	if err != nil {
		return false, err
	}
	set, err := m.store.SetNX(ctx, key, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Delete clears the processed mark so a retried delivery is handled again.
func (m *Manager) Delete(ctx context.Context, consumer string, taskID uuid.UUID) error {
	key, err := m.processedKey(consumer, taskID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) processedKey(consumer string, taskID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if taskID == uuid.Nil {
		return "", errors.New("task id is required")
	}
	scope := fmt.Sprintf("task:processed:%s", consumer)
	return m.store.IdempotencyKey(scope, taskID.String()), nil
}
