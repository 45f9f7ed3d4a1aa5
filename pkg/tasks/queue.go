package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/redis"
)

// Queue pushes task envelopes onto a Redis list.
type Queue struct {
	store redis.ListStore
	name  string
	now   func() time.Time
}

func NewQueue(store redis.ListStore, name string) (*Queue, error) {
	if store == nil {
		return nil, errors.New("list store is required")
	}
	if name == "" {
		return nil, errors.New("queue name is required")
	}
	return &Queue{store: store, name: name, now: time.Now}, nil
}

// Enqueue wraps args in a new envelope and LPUSHes it.
func (q *Queue) Enqueue(ctx context.Context, name string, args ...any) error {
	env, err := NewEnvelope(name, q.now(), args...)
	if err != nil {
		return err
	}
	return q.push(ctx, q.store.QueueKey(q.name), env)
}

// Depth reports how many envelopes wait on the queue.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	return q.store.LLen(ctx, q.store.QueueKey(q.name))
}

func (q *Queue) push(ctx context.Context, key string, env Envelope) error {
	raw, err := env.encode()
	if err != nil {
		return err
	}
	return q.store.LPush(ctx, key, raw)
}
