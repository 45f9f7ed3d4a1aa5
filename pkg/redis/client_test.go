package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestListRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.QueueKey("emails")

	if err := client.LPush(ctx, key, "first"); err != nil {
		t.Fatalf("lpush failed: %v", err)
	}
	if err := client.LPush(ctx, key, "second"); err != nil {
		t.Fatalf("lpush failed: %v", err)
	}
	if n, err := client.LLen(ctx, key); err != nil || n != 2 {
		t.Fatalf("expected length 2, got %d (%v)", n, err)
	}

	got, err := client.BRPop(ctx, time.Second, key)
	if err != nil {
		t.Fatalf("brpop failed: %v", err)
	}
	if got != "first" {
		t.Fatalf("expected fifo order, got %q", got)
	}
	if _, err := client.BRPop(ctx, time.Second, key); err != nil {
		t.Fatalf("second brpop failed: %v", err)
	}
	if _, err := client.BRPop(ctx, time.Second, key); !errors.Is(err, ErrNil) {
		t.Fatalf("expected ErrNil on empty list, got %v", err)
	}
}

func TestSetNXAndExists(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.RevokedTokenKey("jti-1")

	ok, err := client.SetNX(ctx, key, "1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first setnx to win, got %v (%v)", ok, err)
	}
	ok, err = client.SetNX(ctx, key, "1", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second setnx to lose, got %v (%v)", ok, err)
	}
	exists, err := client.Exists(ctx, key)
	if err != nil || !exists {
		t.Fatalf("expected key to exist, got %v (%v)", exists, err)
	}
	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if exists, _ := client.Exists(ctx, key); exists {
		t.Fatal("expected key removed")
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := client.BRPop(context.Background(), time.Second, "k"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "catalog:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.RevokedTokenKey("abc"); got != "catalog:revoked:abc" {
		t.Fatalf("unexpected revoked key %s", got)
	}
	if got := client.QueueKey("emails"); got != "catalog:queue:emails" {
		t.Fatalf("unexpected queue key %s", got)
	}
	if got := client.DeadLetterKey("emails"); got != "catalog:queue:emails:dead_letter" {
		t.Fatalf("unexpected dead letter key %s", got)
	}
	if got := client.IdempotencyKey("scope", ""); got != "catalog:idempotency:scope" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 {
		t.Fatalf("unexpected options db=%d pool=%d", opts.DB, opts.PoolSize)
	}
}

type mockCmdable struct {
	data  map[string]string
	lists map[string][]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:  make(map[string]string),
		lists: make(map[string][]string),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) LPush(ctx context.Context, key string, values ...any) *redis.IntCmd {
	for _, v := range values {
		m.lists[key] = append([]string{fmt.Sprint(v)}, m.lists[key]...)
	}
	return redis.NewIntResult(int64(len(m.lists[key])), nil)
}

func (m *mockCmdable) BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	for _, key := range keys {
		list := m.lists[key]
		if len(list) == 0 {
			continue
		}
		last := list[len(list)-1]
		m.lists[key] = list[:len(list)-1]
		return redis.NewStringSliceResult([]string{key, last}, nil)
	}
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func (m *mockCmdable) LLen(ctx context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(int64(len(m.lists[key])), nil)
}
