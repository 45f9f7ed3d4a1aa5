package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
)

const (
	defaultBlockTimeout = 5 * time.Second
	defaultMaxAttempts  = 5
	errorBackoff        = time.Second
)

// Deduper guards against handling the same delivery twice.
type Deduper interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, taskID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, taskID uuid.UUID) error
}

type WorkerParams struct {
	Store        redis.ListStore
	Queue        string
	Consumer     string
	Registry     *Registry
	Deduper      Deduper
	Metrics      *metrics.TaskMetrics
	Logger       *logger.Logger
	MaxAttempts  int
	BlockTimeout time.Duration
}

// Worker pops envelopes from a queue and dispatches them to registered handlers.
type Worker struct {
	store        redis.ListStore
	queue        string
	consumer     string
	registry     *Registry
	deduper      Deduper
	metrics      *metrics.TaskMetrics
	logg         *logger.Logger
	maxAttempts  int
	blockTimeout time.Duration
}

func NewWorker(params WorkerParams) (*Worker, error) {
	if params.Store == nil {
		return nil, errors.New("list store is required")
	}
	if params.Queue == "" {
		return nil, errors.New("queue name is required")
	}
	if params.Registry == nil {
		return nil, errors.New("task registry is required")
	}
	if params.Deduper == nil {
		return nil, errors.New("deduper is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	consumer := params.Consumer
	if consumer == "" {
		consumer = params.Queue + "-worker"
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	blockTimeout := params.BlockTimeout
	if blockTimeout <= 0 {
		blockTimeout = defaultBlockTimeout
	}
	return &Worker{
		store:        params.Store,
		queue:        params.Queue,
		consumer:     consumer,
		registry:     params.Registry,
		deduper:      params.Deduper,
		metrics:      params.Metrics,
		logg:         params.Logger,
		maxAttempts:  maxAttempts,
		blockTimeout: blockTimeout,
	}, nil
}

// Run consumes the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ctx = w.logg.WithFields(ctx, map[string]any{
		"queue":    w.queue,
		"consumer": w.consumer,
	})
	w.logg.Info(ctx, "task worker started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.ProcessNext(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logg.Error(ctx, "task poll failed", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(errorBackoff):
			}
		}
	}
}

// ProcessNext waits for one envelope and handles it. It reports false when the
// block timeout elapsed with nothing to do.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	raw, err := w.store.BRPop(ctx, w.blockTimeout, w.store.QueueKey(w.queue))
	if errors.Is(err, redis.ErrNil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pop task: %w", err)
	}

	env, err := DecodeEnvelope(raw)
	if err != nil {
		w.logg.Error(ctx, "discarding malformed task", err)
		return true, w.store.LPush(ctx, w.store.DeadLetterKey(w.queue), raw)
	}
	return true, w.handle(ctx, env)
}

func (w *Worker) handle(ctx context.Context, env Envelope) error {
	ctx = w.logg.WithFields(ctx, map[string]any{
		"task":    env.Name,
		"task_id": env.ID.String(),
		"attempt": env.Attempt,
	})

	already, err := w.deduper.CheckAndMarkProcessed(ctx, w.consumer, env.ID)
	if err != nil {
		// put it back untouched so the delivery is not lost
		if pushErr := w.push(ctx, w.store.QueueKey(w.queue), env); pushErr != nil {
			return errors.Join(err, pushErr)
		}
		return fmt.Errorf("check task idempotency: %w", err)
	}
	if already {
		w.logg.Info(ctx, "skipping duplicate task delivery")
		return nil
	}

	handler, err := w.registry.Lookup(env.Name)
	if err != nil {
		w.logg.Error(ctx, "no handler for task", err)
		w.metrics.IncDeadLetter(env.Name)
		return w.push(ctx, w.store.DeadLetterKey(w.queue), env)
	}

	start := time.Now()
	runErr := handler(ctx, env)
	w.metrics.ObserveDuration(env.Name, time.Since(start))
	if runErr == nil {
		w.metrics.IncSuccess(env.Name)
		w.logg.Info(ctx, "task completed")
		return nil
	}

	w.metrics.IncFailure(env.Name)
	if env.Attempt >= w.maxAttempts {
		w.logg.Error(ctx, "task exhausted attempts", runErr)
		w.metrics.IncDeadLetter(env.Name)
		return w.push(ctx, w.store.DeadLetterKey(w.queue), env)
	}

	w.logg.Warn(ctx, fmt.Sprintf("task failed, retrying: %v", runErr))
	if err := w.deduper.Delete(ctx, w.consumer, env.ID); err != nil {
		return fmt.Errorf("clear task idempotency: %w", err)
	}
	env.Attempt++
	return w.push(ctx, w.store.QueueKey(w.queue), env)
}

func (w *Worker) push(ctx context.Context, key string, env Envelope) error {
	raw, err := env.encode()
	if err != nil {
		return err
	}
	return w.store.LPush(ctx, key, raw)
}
