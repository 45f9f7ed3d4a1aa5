package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/mailer"
)

const metricsShutdownTimeout = 5 * time.Second

type pinger interface {
	Ping(context.Context) error
}

type taskRunner interface {
	Run(ctx context.Context) error
}

type backlog interface {
	Depth(ctx context.Context) (int64, error)
}

type ServiceParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	Redis   pinger
	Worker  taskRunner
	Backlog backlog
	Metrics http.Handler
}

type Service struct {
	cfg     *config.Config
	logg    *logger.Logger
	redis   pinger
	worker  taskRunner
	backlog backlog
	metrics *http.Server
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.Worker == nil {
		return nil, errors.New("task worker is required")
	}

	svc := &Service{
		cfg:     params.Config,
		logg:    params.Logger,
		redis:   params.Redis,
		worker:  params.Worker,
		backlog: params.Backlog,
	}
	if params.Metrics != nil && params.Config.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", params.Metrics)
		svc.metrics = &http.Server{
			Addr:              params.Config.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return svc, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "redis", s.redis.Ping); err != nil {
		return err
	}
	s.logg.Info(ctx, "all worker dependencies are ready")

	if s.backlog != nil {
		depth, err := s.backlog.Depth(ctx)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "could not read task backlog")
			return nil
		}
		s.logg.Info(s.logg.WithField(ctx, "pending_tasks", depth), "task backlog at startup")
	}
	return nil
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

// Run serves metrics and consumes the task queue until ctx is cancelled.
func (s *Service) Run(ctx context.Context) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 2)
	if s.metrics != nil {
		go func() {
			s.logg.Info(s.logg.WithField(ctx, "addr", s.metrics.Addr), "serving worker metrics")
			if serveErr := s.metrics.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", serveErr)
			}
		}()
		defer func() {
			err = multierr.Append(err, s.shutdownMetrics())
		}()
	}
	go func() {
		errCh <- s.worker.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		s.logg.Info(ctx, "worker context canceled")
		return ctx.Err()
	case runErr := <-errCh:
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			s.logg.Error(ctx, "task worker stopped unexpectedly", runErr)
		}
		return runErr
	}
}

func (s *Service) shutdownMetrics() error {
	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	return s.metrics.Shutdown(ctx)
}

// logSender stands in for Mailgun when no credentials are configured.
type logSender struct {
	logg *logger.Logger
}

func (l logSender) Send(ctx context.Context, msg mailer.Message) error {
	ctx = l.logg.WithFields(ctx, map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	l.logg.Info(ctx, "mail delivery disabled, message logged only")
	return nil
}
