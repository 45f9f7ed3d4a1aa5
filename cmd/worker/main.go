package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/instance"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/mailer"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
	"github.com/angelmondragon/catalog-backend/pkg/tasks"
	"github.com/angelmondragon/catalog-backend/pkg/tasks/idempotency"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry, err := buildRegistry(cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to register task handlers", err)
		os.Exit(1)
	}

	deduper, err := idempotency.NewManager(redisClient, cfg.Queue.IdempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	worker, err := tasks.NewWorker(tasks.WorkerParams{
		Store:        redisClient,
		Queue:        cfg.Queue.Name,
		Registry:     registry,
		Deduper:      deduper,
		Metrics:      metrics.NewTaskMetrics(promRegistry),
		Logger:       logg,
		MaxAttempts:  cfg.Queue.MaxAttempts,
		BlockTimeout: cfg.Queue.BlockTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create task worker", err)
		os.Exit(1)
	}

	backlog, err := tasks.NewQueue(redisClient, cfg.Queue.Name)
	if err != nil {
		logg.Error(context.Background(), "failed to open task queue", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Config:  cfg,
		Logger:  logg,
		Redis:   redisClient,
		Worker:  worker,
		Backlog: backlog,
		Metrics: promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg.Info(logg.WithFields(ctx, map[string]any{
		"queue":    cfg.Queue.Name,
		"instance": instance.GetID("worker-0"),
	}), "starting worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger) (*tasks.Registry, error) {
	renderer, err := mailer.NewRenderer(cfg.Mail.TemplateDir)
	if err != nil {
		return nil, err
	}

	var sender mailer.Sender = logSender{logg: logg}
	if cfg.Mail.Enabled() {
		client, err := mailer.NewClient(cfg.Mail)
		if err != nil {
			return nil, err
		}
		sender = client
	} else {
		logg.Warn(context.Background(), "mailgun credentials missing, emails will be logged only")
	}

	handler, err := mailer.RegistrationHandler(sender, renderer)
	if err != nil {
		return nil, err
	}
	registry := tasks.NewRegistry()
	registry.Register(tasks.SendUserRegistrationEmail, handler)
	return registry, nil
}
