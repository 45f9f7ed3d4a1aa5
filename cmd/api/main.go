package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/catalog-backend/api/routes"
	"github.com/angelmondragon/catalog-backend/internal/auth"
	"github.com/angelmondragon/catalog-backend/internal/authz"
	"github.com/angelmondragon/catalog-backend/internal/items"
	"github.com/angelmondragon/catalog-backend/internal/mutation"
	"github.com/angelmondragon/catalog-backend/internal/stores"
	"github.com/angelmondragon/catalog-backend/internal/tags"
	"github.com/angelmondragon/catalog-backend/internal/users"
	"github.com/angelmondragon/catalog-backend/pkg/auth/revocation"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/instance"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/migrate"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
	"github.com/angelmondragon/catalog-backend/pkg/security"
	"github.com/angelmondragon/catalog-backend/pkg/tasks"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	revocations, err := revocation.New(cfg.Auth, redisClient)
	if err != nil {
		return err
	}
	queue, err := tasks.NewQueue(redisClient, cfg.Queue.Name)
	if err != nil {
		return err
	}

	policy := authz.PolicyFor(cfg.Auth.Strict)
	orch, err := mutation.New(dbClient, policy, logg)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Users:       users.NewRepository(),
		Runner:      orch,
		Gate:        policy,
		Hasher:      security.NewArgon2Hasher(cfg.Password),
		Revocations: revocations,
		Queue:       queue,
		JWTConfig:   cfg.JWT,
	})
	if err != nil {
		return err
	}
	userService, err := users.NewService(users.NewRepository(), orch)
	if err != nil {
		return err
	}
	storeService, err := stores.NewService(stores.NewRepository(), orch)
	if err != nil {
		return err
	}
	tagService, err := tags.NewService(tags.NewRepository(), orch)
	if err != nil {
		return err
	}
	itemService, err := items.NewService(items.NewRepository(), orch)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID("local"),
		"strict":   cfg.Auth.Strict,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Idempotency: redisClient,
			Auth:        authService,
			Users:       userService,
			Stores:      storeService,
			Tags:        tagService,
			Items:       itemService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-sigCtx.Done():
		logg.Info(ctx, "api server shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
