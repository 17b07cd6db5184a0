// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/engineer-notes-shop/internal/actor"
	"github.com/caffeinepub/engineer-notes-shop/internal/admin"
	"github.com/caffeinepub/engineer-notes-shop/internal/auth"
	"github.com/caffeinepub/engineer-notes-shop/internal/buildinfo"
	"github.com/caffeinepub/engineer-notes-shop/internal/config"
	"github.com/caffeinepub/engineer-notes-shop/internal/core"
	"github.com/caffeinepub/engineer-notes-shop/internal/deploylog"
	"github.com/caffeinepub/engineer-notes-shop/internal/health"
	"github.com/caffeinepub/engineer-notes-shop/internal/library"
	"github.com/caffeinepub/engineer-notes-shop/internal/middleware"
	"github.com/caffeinepub/engineer-notes-shop/internal/profile"
	"github.com/caffeinepub/engineer-notes-shop/internal/query"
	"github.com/caffeinepub/engineer-notes-shop/internal/server"
	"github.com/caffeinepub/engineer-notes-shop/internal/storefront"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	backend := actor.NewHTTPClient(cfg.Actor)
	logger.Info("backend client initialized",
		"base_url", cfg.Actor.BaseURL,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	cache := query.NewCache(logger)
	store := query.NewStore(
		backend,
		cache,
		query.PoliciesFromConfig(cfg.Cache),
	)

	profileSvc := profile.NewService(store)
	profileHandler := profile.NewHandler(profileSvc)

	storefrontHandler := storefront.NewHandler(store)
	libraryHandler := library.NewHandler(store)
	adminHandler := admin.NewHandler(store, cfg.Upload, logger)
	devtoolsHandler := deploylog.NewHandler()

	buildResolver := buildinfo.NewResolver(cfg.App.BuildVersion)
	buildinfoHandler := buildinfo.NewHandler(
		buildResolver,
		cfg.App.Name,
		cfg.App.Version,
	)

	healthHandler := health.NewHandler(backend, redis)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager)
	optionalAuth := middleware.OptionalAuth(jwtManager)

	router.Route("/v1", func(r chi.Router) {
		buildinfoHandler.RegisterRoutes(r)

		if cfg.App.Environment != "production" {
			auth.NewHandler(jwtManager).RegisterRoutes(r)
			logger.Warn("dev token endpoint enabled",
				"environment", cfg.App.Environment,
			)
		}

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			storefrontHandler.RegisterRoutes(r)
		})

		profileHandler.RegisterRoutes(r, authenticator)
		profileHandler.RegisterAdminRoutes(
			r,
			authenticator,
			middleware.RequireAdmin,
		)
		libraryHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator)
		devtoolsHandler.RegisterRoutes(r, authenticator)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	cache.Clear()

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
