// Package main is the entry point for the ELD Logbook API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/eld-logbook/internal/config"
	"github.com/pkordes/eld-logbook/internal/handler"
	"github.com/pkordes/eld-logbook/internal/hos"
	"github.com/pkordes/eld-logbook/internal/middleware"
	"github.com/pkordes/eld-logbook/internal/repo"
	"github.com/pkordes/eld-logbook/internal/routing"
	"github.com/pkordes/eld-logbook/internal/service"
	"github.com/pkordes/eld-logbook/migrations"
	"github.com/pkordes/eld-logbook/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := migrate(ctx, pool); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// --- Routing ----------------------------------------------------------
	routes, closeRoutes, err := newRouteProvider(cfg)
	if err != nil {
		slog.Error("failed to configure routing", "error", err)
		os.Exit(1)
	}
	defer closeRoutes()

	// --- Services ---------------------------------------------------------
	scheduler, err := hos.NewScheduler(hos.PropertyCarrying70)
	if err != nil {
		slog.Error("invalid hos rules", "error", err)
		os.Exit(1)
	}
	tripRepo := repo.NewTripRepo(pool)
	logRepo := repo.NewLogRepo(pool)

	srv := handler.NewServer(
		service.NewTripService(tripRepo),
		service.NewPlanService(tripRepo, logRepo, routes, scheduler),
		service.NewExportService(tripRepo, logRepo, scheduler.Rules()),
		spec.OpenAPI,
	)

	// --- Router -----------------------------------------------------------
	// RealIP must run before the rate limiter so clients behind the proxy
	// get their own buckets. The body cap sits in front of every decoder.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Limit)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout covers a plan request: two routing calls with retries
	// plus the scheduling run and the log write.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations through a database/sql handle
// borrowed from the pool. The handle holds no idle connections of its own;
// pool.Close releases everything.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)

	results, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "path", res.Source.Path)
	}
	return nil
}

// newRouteProvider picks OpenRouteService when a key is configured and
// wraps it in the Redis cache when REDIS_URL is set. The returned func
// releases the Redis client.
func newRouteProvider(cfg config.Config) (routing.Provider, func(), error) {
	noop := func() {}
	if cfg.ORSAPIKey == "" {
		slog.Warn("ORS_API_KEY not set; only POST /schedule with explicit legs can plan trips")
		return routing.Unavailable{}, noop, nil
	}

	ors, err := routing.NewORS(routing.ORSConfig{
		APIKey:            cfg.ORSAPIKey,
		BaseURL:           cfg.ORSBaseURL,
		RequestsPerSecond: 1,
		Burst:             4,
	})
	if err != nil {
		return nil, noop, err
	}
	if cfg.RedisURL == "" {
		return ors, noop, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, noop, err
	}
	rdb := redis.NewClient(opts)
	slog.Info("route cache enabled", "addr", opts.Addr, "ttl", cfg.RouteCacheTTL)
	return routing.NewCache(rdb, ors, cfg.RouteCacheTTL), func() { _ = rdb.Close() }, nil
}
