// Package main is the entry point for the ELD logbook API server.
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
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkordes/eld-logbook/internal/broker/kafka"
	"github.com/pkordes/eld-logbook/internal/cache/rediscache"
	"github.com/pkordes/eld-logbook/internal/clock"
	"github.com/pkordes/eld-logbook/internal/config"
	"github.com/pkordes/eld-logbook/internal/handler"
	"github.com/pkordes/eld-logbook/internal/logging"
	"github.com/pkordes/eld-logbook/internal/middleware"
	"github.com/pkordes/eld-logbook/internal/repo"
	"github.com/pkordes/eld-logbook/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default stderr logger before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger, logCloser := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Stdout: os.Stdout,
	})
	defer logCloser.Close()
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool.New does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Side-effect adapters ---------------------------------------------
	// Both are optional. They are left as nil interfaces when disabled.
	var cache service.SummaryCache
	if cfg.RedisAddr != "" {
		rc := rediscache.New(cfg.RedisAddr, cfg.SummaryCacheTTL)
		defer rc.Close()
		if err := rc.Ping(context.Background()); err != nil {
			slog.Warn("summary cache unreachable, continuing", "addr", cfg.RedisAddr, "error", err)
		}
		cache = rc
		slog.Info("summary cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.SummaryCacheTTL)
	}

	var events service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		events = producer
		slog.Info("duty event publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// --- Services ---------------------------------------------------------
	store := repo.NewStore(pool)
	repos := store.Repos()
	clk := clock.System{}

	hours := service.NewHoursService(repos, clk, cfg.HOSCycle, cache, logger)
	srv := handler.NewServer(handler.Services{
		Drivers: service.NewDriverService(repos.Drivers),
		Ledger:  service.NewLedgerService(store, clk, events, cache, logger),
		Days:    service.NewDayService(store, clk),
		Hours:   hours,
		Sheets:  service.NewSheetService(repos, hours),
		Stops:   service.NewStopService(repos.Days, repos.Stops),
		Export:  service.NewExportService(repos),
	}, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	var opts handler.RouteOptions
	if cfg.AuthJWTSecret != "" {
		auth := middleware.NewAuth(cfg.AuthJWTSecret, "driverId")
		opts.Authorize = auth.RequireDriver
		opts.AdminOnly = auth.RequireAdmin
		slog.Info("bearer token auth enabled")
	}
	if cfg.RateLimitPerMinute > 0 {
		opts.WriteLimit = httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute)
	}
	r.Mount("/", srv.Routes(opts))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
