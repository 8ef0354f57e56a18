// Package main is the entry point for the healthops API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"healthops/internal/app"
	"healthops/internal/config"
	"healthops/internal/domain"
	"healthops/internal/infrastructure/cache"
	v1 "healthops/internal/infrastructure/http/v1"
	"healthops/internal/infrastructure/http/v1/middleware"
	"healthops/internal/infrastructure/metrics"
	"healthops/internal/infrastructure/storage/sqldb"
	"healthops/pkg/logger"
)

var version = "dev"

func main() {
	configPath := flag.String("config", os.Getenv("HEALTHOPS_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.IsDevelopment(),
		Service:     "healthops-api",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	log.Infow("starting healthops server", "version", version, "driver", cfg.Database.Driver)

	// --- Database ---
	poolCfg := sqldb.DefaultPoolConfig(cfg.Database.Driver, cfg.Database.DSN)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	db, err := sqldb.Open(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := sqldb.MigrateUp(ctx, db); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
		log.Info("migrations applied")
	}

	txm := sqldb.NewTxManager(db).WithStatementTimeout(cfg.Database.StatementTimeout)

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Invalidation ---
	records := cache.NewRecordCache(cfg.Cache.Size, cfg.Cache.TTL)
	sinks := []cache.Sink{{Name: "records", Invalidator: records}}

	var listener *cache.Listener
	if cfg.Cache.NotifyChannel != "" && db.Pool() != nil {
		// Every instance, this one included, clears its cache on LISTEN.
		sinks = append(sinks, cache.Sink{Name: "notify", Invalidator: cache.NewBroadcaster(db.Pool(), cfg.Cache.NotifyChannel)})
		listener = cache.NewListener(db.Pool(), cfg.Cache.NotifyChannel, records)
		listener.Start(ctx)
		defer listener.Stop()
	}
	if cfg.Revalidation.URL != "" {
		sinks = append(sinks, cache.Sink{Name: "webhook", Invalidator: cache.NewWebhook(cache.WebhookConfig{
			URL:         cfg.Revalidation.URL,
			Secret:      cfg.Revalidation.Secret,
			Timeout:     cfg.Revalidation.Timeout,
			IncludeTags: cfg.Revalidation.IncludeTags,
		})})
	}

	// --- Services ---
	repos := app.NewRepos(txm)
	services := app.NewServices(txm, repos, domain.ServiceDeps{
		Invalidator: cache.NewFanout(m, sinks...),
		ReadCache:   records,
		Observer:    m,
	}, app.AuthOptions{
		JWTSecret:  cfg.Auth.JWTSecret,
		AccessTTL:  cfg.Auth.AccessTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	// --- Router ---
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go sweepLimiter(ctx, limiter)
	}

	router := v1.NewRouter(v1.RouterConfig{
		Logger:      log,
		DB:          db,
		Services:    services,
		Metadata:    repos.Metadata(),
		Metrics:     m,
		RateLimiter: limiter,
		Version:     version,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      v1.WithCORS(router, cfg.CORS.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful shutdown ---
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.Errorw("server failed", "error", err)
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// sweepLimiter drops idle rate limit buckets until ctx is done.
func sweepLimiter(ctx context.Context, l *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
