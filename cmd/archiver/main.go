// Package main is the entry point for the history archiver.
// It copies new history rows of every entity into compressed segments
// in the configured blob store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"healthops/internal/app"
	"healthops/internal/config"
	"healthops/internal/infrastructure/archive"
	"healthops/internal/infrastructure/blob"
	"healthops/internal/infrastructure/storage/sqldb"
	"healthops/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("HEALTHOPS_CONFIG"), "path to a YAML config file")
	once := flag.Bool("once", false, "archive once and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.IsDevelopment(),
		Service:     "healthops-archiver",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	db, err := sqldb.Open(ctx, sqldb.DefaultPoolConfig(cfg.Database.Driver, cfg.Database.DSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	store, err := blob.Open(ctx, cfg.Archive)
	if err != nil {
		log.Fatalw("failed to open archive store", "driver", cfg.Archive.Driver, "error", err)
	}

	txm := sqldb.NewTxManager(db)
	repos := app.NewRepos(txm)

	archiver, err := archive.New(store, archive.NewWatermarks(txm), cfg.Archive.BatchSize, repos.HistorySources()...)
	if err != nil {
		log.Fatalw("failed to create archiver", "error", err)
	}
	defer archiver.Close()

	if *once {
		report, err := archiver.RunOnce(ctx)
		if err != nil {
			log.Fatalw("archive run failed", "error", err)
		}
		log.Infow("archive run completed", "segments", report.Segments, "rows", report.Rows)
		return
	}

	log.Infow("starting history archiver",
		"driver", cfg.Archive.Driver,
		"interval", cfg.Archive.Interval,
		"batch_size", cfg.Archive.BatchSize,
	)
	if err := archiver.Run(ctx, cfg.Archive.Interval); err != nil {
		log.Errorw("archiver stopped with error", "error", err)
	}
	log.Info("archiver stopped")
}
