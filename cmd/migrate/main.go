// Package main provides a CLI for schema migrations.
// Usage: migrate up
//        migrate down
//        migrate status
package main

import (
	"context"
	"fmt"
	"os"

	"healthops/internal/config"
	"healthops/internal/infrastructure/storage/sqldb"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "up", "down", "status", "redo", "reset", "version":
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("HEALTHOPS_CONFIG"))
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := sqldb.Open(ctx, sqldb.DefaultPoolConfig(cfg.Database.Driver, cfg.Database.DSN))
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := sqldb.Migrate(ctx, db, command); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`healthops schema migrations

Usage:
  migrate <command>

Commands:
  up       Apply every pending migration
  down     Roll back the latest migration
  redo     Roll back and re-apply the latest migration
  reset    Roll back every migration
  status   Show applied and pending migrations
  version  Print the current schema version
  help     Show this help

Environment Variables:
  HEALTHOPS_CONFIG           Optional YAML config file
  HEALTHOPS_DATABASE_DRIVER  pgx or sqlite
  HEALTHOPS_DATABASE_DSN     Connection string`)
}
