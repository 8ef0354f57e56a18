package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"healthops/migrations"
)

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// gooseRun is a seam for testing the goose invocation.
var gooseRun = func(ctx context.Context, command string, db *sql.DB, dir string) error {
	return goose.RunContext(ctx, command, db, dir)
}

// Migrate runs a goose command ("up", "down", "status", "reset", ...)
// with the embedded migrations of the handle's dialect.
func Migrate(ctx context.Context, db *DB, command string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(db.Dialect.GooseDialect()); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := gooseRun(ctx, command, db.DB, migrationDir(db.Dialect)); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateUp applies every pending migration.
func MigrateUp(ctx context.Context, db *DB) error {
	return Migrate(ctx, db, "up")
}

func migrationDir(d Dialect) string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}
