// Package sqldbtest opens migrated in-memory databases for tests.
package sqldbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"healthops/internal/infrastructure/storage/sqldb"
)

// Open returns an in-memory SQLite handle with every migration applied.
// The handle is closed when the test ends.
func Open(t testing.TB) *sqldb.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqldb.Open(ctx, sqldb.DefaultPoolConfig("sqlite", ":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqldb.MigrateUp(ctx, db))
	return db
}

// TxManager returns a transaction manager over a fresh migrated database.
func TxManager(t testing.TB) *sqldb.TxManager {
	t.Helper()
	return sqldb.NewTxManager(Open(t))
}
