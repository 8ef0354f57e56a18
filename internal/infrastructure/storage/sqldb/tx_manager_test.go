package sqldb

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockManager(t *testing.T, dialect Dialect) (*TxManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTxManager(Wrap(db, dialect)), mock
}

func TestTxManager_CommitSetsStatementTimeoutOnPostgres(t *testing.T) {
	m, mock := newMockManager(t, Postgres)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET LOCAL statement_timeout = '30000ms'")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "client"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		require.True(t, m.InTransaction(ctx))
		_, err := m.GetQuerier(ctx).ExecContext(ctx, `INSERT INTO "client" ("pubId") VALUES ($1)`, "p1")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollbackReturnsOriginalError(t *testing.T) {
	m, mock := newMockManager(t, SQLite)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_NestedSavepointRollsBackOnlyInnerWork(t *testing.T) {
	m, mock := newMockManager(t, SQLite)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SAVEPOINT sp_1")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("ROLLBACK TO SAVEPOINT sp_1")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	opts := DefaultTxOptions()
	opts.UseSavepoint = true

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		inner := m.RunInTransactionWithOptions(ctx, opts, func(ctx context.Context) error {
			return errors.New("inner failed")
		})
		assert.Error(t, inner)
		return nil
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_PanicRollsBack(t *testing.T) {
	m, mock := newMockManager(t, SQLite)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = m.RunInTransaction(context.Background(), func(ctx context.Context) error {
			panic("bad")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_GetQuerierOutsideTransaction(t *testing.T) {
	m, _ := newMockManager(t, Postgres)
	ctx := context.Background()

	assert.False(t, m.InTransaction(ctx))
	assert.Same(t, m.DB().DB, m.GetQuerier(ctx))
}

func TestDialect(t *testing.T) {
	d, err := ParseDialect("pgx")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	d, err = ParseDialect("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)

	_, err = ParseDialect("mysql")
	assert.Error(t, err)

	sql, args, err := Postgres.Builder().
		Select(QuoteAll([]string{"pubId", "clientName"})...).
		From(Quote("client")).
		Where(Postgres.ContainsFold(Quote("clientName"), "ac")).
		ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "pubId", "clientName" FROM "client" WHERE "clientName" ILIKE $1`, sql)
	assert.Equal(t, []any{"%ac%"}, args)

	sql, _, err = SQLite.Builder().
		Select("1").From(Quote("client")).
		Where(SQLite.ContainsFold(Quote("clientName"), "ac")).
		ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT 1 FROM "client" WHERE "clientName" LIKE ?`, sql)

	rebound, err := Postgres.Rebind("SELECT 1 WHERE a = ? AND b = ?")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", rebound)
}
