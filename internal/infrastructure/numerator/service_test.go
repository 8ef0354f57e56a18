package numerator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "healthops/internal/core/numerator"
	"healthops/internal/infrastructure/storage/sqldb/sqldbtest"
)

var period = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	svc := New(sqldbtest.TxManager(t))
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("LIC")

	num, err := svc.GetNextNumber(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "LIC-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "LIC-2026-00002", num)

	num, err = svc.GetNextNumber(ctx, cfg, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "LIC-2027-00001", num, "yearly sequences restart")
}

func TestGetNextNumber_StrictRollsBackWithTransaction(t *testing.T) {
	txm := sqldbtest.TxManager(t)
	svc := New(txm)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("LIC")

	errAbort := errors.New("abort")
	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		num, err := svc.GetNextNumber(ctx, cfg, period)
		require.NoError(t, err)
		assert.Equal(t, "LIC-2026-00001", num)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	num, err := svc.GetNextNumber(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "LIC-2026-00001", num)
}

func TestGetNextNumber_UnpaddedWithoutYear(t *testing.T) {
	svc := New(sqldbtest.TxManager(t))
	ctx := context.Background()
	cfg := corenumerator.Config{Prefix: "ORD", PadWidth: 3, ResetPeriod: corenumerator.ResetNever}

	var got []string
	for _, p := range []time.Time{period, period.AddDate(1, 0, 0), period.AddDate(2, 0, 0)} {
		num, err := svc.GetNextNumber(ctx, cfg, p)
		require.NoError(t, err)
		got = append(got, num)
	}
	assert.Equal(t, []string{"ORD-001", "ORD-002", "ORD-003"}, got, "never-reset sequences span years")
}
