package archive

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthops/internal/core/entity"
	"healthops/internal/domain/entities/client"
	"healthops/internal/infrastructure/blob/afs"
	"healthops/internal/infrastructure/storage/sqldb"
	"healthops/internal/infrastructure/storage/sqldb/entity_repo"
	"healthops/internal/infrastructure/storage/sqldb/sqldbtest"
)

type fixture struct {
	txm   *sqldb.TxManager
	repo  *entity_repo.ClientRepo
	store *afs.Store
	arch  *Archiver
	c     *client.Client
}

func newFixture(t *testing.T, batch int) *fixture {
	t.Helper()
	txm := sqldbtest.TxManager(t)
	repo := entity_repo.NewClientRepo(txm)
	store := afs.NewMemory()

	arch, err := New(store, NewWatermarks(txm), batch, NewSource[*client.Client](repo))
	require.NoError(t, err)
	t.Cleanup(arch.Close)

	c := &client.Client{ClientName: "Acme", ClientCode: "ACME01", Timezone: "UTC"}
	c.Stamp("u1", entity.NowUTC())
	require.NoError(t, repo.Insert(context.Background(), c))

	return &fixture{txm: txm, repo: repo, store: store, arch: arch, c: c}
}

// snapshot records n history rows of the fixture client.
func (f *fixture) snapshot(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, f.repo.Snapshot(context.Background(), f.c, entity.NowUTC()))
	}
}

func TestRunOnce_IsIncremental(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	f.snapshot(t, 3)

	rep, err := f.arch.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Segments: 2, Rows: 3}, rep)

	rep, err = f.arch.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{}, rep, "nothing new to archive")

	f.snapshot(t, 1)
	rep, err = f.arch.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Segments: 1, Rows: 1}, rep)

	wm, err := NewWatermarks(f.txm).Get(ctx, "clientHist")
	require.NoError(t, err)
	assert.Equal(t, int64(4), wm.RowCount)

	infos, err := f.store.List(ctx, "clientHist/")
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, wm.LastObjectKey, infos[2].Key)
}

func TestReadSegment_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.snapshot(t, 2)

	_, err := f.arch.RunOnce(ctx)
	require.NoError(t, err)

	hist, err := f.repo.History(ctx, f.c.PubID)
	require.NoError(t, err)
	require.Len(t, hist, 2)

	lines, err := f.arch.ReadSegment(ctx, "clientHist/"+hist[0].HistID+".ndjson.zst")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "clientHist", lines[0].Entity)
	assert.Equal(t, hist[0].HistID, lines[0].HistID)
	assert.Equal(t, hist[1].HistID, lines[1].HistID)
	assert.True(t, lines[0].HistAddedAt.Equal(hist[0].HistAddedAt))

	var snap client.Client
	require.NoError(t, json.Unmarshal(lines[0].Snapshot, &snap))
	assert.Equal(t, "ACME01", snap.ClientCode)
	assert.Equal(t, f.c.PubID, snap.PubID)
}

func TestRunOnce_PicksUpLateCommits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)

	// A transaction that started earlier commits its snapshot after the run.
	late := entity.NowUTC()
	require.NoError(t, f.repo.Snapshot(ctx, f.c, late.Add(time.Second)))

	rep, err := f.arch.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Segments: 1, Rows: 1}, rep)

	require.NoError(t, f.repo.Snapshot(ctx, f.c, late))

	rep, err = f.arch.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Segments: 1, Rows: 1}, rep)

	wm, err := NewWatermarks(f.txm).Get(ctx, "clientHist")
	require.NoError(t, err)
	assert.Equal(t, int64(2), wm.RowCount)

	hist, err := f.repo.History(ctx, f.c.PubID)
	require.NoError(t, err)
	require.Len(t, hist, 2)

	infos, err := f.store.List(ctx, "clientHist/")
	require.NoError(t, err)
	var archived []string
	for _, info := range infos {
		lines, err := f.arch.ReadSegment(ctx, info.Key)
		require.NoError(t, err)
		for _, l := range lines {
			archived = append(archived, l.HistID)
		}
	}
	assert.ElementsMatch(t, []string{hist[0].HistID, hist[1].HistID}, archived)
}

func TestRunOnce_ResumesAfterCrashBeforeFlagging(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.snapshot(t, 2)

	_, err := f.arch.RunOnce(ctx)
	require.NoError(t, err)

	// Simulate a crash between storing the segment and flagging its rows.
	_, err = f.txm.DB().ExecContext(ctx, `UPDATE "clientHist" SET "histArchivedAt" = NULL`)
	require.NoError(t, err)
	_, err = f.txm.DB().ExecContext(ctx, `DELETE FROM "historyArchive"`)
	require.NoError(t, err)

	rep, err := f.arch.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Rows)

	infos, err := f.store.List(ctx, "clientHist/")
	require.NoError(t, err)
	assert.Len(t, infos, 1, "the stored segment is reused, not duplicated")

	wm, err := NewWatermarks(f.txm).Get(ctx, "clientHist")
	require.NoError(t, err)
	assert.NotEmpty(t, wm.LastHistID)
	assert.WithinDuration(t, time.Now(), wm.ArchivedAt, time.Minute)

	rep, err = f.arch.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{}, rep)
}
