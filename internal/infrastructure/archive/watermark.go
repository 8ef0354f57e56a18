package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"

	"healthops/internal/infrastructure/storage/sqldb"
)

const watermarkTable = "historyArchive"

// Watermark records the latest archive run of one entity. LastHistID is the
// last row of the latest segment; which rows are archived is tracked on the
// rows themselves.
type Watermark struct {
	Entity        string    `db:"entity"`
	LastHistID    string    `db:"lastHistId"`
	LastObjectKey string    `db:"lastObjectKey"`
	RowCount      int64     `db:"rowCount"`
	ArchivedAt    time.Time `db:"archivedAt"`
}

// Watermarks persists one Watermark per entity.
type Watermarks struct {
	txm *sqldb.TxManager
}

// NewWatermarks creates a Watermarks store.
func NewWatermarks(txm *sqldb.TxManager) *Watermarks {
	return &Watermarks{txm: txm}
}

// Get returns the watermark of entity; a never-archived entity has a zero one.
func (w *Watermarks) Get(ctx context.Context, entity string) (Watermark, error) {
	query, args, err := w.txm.Dialect().Builder().
		Select(sqldb.QuoteAll([]string{"entity", "lastHistId", "lastObjectKey", "rowCount", "archivedAt"})...).
		From(sqldb.Quote(watermarkTable)).
		Where(sqldb.Quote("entity")+" = ?", entity).
		ToSql()
	if err != nil {
		return Watermark{}, err
	}

	var wm Watermark
	err = sqlscan.Get(ctx, w.txm.GetQuerier(ctx), &wm, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return Watermark{Entity: entity}, nil
	}
	if err != nil {
		return Watermark{}, fmt.Errorf("get watermark %s: %w", entity, err)
	}
	return wm, nil
}

// Advance records a stored segment of entity and adds rows to its count.
func (w *Watermarks) Advance(ctx context.Context, entity, lastHistID, objectKey string, rows int64, at time.Time) error {
	query, args, err := w.txm.Dialect().Builder().
		Insert(sqldb.Quote(watermarkTable)).
		Columns(sqldb.QuoteAll([]string{"entity", "lastHistId", "lastObjectKey", "rowCount", "archivedAt"})...).
		Values(entity, lastHistID, objectKey, rows, at).
		Suffix(`ON CONFLICT ("entity") DO UPDATE SET ` +
			`"lastHistId" = excluded."lastHistId", ` +
			`"lastObjectKey" = excluded."lastObjectKey", ` +
			`"rowCount" = "historyArchive"."rowCount" + excluded."rowCount", ` +
			`"archivedAt" = excluded."archivedAt"`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := w.txm.GetQuerier(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("advance watermark %s: %w", entity, err)
	}
	return nil
}
