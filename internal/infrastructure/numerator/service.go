// Package numerator implements numerator.Generator on the sysSequence table.
package numerator

import (
	"context"
	"fmt"
	"time"

	corenumerator "healthops/internal/core/numerator"
	"healthops/internal/infrastructure/storage/sqldb"
)

const upsertIncrement = `INSERT INTO "sysSequence" ("seqKey", "currentVal") VALUES (?, 1)
ON CONFLICT ("seqKey") DO UPDATE SET "currentVal" = "sysSequence"."currentVal" + 1
RETURNING "currentVal"`

// Service hands out numbers from "sysSequence".
//
// The sequence row is bumped through the transaction in ctx. The row lock
// serializes concurrent inserts, and a rolled back insert also rolls back
// its number, so numbers stay gapless.
type Service struct {
	txm *sqldb.TxManager
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator backed by txm.
func New(txm *sqldb.TxManager) *Service {
	return &Service{txm: txm}
}

// GetNextNumber implements numerator.Generator.
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	key := corenumerator.BuildKey(cfg, period)
	query, err := s.txm.Dialect().Rebind(upsertIncrement)
	if err != nil {
		return "", err
	}

	var num int64
	if err := s.txm.GetQuerier(ctx).QueryRowContext(ctx, query, key).Scan(&num); err != nil {
		return "", fmt.Errorf("next number %s: %w", key, err)
	}
	return corenumerator.Format(cfg, period, num), nil
}
