package archive

import (
	"context"
	"time"

	"healthops/internal/domain"
)

// Entry is one history row, detached from its entity type.
type Entry struct {
	HistID      string
	HistAddedAt time.Time
	Snapshot    any
}

// Source reads the not yet archived history of one entity.
//
// Rows are selected by their own archived flag rather than by position, so a
// snapshot whose transaction commits after a run is picked up by the next one.
type Source interface {
	// Name is the history table, used as the watermark key and object prefix.
	Name() string
	// Pending returns up to limit unarchived rows in histId order.
	Pending(ctx context.Context, limit int) ([]Entry, error)
	// MarkArchived flags rows as archived and returns how many were pending.
	MarkArchived(ctx context.Context, histIDs []string, at time.Time) (int64, error)
}

type historyReader[T any] interface {
	HistoryTable() string
	PendingHistory(ctx context.Context, limit int) ([]domain.HistoryEntry[T], error)
	MarkArchived(ctx context.Context, histIDs []string, at time.Time) (int64, error)
}

type typedSource[T any] struct {
	repo historyReader[T]
}

// NewSource adapts an audited repository.
func NewSource[T any](repo historyReader[T]) Source {
	return typedSource[T]{repo: repo}
}

func (s typedSource[T]) Name() string { return s.repo.HistoryTable() }

func (s typedSource[T]) Pending(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.repo.PendingHistory(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = Entry{HistID: r.HistID, HistAddedAt: r.HistAddedAt, Snapshot: r.Snapshot}
	}
	return out, nil
}

func (s typedSource[T]) MarkArchived(ctx context.Context, histIDs []string, at time.Time) (int64, error) {
	return s.repo.MarkArchived(ctx, histIDs, at)
}
