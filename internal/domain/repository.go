// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"
	"fmt"
	"time"

	"healthops/internal/core/entity"
	"healthops/internal/domain/filter"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// OwnerPubID scopes the list to one owning client or payer.
	OwnerPubID string

	// PubIDs restricts the list to specific records.
	PubIDs []string

	// Search performs a case-insensitive match on the entity's search columns
	Search string

	// IncludeInactive includes deactivated records
	IncludeInactive bool

	// AdvancedFilters are ad-hoc column conditions
	AdvancedFilters []filter.Item

	// OrderBy specifies sorting (e.g., "clientName", "-updatedAt")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit: 50,
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// HistoryEntry is one snapshot from an entity's history table.
type HistoryEntry[T any] struct {
	HistID      string    `json:"histId"`
	HistAddedAt time.Time `json:"histAddedAt"`
	Snapshot    T         `json:"snapshot"`
}

// --- Repository Interfaces ---

// AuditedRepository persists one audited entity type and its history shadow.
// Mutating methods must run inside a transaction carried by ctx.
type AuditedRepository[T entity.Entity] interface {
	// Get retrieves the live row by pubId.
	Get(ctx context.Context, pubID string) (T, error)

	// GetForUpdate retrieves the live row by pubId, locking it where the store supports it.
	GetForUpdate(ctx context.Context, pubID string) (T, error)

	// FindDuplicates returns the unique columns of e that collide with another
	// active row of the same owner. excludePubID skips the row being updated.
	FindDuplicates(ctx context.Context, e T, excludePubID string) ([]string, error)

	// Insert adds a new live row.
	Insert(ctx context.Context, e T) error

	// Snapshot copies current into the history table with histAddedAt = at.
	Snapshot(ctx context.Context, current T, at time.Time) error

	// Update writes the mutable columns of e back to its live row.
	Update(ctx context.Context, e T) error

	// List retrieves live rows with filtering and pagination.
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	// History returns the snapshots of one record ordered by histAddedAt.
	History(ctx context.Context, pubID string) ([]HistoryEntry[T], error)
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	// BeforeInsert runs inside the transaction, after the row is stamped.
	BeforeInsert HookEvent = "before_insert"
	// AfterInsert runs after commit.
	AfterInsert HookEvent = "after_insert"
	// BeforeUpdate runs inside the transaction, after the snapshot was taken.
	BeforeUpdate HookEvent = "before_update"
	// AfterUpdate runs after commit.
	AfterUpdate HookEvent = "after_update"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// OnBeforeInsert registers a hook to run before insert.
func (r *HookRegistry[T]) OnBeforeInsert(hook Hook[T]) {
	r.On(BeforeInsert, hook)
}

// OnAfterInsert registers a hook to run after insert.
func (r *HookRegistry[T]) OnAfterInsert(hook Hook[T]) {
	r.On(AfterInsert, hook)
}

// OnBeforeUpdate registers a hook to run before update.
func (r *HookRegistry[T]) OnBeforeUpdate(hook Hook[T]) {
	r.On(BeforeUpdate, hook)
}

// OnAfterUpdate registers a hook to run after update.
func (r *HookRegistry[T]) OnAfterUpdate(hook Hook[T]) {
	r.On(AfterUpdate, hook)
}

// OwnerGranter gives a user every role on an owner record.
// It joins the transaction in ctx.
type OwnerGranter interface {
	GrantOwnerRoles(ctx context.Context, userID, ownerPubID string) error
}

// GrantCreator returns a BeforeInsert hook making the creator of a new owner
// record (a client or payer) its administrator. A failed grant rolls back
// the insert.
func GrantCreator[T entity.Entity](g OwnerGranter) Hook[T] {
	return func(ctx context.Context, e T) error {
		b := e.Base()
		if err := g.GrantOwnerRoles(ctx, b.CreatedBy, b.PubID); err != nil {
			return fmt.Errorf("grant creator: %w", err)
		}
		return nil
	}
}
