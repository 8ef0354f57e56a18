// Package entity defines the shape shared by every audited record.
package entity

import (
	"context"
	"time"

	"healthops/internal/core/id"
	"healthops/internal/core/types"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with field details otherwise.
	Validate(ctx context.Context) error
}

// Audited holds identity, audit and lifecycle columns.
// Every live table and its history shadow carry these columns.
type Audited struct {
	// PubID is the stable public identifier (UUIDv7).
	PubID string `db:"pubId" json:"pubId"`

	CreatedAt time.Time `db:"createdAt" json:"createdAt"`
	CreatedBy string    `db:"createdBy" json:"createdBy"`
	UpdatedAt time.Time `db:"updatedAt" json:"updatedAt"`
	UpdatedBy string    `db:"updatedBy" json:"updatedBy"`

	// IsActive is the deactivation marker; rows are never physically deleted.
	IsActive types.Flag `db:"isActive" json:"isActive"`
}

// Base returns the audited columns. Entities embedding Audited satisfy
// the Base method of Entity through this promotion.
func (a *Audited) Base() *Audited {
	return a
}

// Stamp prepares a fresh row: new pubId, active, both audit pairs set to now/actor.
func (a *Audited) Stamp(actor string, now time.Time) {
	a.PubID = id.NewPubID()
	a.IsActive = true
	a.CreatedAt = now
	a.CreatedBy = actor
	a.UpdatedAt = now
	a.UpdatedBy = actor
}

// Touch refreshes the update audit pair.
func (a *Audited) Touch(actor string, now time.Time) {
	a.UpdatedAt = now
	a.UpdatedBy = actor
}

// Entity is implemented by pointers to audited records.
type Entity interface {
	Validatable

	// Base exposes the audited columns.
	Base() *Audited

	// OwnerPubID returns the owning client or payer.
	// Self-owned entities (Client) return their own pubId.
	OwnerPubID() string

	// SetOwnerPubID assigns the owner on insert. Self-owned entities ignore it.
	SetOwnerPubID(owner string)
}

// Record is the constraint used by the generic repository and service:
// an Entity that can copy the domain fields of a payload onto a loaded row,
// leaving identity, owner and audit columns untouched.
type Record[T any] interface {
	Entity
	ApplyFrom(src T)
}

// NowUTC returns the transaction instant: UTC, truncated to microseconds so
// it survives a round trip through any supported store unchanged.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
