// Package vbpaylicense provides VBPayLicense: a client's subscription to the
// value-based payment module.
package vbpaylicense

import (
	"context"

	"healthops/internal/core/entity"
	"healthops/internal/core/types"
	"healthops/internal/core/validate"
)

// EntityName is used in messages and cache tags.
const EntityName = "vbpayLicense"

// VBPayLicense is owned by a client.
type VBPayLicense struct {
	entity.Audited

	ClientPubID string `db:"clientPubId" json:"clientPubId" validate:"required,uuid"`

	// LicenseNumber is issued on insert and never changes.
	LicenseNumber string `db:"licenseNumber" json:"licenseNumber" meta:"readonly"`

	ProductTier string `db:"productTier" json:"productTier" validate:"required,oneof=standard professional enterprise"`
	SeatCount   int    `db:"seatCount" json:"seatCount" validate:"required,gt=0"`

	ValidFrom  types.Date `db:"validFrom" json:"validFrom" validate:"required"`
	ValidUntil types.Date `db:"validUntil" json:"validUntil" validate:"required"`
}

var rules = validate.MustCompile([]string{"validFrom", "validUntil"},
	validate.Rule{
		Field:   "validUntil",
		Expr:    `validUntil > validFrom`,
		Message: "must be after validFrom",
	},
)

// New creates an empty VBPayLicense.
func New() *VBPayLicense {
	return &VBPayLicense{}
}

func (l *VBPayLicense) OwnerPubID() string          { return l.ClientPubID }
func (l *VBPayLicense) SetOwnerPubID(owner string) { l.ClientPubID = owner }

// Validate implements entity.Validatable.
func (l *VBPayLicense) Validate(ctx context.Context) error {
	return validate.Struct(l, rules, func() map[string]any {
		return map[string]any{
			"validFrom":  l.ValidFrom.Time,
			"validUntil": l.ValidUntil.Time,
		}
	})
}

// ApplyFrom copies the editable fields of src. LicenseNumber is kept.
func (l *VBPayLicense) ApplyFrom(src *VBPayLicense) {
	l.ProductTier = src.ProductTier
	l.SeatCount = src.SeatCount
	l.ValidFrom = src.ValidFrom
	l.ValidUntil = src.ValidUntil
}
