// Package healthplan provides HealthPlan: a benefit plan a payer offers
// within one line of business.
package healthplan

import (
	"context"

	"healthops/internal/core/entity"
	"healthops/internal/core/types"
	"healthops/internal/core/validate"
)

// EntityName is used in messages and cache tags.
const EntityName = "healthPlan"

// LineOfBusiness is the market segment of a plan.
type LineOfBusiness string

const (
	LOBCommercial        LineOfBusiness = "commercial"
	LOBMedicareAdvantage LineOfBusiness = "medicare_advantage"
	LOBMedicaid          LineOfBusiness = "medicaid"
	LOBExchange          LineOfBusiness = "exchange"
)

// HealthPlan is owned by a payer.
type HealthPlan struct {
	entity.Audited

	PayerPubID string `db:"payerPubId" json:"payerPubId" validate:"required,uuid"`

	PlanName       string         `db:"planName" json:"planName" validate:"required,max=120"`
	PlanCode       string         `db:"planCode" json:"planCode" validate:"required,max=30"`
	LineOfBusiness LineOfBusiness `db:"lineOfBusiness" json:"lineOfBusiness" validate:"required,oneof=commercial medicare_advantage medicaid exchange"`

	EffectiveDate   types.Date  `db:"effectiveDate" json:"effectiveDate" validate:"required"`
	TerminationDate *types.Date `db:"terminationDate" json:"terminationDate,omitempty"`
}

var rules = validate.MustCompile([]string{"effectiveDate", "terminationDate"},
	validate.Rule{
		Field:   "terminationDate",
		Expr:    `terminationDate == null || terminationDate > effectiveDate`,
		Message: "must be after the effective date",
	},
)

// New creates an empty HealthPlan.
func New() *HealthPlan {
	return &HealthPlan{}
}

func (h *HealthPlan) OwnerPubID() string          { return h.PayerPubID }
func (h *HealthPlan) SetOwnerPubID(owner string) { h.PayerPubID = owner }

// Validate implements entity.Validatable.
func (h *HealthPlan) Validate(ctx context.Context) error {
	return validate.Struct(h, rules, func() map[string]any {
		var term any
		if h.TerminationDate != nil {
			term = h.TerminationDate.Time
		}
		return map[string]any{
			"effectiveDate":   h.EffectiveDate.Time,
			"terminationDate": term,
		}
	})
}

// ApplyFrom copies the editable fields of src.
func (h *HealthPlan) ApplyFrom(src *HealthPlan) {
	h.PlanName = src.PlanName
	h.PlanCode = src.PlanCode
	h.LineOfBusiness = src.LineOfBusiness
	h.EffectiveDate = src.EffectiveDate
	h.TerminationDate = src.TerminationDate
}
