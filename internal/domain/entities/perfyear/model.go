// Package perfyear provides PhysPerfYearConfig: the scoring weights and
// benchmarks a payer applies to physician performance in one year.
package perfyear

import (
	"context"

	"healthops/internal/core/entity"
	"healthops/internal/core/types"
	"healthops/internal/core/validate"
)

// EntityName is used in messages and cache tags.
const EntityName = "physPerfYearConfig"

// PhysPerfYearConfig is owned by a payer; one active config per year.
type PhysPerfYearConfig struct {
	entity.Audited

	PayerPubID string `db:"payerPubId" json:"payerPubId" validate:"required,uuid"`

	PerfYear int `db:"perfYear" json:"perfYear" validate:"required,gte=2000,lte=2100"`

	// QualityWeight and CostWeight split the composite score and must sum to 1.
	QualityWeight types.Rate `db:"qualityWeight" json:"qualityWeight"`
	CostWeight    types.Rate `db:"costWeight" json:"costWeight"`

	// SharedSavingsRate is the physician share of savings below benchmark.
	SharedSavingsRate types.Rate `db:"sharedSavingsRate" json:"sharedSavingsRate"`

	// PmpmBenchmark is the per-member-per-month cost target.
	PmpmBenchmark types.Money `db:"pmpmBenchmark" json:"pmpmBenchmark"`

	MinAttributedMembers int `db:"minAttributedMembers" json:"minAttributedMembers" validate:"gte=0"`
}

// New creates an empty PhysPerfYearConfig.
func New() *PhysPerfYearConfig {
	return &PhysPerfYearConfig{}
}

func (c *PhysPerfYearConfig) OwnerPubID() string          { return c.PayerPubID }
func (c *PhysPerfYearConfig) SetOwnerPubID(owner string) { c.PayerPubID = owner }

// Validate implements entity.Validatable.
func (c *PhysPerfYearConfig) Validate(ctx context.Context) error {
	return validate.Struct(c, nil, nil, c.checkAmounts)
}

func (c *PhysPerfYearConfig) checkAmounts(errs validate.Errors) {
	if !types.IsFraction(c.QualityWeight) {
		errs.Add("qualityWeight", "must be between 0 and 1")
	}
	if !types.IsFraction(c.CostWeight) {
		errs.Add("costWeight", "must be between 0 and 1")
	}
	if !types.SumsToOne(c.QualityWeight, c.CostWeight) {
		errs.Add("costWeight", "quality and cost weights must sum to 1")
	}
	if !types.IsFraction(c.SharedSavingsRate) {
		errs.Add("sharedSavingsRate", "must be between 0 and 1")
	}
	if c.PmpmBenchmark.IsNegative() {
		errs.Add("pmpmBenchmark", "must not be negative")
	}
}

// ApplyFrom copies the editable fields of src.
func (c *PhysPerfYearConfig) ApplyFrom(src *PhysPerfYearConfig) {
	c.PerfYear = src.PerfYear
	c.QualityWeight = src.QualityWeight
	c.CostWeight = src.CostWeight
	c.SharedSavingsRate = src.SharedSavingsRate
	c.PmpmBenchmark = src.PmpmBenchmark
	c.MinAttributedMembers = src.MinAttributedMembers
}
