// Package vbpaysettings provides VBPayGlobalSettings: the single active
// value-based payment configuration of a client.
package vbpaysettings

import (
	"context"

	"healthops/internal/core/entity"
	"healthops/internal/core/types"
	"healthops/internal/core/validate"
)

// EntityName is used in messages and cache tags.
const EntityName = "vbpayGlobalSettings"

// VBPayGlobalSettings is owned by a client.
type VBPayGlobalSettings struct {
	entity.Audited

	ClientPubID string `db:"clientPubId" json:"clientPubId" validate:"required,uuid"`

	DefaultTimezone      string     `db:"defaultTimezone" json:"defaultTimezone" validate:"required,timezone"`
	FiscalYearStartMonth int        `db:"fiscalYearStartMonth" json:"fiscalYearStartMonth" validate:"required,gte=1,lte=12"`
	AttributionMethod    string     `db:"attributionMethod" json:"attributionMethod" validate:"required,oneof=prospective retrospective hybrid"`
	ShadowBillingEnabled types.Flag `db:"shadowBillingEnabled" json:"shadowBillingEnabled"`
}

// New creates an empty VBPayGlobalSettings.
func New() *VBPayGlobalSettings {
	return &VBPayGlobalSettings{}
}

func (s *VBPayGlobalSettings) OwnerPubID() string          { return s.ClientPubID }
func (s *VBPayGlobalSettings) SetOwnerPubID(owner string) { s.ClientPubID = owner }

// Validate implements entity.Validatable.
func (s *VBPayGlobalSettings) Validate(ctx context.Context) error {
	return validate.Struct(s, nil, nil)
}

// ApplyFrom copies the editable fields of src.
func (s *VBPayGlobalSettings) ApplyFrom(src *VBPayGlobalSettings) {
	s.DefaultTimezone = src.DefaultTimezone
	s.FiscalYearStartMonth = src.FiscalYearStartMonth
	s.AttributionMethod = src.AttributionMethod
	s.ShadowBillingEnabled = src.ShadowBillingEnabled
}
