// Package networkentity provides NetworkEntity: a provider group, facility,
// IPA or ACO contracted into a payer's network.
package networkentity

import (
	"context"

	"healthops/internal/core/entity"
	"healthops/internal/core/validate"
)

// EntityName is used in messages and cache tags.
const EntityName = "networkEntity"

// Type classifies the contracted organisation.
type Type string

const (
	TypeGroup    Type = "group"
	TypeFacility Type = "facility"
	TypeIPA      Type = "ipa"
	TypeACO      Type = "aco"
)

// NetworkEntity is owned by a payer.
type NetworkEntity struct {
	entity.Audited

	PayerPubID string `db:"payerPubId" json:"payerPubId" validate:"required,uuid"`

	EntityName string `db:"entityName" json:"entityName" validate:"required,max=160"`
	EntityType Type   `db:"entityType" json:"entityType" validate:"required,oneof=group facility ipa aco"`

	// TIN is the organisation's tax identification number.
	TIN string `db:"tin" json:"tin" validate:"required,tin"`

	// NPI is the organisational (type 2) NPI; facilities must carry one.
	NPI *string `db:"npi" json:"npi,omitempty" validate:"omitempty,npi"`

	Description *string `db:"description" json:"description,omitempty" validate:"omitempty,max=500"`
}

var rules = validate.MustCompile([]string{"entityType", "npi"},
	validate.Rule{
		Field:   "npi",
		Expr:    `entityType != "facility" || npi != null`,
		Message: "is required for facilities",
	},
)

// New creates an empty NetworkEntity.
func New() *NetworkEntity {
	return &NetworkEntity{}
}

func (n *NetworkEntity) OwnerPubID() string          { return n.PayerPubID }
func (n *NetworkEntity) SetOwnerPubID(owner string) { n.PayerPubID = owner }

// Validate implements entity.Validatable.
func (n *NetworkEntity) Validate(ctx context.Context) error {
	return validate.Struct(n, rules, func() map[string]any {
		return map[string]any{
			"entityType": string(n.EntityType),
			"npi":        validate.Optional(n.NPI),
		}
	})
}

// ApplyFrom copies the editable fields of src.
func (n *NetworkEntity) ApplyFrom(src *NetworkEntity) {
	n.EntityName = src.EntityName
	n.EntityType = src.EntityType
	n.TIN = src.TIN
	n.NPI = src.NPI
	n.Description = src.Description
}
