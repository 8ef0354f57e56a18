// Package payer provides the Payer entity: a health insurer managed on behalf of a client.
package payer

import (
	"context"

	"healthops/internal/core/entity"
	"healthops/internal/core/validate"
)

// EntityName is used in messages and cache tags.
const EntityName = "payer"

// PayerType classifies the payer's market.
type PayerType string

const (
	TypeCommercial PayerType = "commercial"
	TypeMedicare   PayerType = "medicare"
	TypeMedicaid   PayerType = "medicaid"
	TypeExchange   PayerType = "exchange"
)

// Payer is owned by a client.
type Payer struct {
	entity.Audited

	ClientPubID string `db:"clientPubId" json:"clientPubId" validate:"required,uuid"`

	PayerName string    `db:"payerName" json:"payerName" validate:"required,max=120"`
	PayerCode string    `db:"payerCode" json:"payerCode" validate:"required,max=20,alphanum"`
	PayerType PayerType `db:"payerType" json:"payerType" validate:"required,oneof=commercial medicare medicaid exchange"`

	// TaxID is the federal employer identification number.
	TaxID *string `db:"taxId" json:"taxId,omitempty" validate:"omitempty,tin"`

	Description *string `db:"description" json:"description,omitempty" validate:"omitempty,max=500"`
}

// New creates an empty Payer.
func New() *Payer {
	return &Payer{}
}

func (p *Payer) OwnerPubID() string          { return p.ClientPubID }
func (p *Payer) SetOwnerPubID(owner string) { p.ClientPubID = owner }

// Validate implements entity.Validatable.
func (p *Payer) Validate(ctx context.Context) error {
	return validate.Struct(p, nil, nil)
}

// ApplyFrom copies the editable fields of src.
func (p *Payer) ApplyFrom(src *Payer) {
	p.PayerName = src.PayerName
	p.PayerCode = src.PayerCode
	p.PayerType = src.PayerType
	p.TaxID = src.TaxID
	p.Description = src.Description
}
