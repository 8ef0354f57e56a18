// Package networkphysician provides NetworkPhysician: an individual
// practitioner contracted into a payer's network, optionally through a
// network entity.
package networkphysician

import (
	"context"

	"healthops/internal/core/entity"
	"healthops/internal/core/types"
	"healthops/internal/core/validate"
)

// EntityName is used in messages and cache tags.
const EntityName = "networkPhysician"

// NetworkPhysician is owned by a payer.
type NetworkPhysician struct {
	entity.Audited

	PayerPubID string `db:"payerPubId" json:"payerPubId" validate:"required,uuid"`

	// NetworkEntityPubID links the physician to a group of the same payer.
	NetworkEntityPubID *string `db:"networkEntityPubId" json:"networkEntityPubId,omitempty" validate:"omitempty,uuid"`

	FirstName string  `db:"firstName" json:"firstName" validate:"required,max=60"`
	LastName  string  `db:"lastName" json:"lastName" validate:"required,max=60"`
	NPI       string  `db:"npi" json:"npi" validate:"required,npi"`
	Specialty *string `db:"specialty" json:"specialty,omitempty" validate:"omitempty,max=120"`

	// IsPcp marks a primary care physician; PCPs carry a member panel.
	IsPcp      types.Flag `db:"isPcp" json:"isPcp"`
	PanelLimit *int       `db:"panelLimit" json:"panelLimit,omitempty" validate:"omitempty,gte=0,lte=10000"`
}

var rules = validate.MustCompile([]string{"isPcp", "panelLimit"},
	validate.Rule{
		Field:   "panelLimit",
		Expr:    `!isPcp || (panelLimit != null && panelLimit > 0)`,
		Message: "is required for primary care physicians",
	},
)

// New creates an empty NetworkPhysician.
func New() *NetworkPhysician {
	return &NetworkPhysician{}
}

func (p *NetworkPhysician) OwnerPubID() string          { return p.PayerPubID }
func (p *NetworkPhysician) SetOwnerPubID(owner string) { p.PayerPubID = owner }

// Validate implements entity.Validatable.
func (p *NetworkPhysician) Validate(ctx context.Context) error {
	return validate.Struct(p, rules, func() map[string]any {
		return map[string]any{
			"isPcp":      p.IsPcp.Bool(),
			"panelLimit": validate.Optional(p.PanelLimit),
		}
	})
}

// ApplyFrom copies the editable fields of src.
func (p *NetworkPhysician) ApplyFrom(src *NetworkPhysician) {
	p.NetworkEntityPubID = src.NetworkEntityPubID
	p.FirstName = src.FirstName
	p.LastName = src.LastName
	p.NPI = src.NPI
	p.Specialty = src.Specialty
	p.IsPcp = src.IsPcp
	p.PanelLimit = src.PanelLimit
}

// FullName returns "Last, First".
func (p *NetworkPhysician) FullName() string {
	return p.LastName + ", " + p.FirstName
}
