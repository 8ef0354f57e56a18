// Package client provides the Client entity: a customer organisation of the
// platform and the root owner of payers and VBPay records.
package client

import (
	"context"

	"healthops/internal/core/entity"
	"healthops/internal/core/validate"
)

// EntityName is used in messages and cache tags.
const EntityName = "client"

// Client is self-owned: grants and uniqueness are keyed by its own pubId.
type Client struct {
	entity.Audited

	ClientName string `db:"clientName" json:"clientName" validate:"required,max=120"`

	// ClientCode is a short code used in exports and file names.
	ClientCode string `db:"clientCode" json:"clientCode" validate:"required,max=20,alphanum"`

	// Timezone is an IANA zone used for reporting periods.
	Timezone string `db:"timezone" json:"timezone" validate:"required,timezone"`

	Description *string `db:"description" json:"description,omitempty" validate:"omitempty,max=500"`
}

// New creates an empty Client.
func New() *Client {
	return &Client{}
}

// OwnerPubID implements entity.Entity; a client owns itself.
func (c *Client) OwnerPubID() string { return c.PubID }

// SetOwnerPubID implements entity.Entity; clients have no parent.
func (c *Client) SetOwnerPubID(string) {}

// Validate implements entity.Validatable.
func (c *Client) Validate(ctx context.Context) error {
	return validate.Struct(c, nil, nil)
}

// ApplyFrom copies the editable fields of src.
func (c *Client) ApplyFrom(src *Client) {
	c.ClientName = src.ClientName
	c.ClientCode = src.ClientCode
	c.Timezone = src.Timezone
	c.Description = src.Description
}
