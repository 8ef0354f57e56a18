package networkphysician

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"healthops/internal/core/apperror"
)

func intPtr(n int) *int { return &n }

func TestValidate_PCPNeedsPanel(t *testing.T) {
	p := &NetworkPhysician{
		PayerPubID: "0192f0c6-0000-7000-8000-000000000001",
		FirstName:  "Ada",
		LastName:   "Moss",
		NPI:        "1234567893",
		IsPcp:      true,
	}

	res := apperror.Surface(p.Validate(context.Background()))
	assert.Equal(t, map[string]string{"panelLimit": "is required for primary care physicians"}, res.ValidationErrors)

	p.PanelLimit = intPtr(0)
	res = apperror.Surface(p.Validate(context.Background()))
	assert.Equal(t, map[string]string{"panelLimit": "is required for primary care physicians"}, res.ValidationErrors)

	p.PanelLimit = intPtr(1200)
	assert.NoError(t, p.Validate(context.Background()))

	p.IsPcp = false
	p.PanelLimit = nil
	assert.NoError(t, p.Validate(context.Background()))
}

func TestValidate_NPICheckDigit(t *testing.T) {
	p := &NetworkPhysician{
		PayerPubID: "0192f0c6-0000-7000-8000-000000000001",
		FirstName:  "Ada",
		LastName:   "Moss",
		NPI:        "1234567890",
	}

	res := apperror.Surface(p.Validate(context.Background()))
	assert.Equal(t, map[string]string{"npi": "must be a valid 10-digit NPI"}, res.ValidationErrors)
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Moss, Ada", (&NetworkPhysician{FirstName: "Ada", LastName: "Moss"}).FullName())
}
