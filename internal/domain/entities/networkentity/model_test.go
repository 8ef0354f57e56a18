package networkentity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"healthops/internal/core/apperror"
)

func TestValidate_FacilityNeedsNPI(t *testing.T) {
	ne := &NetworkEntity{
		PayerPubID: "0192f0c6-0000-7000-8000-000000000001",
		EntityName: "St. Mary",
		EntityType: TypeFacility,
		TIN:        "12-3456789",
	}

	res := apperror.Surface(ne.Validate(context.Background()))
	assert.Equal(t, map[string]string{"npi": "is required for facilities"}, res.ValidationErrors)

	npi := "1234567893"
	ne.NPI = &npi
	assert.NoError(t, ne.Validate(context.Background()))

	ne.NPI = nil
	ne.EntityType = TypeGroup
	assert.NoError(t, ne.Validate(context.Background()))
}

func TestValidate_FieldErrorsComeFirst(t *testing.T) {
	ne := &NetworkEntity{
		PayerPubID: "0192f0c6-0000-7000-8000-000000000001",
		EntityName: "St. Mary",
		EntityType: TypeFacility,
		TIN:        "12345",
	}

	res := apperror.Surface(ne.Validate(context.Background()))
	assert.Equal(t, map[string]string{"tin": "must be a 9-digit tax identification number"}, res.ValidationErrors)
}
