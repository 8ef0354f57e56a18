package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthops/internal/core/apperror"
)

type Embedded struct {
	Code string `json:"code" validate:"required,max=5"`
}

type sample struct {
	Embedded
	Name        string  `json:"name" validate:"required,max=10"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=20"`
	Timezone    string  `json:"timezone" validate:"required,timezone"`
	NPI         *string `json:"npi,omitempty" validate:"omitempty,npi"`
	TIN         string  `json:"tin" validate:"omitempty,tin"`
	Kind        string  `json:"kind" validate:"omitempty,oneof=a b"`
}

func strPtr(s string) *string { return &s }

func TestNormalize_TrimsAndNilsEmptyOptionals(t *testing.T) {
	s := sample{
		Embedded:    Embedded{Code: "  AC  "},
		Name:        "  Acme ",
		Description: strPtr("   "),
		NPI:         strPtr(" 1234567893 "),
	}
	Normalize(&s)

	assert.Equal(t, "AC", s.Code)
	assert.Equal(t, "Acme", s.Name)
	assert.Nil(t, s.Description)
	require.NotNil(t, s.NPI)
	assert.Equal(t, "1234567893", *s.NPI)
}

func TestFields_UsesJSONNames(t *testing.T) {
	s := sample{
		Embedded: Embedded{Code: "TOOLONG"},
		Name:     "",
		Timezone: "Mars/Olympus",
		NPI:      strPtr("1234567890"),
		TIN:      "12-34",
		Kind:     "c",
	}
	errs := Fields(s)

	assert.Equal(t, "is required", errs["name"])
	assert.Equal(t, "must be at most 5 characters", errs["code"])
	assert.Equal(t, "must be a valid IANA timezone", errs["timezone"])
	assert.Equal(t, "must be a valid 10-digit NPI", errs["npi"])
	assert.Equal(t, "must be a 9-digit tax identification number", errs["tin"])
	assert.Equal(t, "must be one of: a, b", errs["kind"])
	assert.NotContains(t, errs, "description")
}

func TestFields_ValidStructReturnsNil(t *testing.T) {
	s := sample{Embedded: Embedded{Code: "AC"}, Name: "Acme", Timezone: "America/Chicago", TIN: "12-3456789"}
	assert.Nil(t, Fields(s))
}

func TestNormalizeThenValidate_EmptyOptionalPasses(t *testing.T) {
	s := sample{Embedded: Embedded{Code: "AC"}, Name: "Acme", Timezone: "UTC", NPI: strPtr("  ")}
	Normalize(&s)
	assert.Nil(t, Fields(s))
}

func TestIdentifiers(t *testing.T) {
	assert.True(t, IsNPI("1234567893"))
	assert.False(t, IsNPI("1234567890"))
	assert.False(t, IsNPI("12345"))
	assert.True(t, IsTIN("123456789"))
	assert.True(t, IsTIN("12-3456789"))
	assert.False(t, IsTIN("12345678A"))
}

func TestRuleSet_Check(t *testing.T) {
	rs := MustCompile([]string{"isPcp", "panelLimit", "effectiveDate", "terminationDate"},
		Rule{Field: "panelLimit", Expr: "!isPcp || (panelLimit != null && panelLimit > 0)", Message: "is required for primary care physicians"},
		Rule{Field: "terminationDate", Expr: "terminationDate == null || terminationDate > effectiveDate", Message: "must be after the effective date"},
	)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	errs := rs.Check(map[string]any{"isPcp": true, "panelLimit": nil, "effectiveDate": start, "terminationDate": nil})
	assert.Equal(t, map[string]string{"panelLimit": "is required for primary care physicians"}, errs)

	errs = rs.Check(map[string]any{"isPcp": true, "panelLimit": 1500, "effectiveDate": start, "terminationDate": start.AddDate(0, 0, -1)})
	assert.Equal(t, map[string]string{"terminationDate": "must be after the effective date"}, errs)

	errs = rs.Check(map[string]any{"isPcp": false, "panelLimit": nil, "effectiveDate": start, "terminationDate": start.AddDate(1, 0, 0)})
	assert.Nil(t, errs)
}

func TestCompile_RejectsUnknownVariable(t *testing.T) {
	_, err := Compile([]string{"a"}, Rule{Field: "a", Expr: "b > 1", Message: "x"})
	assert.Error(t, err)
}

func TestErrors_FirstMessageWins(t *testing.T) {
	errs := Errors{}
	errs.Merge(map[string]string{"name": "is required"})
	errs.Add("name", "other")
	errs.Add("code", "is invalid")

	err := errs.Err()
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"name": "is required", "code": "is invalid"}, appErr.Fields)

	assert.NoError(t, Errors{}.Err())
}
