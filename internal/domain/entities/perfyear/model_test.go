package perfyear

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthops/internal/core/apperror"
	"healthops/internal/core/types"
)

func validConfig() *PhysPerfYearConfig {
	return &PhysPerfYearConfig{
		PayerPubID:           "0192f0c6-0000-7000-8000-000000000001",
		PerfYear:             2026,
		QualityWeight:        types.MustDecimal("0.6"),
		CostWeight:           types.MustDecimal("0.4"),
		SharedSavingsRate:    types.MustDecimal("0.5"),
		PmpmBenchmark:        types.MustDecimal("412.50"),
		MinAttributedMembers: 100,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate(context.Background()))

	tests := []struct {
		name   string
		mutate func(c *PhysPerfYearConfig)
		want   map[string]string
	}{
		{
			name:   "weights must sum to one",
			mutate: func(c *PhysPerfYearConfig) { c.CostWeight = types.MustDecimal("0.3") },
			want:   map[string]string{"costWeight": "quality and cost weights must sum to 1"},
		},
		{
			name:   "weight above one",
			mutate: func(c *PhysPerfYearConfig) { c.QualityWeight = types.MustDecimal("1.6"); c.CostWeight = types.MustDecimal("-0.6") },
			want: map[string]string{
				"qualityWeight": "must be between 0 and 1",
				"costWeight":    "must be between 0 and 1",
			},
		},
		{
			name:   "negative benchmark",
			mutate: func(c *PhysPerfYearConfig) { c.PmpmBenchmark = types.MustDecimal("-1") },
			want:   map[string]string{"pmpmBenchmark": "must not be negative"},
		},
		{
			name:   "year out of range",
			mutate: func(c *PhysPerfYearConfig) { c.PerfYear = 1999 },
			want:   map[string]string{"perfYear": "must be 2000 or more"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			res := apperror.Surface(c.Validate(context.Background()))
			require.NotNil(t, res)
			assert.Equal(t, tt.want, res.ValidationErrors)
		})
	}
}
