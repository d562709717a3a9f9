package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSector(t *testing.T) {
	tests := []struct {
		raw  string
		want Sector
	}{
		{"Technology", SectorTechnology},
		{"Information Technology", SectorTechnology},
		{"HEALTHCARE", SectorHealthcare},
		{"Financial Services", SectorFinancial},
		{"financial", SectorFinancial},
		{"Energy", SectorEnergy},
		{"other", SectorOther},
		{"Consumer Defensive", SectorOther},
		{"", SectorUnknown},
		{"   ", SectorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSector(tt.raw))
		})
	}
}

func TestSectorFlags(t *testing.T) {
	assert.True(t, SectorTechnology.IsGrowth())
	assert.True(t, SectorHealthcare.IsGrowth())
	assert.False(t, SectorEnergy.IsGrowth())

	assert.True(t, SectorEnergy.IsVolatile())
	assert.False(t, SectorFinancial.IsVolatile())
	assert.False(t, SectorUnknown.IsVolatile())
}

func TestRiskTierOrdering(t *testing.T) {
	assert.True(t, RiskLow.AtMost(RiskMedium))
	assert.True(t, RiskMedium.AtMost(RiskMedium))
	assert.False(t, RiskHigh.AtMost(RiskMedium))
	assert.False(t, RiskTier("Extreme").AtMost(RiskHigh))
}
