package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllPresetsValidate(t *testing.T) {
	for _, preset := range AllPresets {
		assert.NoError(t, preset.Validate(), "preset %q must validate", preset.Name)
	}
}

func TestValidateRequiresExactlyOneBaseCF(t *testing.T) {
	cfg := TraditionalLending

	// Neither source configured.
	cfg.CollateralFactor.FixedCFBps = 0
	cfg.CollateralFactor.DynamicCF = false
	require.ErrorIs(t, cfg.Validate(), ErrNoBaseCF)

	// Both sources configured.
	cfg.CollateralFactor.FixedCFBps = 7_500
	cfg.CollateralFactor.DynamicCF = true
	require.ErrorIs(t, cfg.Validate(), ErrNoBaseCF)
}

func TestValidateHalfLifeBounds(t *testing.T) {
	cfg := OnlyEMA

	cfg.HalfLife = MinHalfLife - 1
	require.ErrorIs(t, cfg.Validate(), ErrHalfLifeOutOfRange)

	cfg.HalfLife = MaxHalfLife + 1
	require.ErrorIs(t, cfg.Validate(), ErrHalfLifeOutOfRange)

	cfg.HalfLife = MinHalfLife
	require.NoError(t, cfg.Validate())
	cfg.HalfLife = MaxHalfLife
	require.NoError(t, cfg.Validate())

	// Half-life is ignored when smoothing is off.
	cfg.EMAEnabled = false
	cfg.HalfLife = 0
	require.NoError(t, cfg.Validate())
}

func TestValidateBasisPointRanges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SimulationConfig)
	}{
		{"max CF zero", func(c *SimulationConfig) { c.CollateralFactor.MaxCFBps = 0 }},
		{"max CF above denominator", func(c *SimulationConfig) { c.CollateralFactor.MaxCFBps = BPSDenominator + 1 }},
		{"buffer zero while enabled", func(c *SimulationConfig) {
			c.CollateralFactor.LTVBuffer = true
			c.CollateralFactor.LTVBufferBps = 0
		}},
		{"close factor zero", func(c *SimulationConfig) { c.Liquidation.CloseFactorBps = 0 }},
		{"close factor above denominator", func(c *SimulationConfig) { c.Liquidation.CloseFactorBps = BPSDenominator + 1 }},
		{"negative incentive", func(c *SimulationConfig) { c.Liquidation.LiquidationIncentiveBps = -1 }},
		{"incentive at denominator", func(c *SimulationConfig) { c.Liquidation.LiquidationIncentiveBps = BPSDenominator }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := TraditionalLending
			tc.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidBPS)
		})
	}
}

func TestStringListsEnabledComponents(t *testing.T) {
	assert.Contains(t, FullGAMM.String(), "EMA")
	assert.Contains(t, FullGAMM.String(), "DynamicCF")
	assert.Contains(t, FullGAMM.String(), "PessimisticCap")
	assert.Contains(t, FullGAMM.String(), "LTVBuffer")

	assert.Contains(t, TraditionalLending.String(), "PartialLiq")
	assert.NotContains(t, TraditionalLending.String(), "EMA")
}
