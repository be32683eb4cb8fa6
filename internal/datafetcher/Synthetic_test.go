package datafetcher

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fadi7anna/omnipair-gamm-risk/internal/types"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/utils"
)

func TestSyntheticSeriesAreValid(t *testing.T) {
	for _, event := range CrisisEvents {
		t.Run(event.Key, func(t *testing.T) {
			series, err := GenerateSyntheticCrisis(event.Key)
			require.NoError(t, err)
			require.NoError(t, types.ValidateSeries(series))
			assert.Greater(t, len(series), 100)
		})
	}
}

func TestGenerateSyntheticCrisisUnknownKey(t *testing.T) {
	_, err := GenerateSyntheticCrisis("dot_com_bubble")
	require.ErrorIs(t, err, ErrUnknownCrisis)
}

func TestMangoExploitShape(t *testing.T) {
	series := GenerateMangoExploit()

	peak := sdkmath.ZeroInt()
	for _, sample := range series {
		if sample.Price.GT(peak) {
			peak = sample.Price
		}
	}

	first := series[0].Price
	last := series[len(series)-1].Price

	// Pump far above the starting price, then back near the floor.
	assert.True(t, peak.GT(first.MulRaw(20)), "peak %s vs start %s", peak, first)
	assert.True(t, last.LT(peak.QuoRaw(10)), "aftermath must give back the pump")
}

func TestLunaCollapseShape(t *testing.T) {
	series := GenerateLunaCollapse()

	first := series[0].Price
	last := series[len(series)-1].Price

	// $80 to fractions of a cent.
	floor := utils.MustFloatToNAD(0.01)
	assert.True(t, first.GT(utils.MustFloatToNAD(70)))
	assert.True(t, last.LT(floor), "final price %s must be below $0.01", last)
}

func TestFTTCollapseShape(t *testing.T) {
	series := GenerateFTTCollapse()

	first := series[0].Price
	last := series[len(series)-1].Price

	// Roughly 90% drawdown, never below the $2 floor.
	assert.True(t, last.LT(first.QuoRaw(8)))
	assert.True(t, last.GTE(utils.MustFloatToNAD(2.0)))
}
