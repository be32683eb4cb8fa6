package pool

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fadi7anna/omnipair-gamm-risk/internal/config"
)

func nad(units int64) sdkmath.Int {
	return sdkmath.NewInt(units).Mul(config.NAD)
}

// price builds a NAD-scaled price from milli-units (700 -> $0.70).
func price(milli int64) sdkmath.Int {
	return sdkmath.NewInt(milli).MulRaw(1_000_000)
}

func newTraditionalPool(t *testing.T) *Pool {
	t.Helper()
	p, err := NewPool(config.TraditionalLending, nad(1_000_000), nad(1_000_000), 1000)
	require.NoError(t, err)
	return p
}

func TestNewPoolRejectsInvalidConfig(t *testing.T) {
	bad := config.TraditionalLending
	bad.CollateralFactor.FixedCFBps = 0 // neither fixed nor dynamic

	_, err := NewPool(bad, nad(1000), nad(1000), 0)
	require.ErrorIs(t, err, config.ErrNoBaseCF)
}

func TestSpotPriceFromReserves(t *testing.T) {
	p, err := NewPool(config.TraditionalLending, nad(1000), nad(500), 0)
	require.NoError(t, err)

	assert.Equal(t, price(500), p.SpotPrice())
}

func TestOpenPositionTraditional(t *testing.T) {
	p := newTraditionalPool(t)

	pos, err := p.OpenPosition(nad(10_000), 1.0, 1000)
	require.NoError(t, err)

	// Fixed 75% CF at $1: max borrow 7500, taken in full.
	assert.Equal(t, nad(7_500), pos.DebtAmount)
	assert.Equal(t, nad(10_000), pos.CollateralAmount)
	assert.False(t, pos.Liquidated)
}

func TestOpenPositionRejectsBadLTV(t *testing.T) {
	p := newTraditionalPool(t)

	_, err := p.OpenPosition(nad(100), -0.1, 1000)
	require.Error(t, err)
	_, err = p.OpenPosition(nad(100), 1.5, 1000)
	require.Error(t, err)
}

func TestOpenPositionPartialLTV(t *testing.T) {
	p := newTraditionalPool(t)

	pos, err := p.OpenPosition(nad(10_000), 0.5, 1000)
	require.NoError(t, err)

	// Half of the 7500 max borrow.
	assert.Equal(t, nad(3_750), pos.DebtAmount)
}

func TestOpenPositionDrainsQuoteReserve(t *testing.T) {
	p := newTraditionalPool(t)

	before := p.reserveQuote
	pos, err := p.OpenPosition(nad(10_000), 1.0, 1000)
	require.NoError(t, err)

	assert.Equal(t, before.Sub(pos.DebtAmount), p.reserveQuote)
	assert.Equal(t, pos.DebtAmount, p.totalDebt)
	assert.Equal(t, nad(10_000), p.totalCollateral)
}

func TestStepSnapshotsEachSample(t *testing.T) {
	p := newTraditionalPool(t)

	s1 := p.Step(price(1100), 2000)
	s2 := p.Step(price(1200), 3000)

	assert.Equal(t, int64(2000), s1.Timestamp)
	assert.Equal(t, price(1100), s1.SpotPrice)
	// Pass-through oracle: lending price tracks spot exactly.
	assert.Equal(t, s1.SpotPrice, s1.LendingPrice)

	assert.Equal(t, price(1200), s2.SpotPrice)
	assert.Len(t, p.Snapshots(), 2)
}

func TestStepCrashLiquidatesInsolventPosition(t *testing.T) {
	p := newTraditionalPool(t)

	pos, err := p.OpenPosition(nad(10_000), 1.0, 1000)
	require.NoError(t, err)
	require.Equal(t, nad(7_500), pos.DebtAmount)

	// Crash to $0.70: collateral value 7000 against 7500 debt.
	snap := p.Step(price(700), 2000)

	positions := p.Positions()
	require.Len(t, positions, 1)
	assert.True(t, positions[0].Liquidated)
	assert.Equal(t, int64(2000), positions[0].LiquidationTime)

	// Insolvent by 500: the shortfall lands in bad debt.
	assert.Equal(t, nad(500), snap.TotalBadDebt)
	assert.Equal(t, nad(500), positions[0].BadDebtAccrued)
	assert.Zero(t, snap.ActivePositions)

	events := p.Events()
	require.Len(t, events, 1)
	assert.True(t, events[0].Outcome.IsInsolvent)
}

func TestStepModerateDropPartiallyLiquidates(t *testing.T) {
	p := newTraditionalPool(t)

	_, err := p.OpenPosition(nad(10_000), 1.0, 1000)
	require.NoError(t, err)

	// $0.90: value 9000, limit 6750, debt 7500. Solvent, so the close
	// factor repays half and the position survives the step.
	snap := p.Step(price(900), 2000)

	positions := p.Positions()
	require.Len(t, positions, 1)
	assert.True(t, positions[0].Liquidated)
	assert.Equal(t, nad(3_750), positions[0].DebtAmount)
	assert.True(t, snap.TotalBadDebt.IsZero())
}

func TestStepHealthyPositionUntouched(t *testing.T) {
	p := newTraditionalPool(t)

	_, err := p.OpenPosition(nad(10_000), 0.5, 1000)
	require.NoError(t, err)

	snap := p.Step(price(950), 2000)

	positions := p.Positions()
	assert.False(t, positions[0].Liquidated)
	assert.Equal(t, 1, snap.ActivePositions)
	assert.Empty(t, p.Events())
}

func TestEMALagDuringCrash(t *testing.T) {
	cfg := config.SimulationConfig{
		Name:       "ema-lag-test",
		EMAEnabled: true,
		HalfLife:   600,
		CollateralFactor: config.CollateralFactorConfig{
			FixedCFBps: 7_500,
			MaxCFBps:   config.MaxCollateralFactorBPS,
		},
		Liquidation: config.LiquidationConfig{
			CloseFactorBps:          config.CloseFactorBPS,
			LiquidationIncentiveBps: config.LiquidationIncentiveBPS,
			PartialLiquidation:      true,
		},
	}

	p, err := NewPool(cfg, nad(1_000_000), nad(1_000_000), 1000)
	require.NoError(t, err)

	// A 50% crash ten seconds in: the filter has closed almost none of it.
	snap := p.Step(price(500), 1010)

	assert.Equal(t, price(500), snap.SpotPrice)
	assert.True(t, snap.LendingPrice.GT(snap.SpotPrice),
		"EMA must lag a falling spot")
	assert.True(t, snap.LendingPrice.LT(price(1000)),
		"EMA must still move toward spot")
}

func TestProtocolHealthSentinelAtZeroDebt(t *testing.T) {
	p := newTraditionalPool(t)

	snap := p.Step(price(1000), 2000)
	assert.Equal(t, int64(config.HealthSentinel), snap.ProtocolHealthPct)
}

func TestStatisticsAggregation(t *testing.T) {
	p := newTraditionalPool(t)

	_, err := p.OpenPosition(nad(10_000), 1.0, 1000)
	require.NoError(t, err)
	_, err = p.OpenPosition(nad(10_000), 0.3, 1000)
	require.NoError(t, err)

	p.Step(price(700), 2000)

	stats := p.Statistics()
	assert.Equal(t, config.TraditionalLending.Name, stats.ConfigName)
	assert.Equal(t, 2, stats.TotalPositions)
	assert.Equal(t, 1, stats.LiquidatedPositions)
	assert.Equal(t, 1, stats.ActivePositions)
	assert.Equal(t, 1, stats.TotalLiquidations)
	assert.True(t, stats.TotalBadDebt.IsPositive())
}
