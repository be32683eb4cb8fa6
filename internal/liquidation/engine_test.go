package liquidation

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

func defaultLiqConfig() config.LiquidationConfig {
	return config.LiquidationConfig{
		CloseFactorBps:          config.CloseFactorBPS,
		LiquidationIncentiveBps: config.LiquidationIncentiveBPS,
		PartialLiquidation:      true,
	}
}

func TestIsLiquidatableBoundaryInclusive(t *testing.T) {
	collateralValue := nad(1000)

	// Borrow limit at 85% CF is exactly 850.
	assert.False(t, IsLiquidatable(collateralValue, nad(849), 8_500))
	assert.True(t, IsLiquidatable(collateralValue, nad(850), 8_500))
	assert.True(t, IsLiquidatable(collateralValue, nad(851), 8_500))
}

func TestIsLiquidatableZeroCollateral(t *testing.T) {
	zero := sdkmath.ZeroInt()
	assert.True(t, IsLiquidatable(zero, sdkmath.OneInt(), 8_500))
	assert.False(t, IsLiquidatable(zero, zero, 8_500))
}

func TestEvaluateHealthyPosition(t *testing.T) {
	// 1000 units at $1, 800 debt, 85% CF: limit 850, HF 850/800 = 1.0625.
	outcome := Evaluate(nad(1000), nad(1), nad(800), 8_500, 5_000, 300)

	assert.False(t, outcome.Liquidatable)
	assert.Equal(t, int64(106), outcome.HealthFactorPct)
	assert.Equal(t, nad(1000), outcome.CollateralValue)
	assert.Equal(t, nad(850), outcome.BorrowLimit)
}

func TestEvaluatePartialLiquidation(t *testing.T) {
	// Solvent but over the limit: 1000 collateral value, 900 debt.
	outcome := Evaluate(nad(1000), nad(1), nad(900), 8_500, 5_000, 300)

	require.True(t, outcome.Liquidatable)
	assert.False(t, outcome.IsInsolvent)

	// Close factor repays half the debt.
	assert.Equal(t, nad(450), outcome.DebtToRepay)
	assert.Equal(t, nad(450), outcome.RemainingDebt)

	// Seizure at $1 matches the repaid amount; 3% goes to the liquidator.
	assert.Equal(t, nad(450), outcome.CollateralSeized)
	expectedBonus := nad(450).MulRaw(300).Quo(config.BPSDenom)
	assert.Equal(t, expectedBonus, outcome.LiquidatorBonus)

	assert.Equal(t, nad(550), outcome.RemainingCollateral)
	assert.True(t, outcome.BadDebt.IsZero())
}

func TestEvaluateInsolventPosition(t *testing.T) {
	// Debt exceeds collateral value: full repay attempt, shortfall is bad debt.
	outcome := Evaluate(nad(1000), nad(1), nad(1100), 8_500, 5_000, 300)

	require.True(t, outcome.Liquidatable)
	assert.True(t, outcome.IsInsolvent)

	assert.Equal(t, nad(1100), outcome.DebtToRepay)
	assert.True(t, outcome.RemainingDebt.IsZero())

	// Seizure is capped at the collateral on hand.
	assert.Equal(t, nad(1000), outcome.CollateralSeized)
	assert.True(t, outcome.RemainingCollateral.IsZero())

	assert.Equal(t, nad(100), outcome.BadDebt)
}

func TestEvaluateSeizureConservation(t *testing.T) {
	cases := []struct {
		name       string
		collateral sdkmath.Int
		price      sdkmath.Int
		debt       sdkmath.Int
	}{
		{"partial", nad(1000), nad(1), nad(900)},
		{"insolvent", nad(1000), nad(1), nad(1500)},
		{"fractional price", nad(333), nad(3), nad(900)},
		{"odd amounts", sdkmath.NewInt(1_234_567_891), nad(7), sdkmath.NewInt(7_654_321_099)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := Evaluate(tc.collateral, tc.price, tc.debt, 8_500, 5_000, 300)
			if !outcome.Liquidatable {
				t.Skipf("case not liquidatable")
			}
			sum := outcome.LiquidatorBonus.Add(outcome.CollateralToReserves)
			assert.Equal(t, outcome.CollateralSeized, sum,
				"seized collateral must split exactly into bonus and reserves")
		})
	}
}

func TestEvaluateZeroPrice(t *testing.T) {
	outcome := Evaluate(nad(1000), sdkmath.ZeroInt(), nad(500), 8_500, 5_000, 300)

	require.True(t, outcome.Liquidatable)
	assert.True(t, outcome.IsInsolvent)
	assert.True(t, outcome.CollateralSeized.IsZero())
	assert.True(t, outcome.LiquidatorBonus.IsZero())
	// Worthless collateral turns the entire debt into bad debt.
	assert.Equal(t, nad(500), outcome.BadDebt)
}

func TestEngineDisabledPartialForcesFullClose(t *testing.T) {
	e := NewEngine(config.LiquidationConfig{
		CloseFactorBps:          config.CloseFactorBPS,
		LiquidationIncentiveBps: config.LiquidationIncentiveBPS,
		PartialLiquidation:      false,
	})

	outcome := e.CheckAndLiquidate(nad(1000), nad(1), nad(900), 8_500)

	require.True(t, outcome.Liquidatable)
	assert.Equal(t, nad(900), outcome.DebtToRepay)
	assert.True(t, outcome.RemainingDebt.IsZero())
}

func TestEngineAccumulatesTotals(t *testing.T) {
	e := NewEngine(defaultLiqConfig())

	// Healthy position records nothing.
	e.CheckAndLiquidate(nad(1000), nad(1), nad(100), 8_500)
	assert.Zero(t, e.TotalLiquidations())

	e.CheckAndLiquidate(nad(1000), nad(1), nad(900), 8_500)
	e.CheckAndLiquidate(nad(1000), nad(1), nad(1200), 8_500)

	stats := e.Statistics()
	assert.Equal(t, 2, stats.TotalLiquidations)
	assert.Equal(t, nad(200), stats.TotalBadDebt)
	// 450 partial repay + 1200 full repay.
	assert.Equal(t, nad(1650), stats.TotalLiquidatedDebt)
	// 200 bad debt over 1650 liquidated debt, truncated percent.
	assert.Equal(t, int64(12), stats.BadDebtRatePct)
}

func TestHealthFactorPct(t *testing.T) {
	assert.Equal(t, int64(config.HealthSentinel), HealthFactorPct(nad(1000), sdkmath.ZeroInt(), 8_500))
	assert.Equal(t, int64(106), HealthFactorPct(nad(1000), nad(800), 8_500))
	assert.Equal(t, int64(85), HealthFactorPct(nad(1000), nad(1000), 8_500))
	assert.Equal(t, int64(0), HealthFactorPct(sdkmath.ZeroInt(), nad(100), 8_500))
}

func TestEstimateLiquidationPrice(t *testing.T) {
	// 1000 units, 425 debt, 85% CF: crosses at $0.50.
	price := EstimateLiquidationPrice(nad(1000), nad(425), 8_500)
	expected := sdkmath.NewInt(500_000_000) // 0.5 NAD-scaled
	assert.Equal(t, expected, price)

	assert.True(t, EstimateLiquidationPrice(sdkmath.ZeroInt(), nad(425), 8_500).IsZero())
	assert.True(t, EstimateLiquidationPrice(nad(1000), nad(425), 0).IsZero())
}
