/*

This file contains the liquidation engine: the liquidatability predicate,
the partial/insolvent repayment branches, and the seizure accounting.

Conservation invariant maintained by every outcome:

	collateral_seized == liquidator_bonus + collateral_to_reserves

The bonus leaves the system entirely; the remainder returns to the pool's
reserves.

*/

package liquidation

import (
	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/Fadi7anna/omnipair-gamm-risk/internal/config"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/logger"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/types"
)

// Engine evaluates positions against an immutable liquidation configuration
// and tracks running totals across a run.
type Engine struct {
	closeFactorBps int64
	incentiveBps   int64
	logger         zerolog.Logger

	totalLiquidations     int
	totalBadDebt          sdkmath.Int
	totalLiquidatedDebt   sdkmath.Int
	totalSeizedCollateral sdkmath.Int
}

// NewEngine builds a liquidation engine. With partial liquidation disabled
// the close factor is forced to 10,000 bps, i.e. full repayment.
func NewEngine(cfg config.LiquidationConfig) *Engine {
	closeFactor := cfg.CloseFactorBps
	if !cfg.PartialLiquidation {
		closeFactor = config.BPSDenominator
	}
	return &Engine{
		closeFactorBps:        closeFactor,
		incentiveBps:          cfg.LiquidationIncentiveBps,
		logger:                logger.GetForComponent("liquidation_engine"),
		totalBadDebt:          sdkmath.ZeroInt(),
		totalLiquidatedDebt:   sdkmath.ZeroInt(),
		totalSeizedCollateral: sdkmath.ZeroInt(),
	}
}

// IsLiquidatable checks the undercollateralization predicate. The boundary
// is inclusive: exact equality with the borrow limit triggers liquidation.
// With zero collateral value, any positive debt is liquidatable.
func IsLiquidatable(collateralValue, debtAmount sdkmath.Int, liquidationCFBps int64) bool {
	if collateralValue.IsZero() {
		return debtAmount.IsPositive()
	}
	borrowLimit := collateralValue.MulRaw(liquidationCFBps).Quo(config.BPSDenom)
	return debtAmount.GTE(borrowLimit)
}

// Evaluate computes the liquidation outcome for one position. It performs no
// state change on the engine; CheckAndLiquidate additionally records totals
// for executed liquidations.
func Evaluate(
	collateralAmount sdkmath.Int,
	collateralPrice sdkmath.Int,
	debtAmount sdkmath.Int,
	liquidationCFBps int64,
	closeFactorBps int64,
	incentiveBps int64,
) types.LiquidationOutcome {
	collateralValue := collateralAmount.Mul(collateralPrice).Quo(config.NAD)
	borrowLimit := collateralValue.MulRaw(liquidationCFBps).Quo(config.BPSDenom)

	if !IsLiquidatable(collateralValue, debtAmount, liquidationCFBps) {
		return types.LiquidationOutcome{
			Liquidatable:    false,
			HealthFactorPct: HealthFactorPct(collateralValue, debtAmount, liquidationCFBps),
			CollateralValue: collateralValue,
			DebtAmount:      debtAmount,
			BorrowLimit:     borrowLimit,
		}
	}

	isInsolvent := debtAmount.GT(collateralValue)

	var debtToRepay sdkmath.Int
	if isInsolvent {
		// Attempt full repayment even though collateral cannot cover it.
		debtToRepay = debtAmount
	} else {
		partial := debtAmount.MulRaw(closeFactorBps).Quo(config.BPSDenom)
		debtToRepay = sdkmath.MinInt(debtAmount, partial)
	}

	// A zero price leaves nothing seizable; the whole debt becomes bad debt
	// through the insolvent branch above.
	collateralSeized := sdkmath.ZeroInt()
	if collateralPrice.IsPositive() {
		collateralSeized = debtToRepay.Mul(config.NAD).Quo(collateralPrice)
		collateralSeized = sdkmath.MinInt(collateralSeized, collateralAmount)
	}

	liquidatorBonus := collateralSeized.MulRaw(incentiveBps).Quo(config.BPSDenom)

	collateralToReserves := collateralSeized.Sub(liquidatorBonus)
	if collateralToReserves.IsNegative() {
		collateralToReserves = sdkmath.ZeroInt()
	}

	badDebt := sdkmath.ZeroInt()
	if isInsolvent {
		badDebt = sdkmath.MaxInt(sdkmath.ZeroInt(), debtAmount.Sub(collateralValue))
	}

	bonusValue := sdkmath.ZeroInt()
	if collateralPrice.IsPositive() {
		bonusValue = liquidatorBonus.Mul(collateralPrice).Quo(config.NAD)
	}

	return types.LiquidationOutcome{
		Liquidatable:         true,
		IsInsolvent:          isInsolvent,
		DebtToRepay:          debtToRepay,
		CollateralSeized:     collateralSeized,
		LiquidatorBonus:      liquidatorBonus,
		CollateralToReserves: collateralToReserves,
		BadDebt:              badDebt,
		RemainingCollateral:  collateralAmount.Sub(collateralSeized),
		RemainingDebt:        debtAmount.Sub(debtToRepay),
		LiquidatorProfitUSD:  bonusValue.Sub(debtToRepay),
		HealthFactorPct:      0, // underwater
		CollateralValue:      collateralValue,
		DebtAmount:           debtAmount,
		BorrowLimit:          borrowLimit,
	}
}

// CheckAndLiquidate evaluates a position under the engine's configuration
// and, when it is liquidatable, records the outcome into the running totals.
func (e *Engine) CheckAndLiquidate(
	collateralAmount sdkmath.Int,
	collateralPrice sdkmath.Int,
	debtAmount sdkmath.Int,
	liquidationCFBps int64,
) types.LiquidationOutcome {
	outcome := Evaluate(
		collateralAmount, collateralPrice, debtAmount,
		liquidationCFBps, e.closeFactorBps, e.incentiveBps,
	)

	if outcome.Liquidatable {
		e.totalLiquidations++
		e.totalBadDebt = e.totalBadDebt.Add(outcome.BadDebt)
		e.totalLiquidatedDebt = e.totalLiquidatedDebt.Add(outcome.DebtToRepay)
		e.totalSeizedCollateral = e.totalSeizedCollateral.Add(outcome.CollateralSeized)

		e.logger.Debug().
			Bool("insolvent", outcome.IsInsolvent).
			Str("debtRepaid", outcome.DebtToRepay.String()).
			Str("collateralSeized", outcome.CollateralSeized.String()).
			Str("badDebt", outcome.BadDebt.String()).
			Msg("Position liquidated")
	}

	return outcome
}

// Statistics holds the engine's running totals.
type Statistics struct {
	TotalLiquidations     int         `json:"total_liquidations"`
	TotalBadDebt          sdkmath.Int `json:"total_bad_debt"`
	TotalLiquidatedDebt   sdkmath.Int `json:"total_liquidated_debt"`
	TotalSeizedCollateral sdkmath.Int `json:"total_seized_collateral"`
	BadDebtRatePct        int64       `json:"bad_debt_rate_pct"`
}

// Statistics returns the totals accumulated so far.
func (e *Engine) Statistics() Statistics {
	rate := int64(0)
	if e.totalLiquidatedDebt.IsPositive() {
		rate = e.totalBadDebt.MulRaw(100).Quo(e.totalLiquidatedDebt).Int64()
	}
	return Statistics{
		TotalLiquidations:     e.totalLiquidations,
		TotalBadDebt:          e.totalBadDebt,
		TotalLiquidatedDebt:   e.totalLiquidatedDebt,
		TotalSeizedCollateral: e.totalSeizedCollateral,
		BadDebtRatePct:        rate,
	}
}

// TotalBadDebt exposes the cumulative bad debt for snapshotting.
func (e *Engine) TotalBadDebt() sdkmath.Int {
	return e.totalBadDebt
}

// TotalLiquidations exposes the cumulative liquidation count.
func (e *Engine) TotalLiquidations() int {
	return e.totalLiquidations
}

// HealthFactorPct reports borrow limit over debt as an integer percentage
// (106 means a 1.06 health factor). Zero debt reports the 999 sentinel,
// effectively infinite health.
func HealthFactorPct(collateralValue, debtAmount sdkmath.Int, liquidationCFBps int64) int64 {
	if debtAmount.IsZero() {
		return config.HealthSentinel
	}
	borrowLimit := collateralValue.MulRaw(liquidationCFBps).Quo(config.BPSDenom)
	hf := borrowLimit.MulRaw(100).Quo(debtAmount)
	if !hf.IsInt64() {
		return config.HealthSentinel
	}
	return hf.Int64()
}

// EstimateLiquidationPrice returns the price at which a position crosses the
// liquidation threshold: debt / (collateral * liquidationCF).
func EstimateLiquidationPrice(collateralAmount, debtAmount sdkmath.Int, liquidationCFBps int64) sdkmath.Int {
	if collateralAmount.IsZero() || liquidationCFBps <= 0 {
		return sdkmath.ZeroInt()
	}
	discounted := collateralAmount.MulRaw(liquidationCFBps).Quo(config.BPSDenom)
	if discounted.IsZero() {
		return sdkmath.ZeroInt()
	}
	return debtAmount.Mul(config.NAD).Quo(discounted)
}
