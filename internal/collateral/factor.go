/*

This file contains the collateral factor solver. Given a position's
collateral value and the pool's debt-side liquidity it derives the maximum
safe borrowing ratio from the AMM solvency curve, then optionally applies the
pessimistic spot/EMA divergence cap and the LTV safety buffer.

Derivation chain (all NAD-scaled integers, truncating division):

	1. base CF    — fixed, or from the curve Y = R1 * 2a/(2a+1+sqrt(4a+1))
	2. pessimistic cap — min(base, base*spot/ema), clamped to [100, maxCF]
	3. LTV buffer — maxAllowed = max(0, liquidationCF - buffer)
	4. max borrow — V * maxAllowed / BPS

*/

package collateral

import (
	sdkmath "cosmossdk.io/math"

	"github.com/Fadi7anna/omnipair-gamm-risk/internal/config"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/utils"
)

// minCFBps is the 1% floor applied by the pessimistic cap.
const minCFBps = 100

// Result carries the three outputs of one solver pass.
type Result struct {
	MaxBorrow        sdkmath.Int // NAD-scaled quote amount
	MaxAllowedCFBps  int64       // threshold for opening/increasing debt
	LiquidationCFBps int64       // threshold at which liquidation fires
}

// Solver derives borrowing thresholds under one immutable configuration.
type Solver struct {
	cfg config.CollateralFactorConfig
}

// NewSolver wraps a validated CollateralFactorConfig. Validation happens in
// config.SimulationConfig.Validate before any solver is built.
func NewSolver(cfg config.CollateralFactorConfig) *Solver {
	return &Solver{cfg: cfg}
}

// Solve computes (max borrow, max allowed CF, liquidation CF) for a
// position. Degenerate inputs — zero collateral, zero prices, or a zero
// debt reserve while dynamic CF is configured — resolve to a zero Result
// rather than an error, keeping the step loop exception-free.
func (s *Solver) Solve(
	collateralAmount sdkmath.Int,
	emaPrice sdkmath.Int,
	spotPrice sdkmath.Int,
	debtReserve sdkmath.Int,
) Result {
	zero := Result{MaxBorrow: sdkmath.ZeroInt()}

	if collateralAmount.IsZero() || emaPrice.IsZero() || spotPrice.IsZero() {
		return zero
	}

	// V = collateral value at the EMA price
	value := collateralAmount.Mul(emaPrice).Quo(config.NAD)
	if value.IsZero() {
		return zero
	}

	// Step 1: base CF — config validation guarantees exactly one branch.
	var baseCFBps int64
	if s.cfg.FixedCFBps > 0 {
		baseCFBps = s.cfg.FixedCFBps
	} else {
		if debtReserve.IsZero() {
			return zero
		}
		baseCFBps = DynamicCF(collateralAmount, emaPrice, debtReserve)
	}

	// Step 2: pessimistic divergence cap.
	var liquidationCFBps int64
	if s.cfg.PessimisticCap {
		liquidationCFBps = pessimisticCFBps(baseCFBps, spotPrice, emaPrice, s.cfg.MaxCFBps)
	} else {
		liquidationCFBps = min64(baseCFBps, s.cfg.MaxCFBps)
	}

	// Step 3: LTV buffer.
	maxAllowedCFBps := liquidationCFBps
	if s.cfg.LTVBuffer {
		maxAllowedCFBps = liquidationCFBps - s.cfg.LTVBufferBps
		if maxAllowedCFBps < 0 {
			maxAllowedCFBps = 0
		}
	}

	// Step 4: max borrow limit.
	maxBorrow := value.MulRaw(maxAllowedCFBps).Quo(config.BPSDenom)

	return Result{
		MaxBorrow:        maxBorrow,
		MaxAllowedCFBps:  maxAllowedCFBps,
		LiquidationCFBps: liquidationCFBps,
	}
}

// DynamicCF derives the collateral factor from the AMM solvency curve:
// the ratio of the maximum serviceable borrow Y to the collateral value V,
// in basis points. Deeper debt-side liquidity yields a higher CF.
func DynamicCF(collateralAmount, emaPrice, debtReserve sdkmath.Int) int64 {
	if debtReserve.IsZero() {
		return 0
	}
	value := collateralAmount.Mul(emaPrice).Quo(config.NAD)
	if value.IsZero() {
		return 0
	}
	y := curveYFromV(value, debtReserve)
	return y.Mul(config.BPSDenom).Quo(value).Int64()
}

// curveYFromV solves the constant-product solvency curve exactly: given
// collateral value v and debt reserve r1, the largest Y the pool can service
// without breaking xy=k is
//
//	Y = R1 * t,  t = 2a / (2a + 1 + sqrt(4a + 1)),  a = V / R1
//
// All quantities are carried at NAD scale; the radicand is pre-multiplied by
// NAD so the integer square root comes out NAD-scaled itself, avoiding the
// precision drift a float sqrt would introduce for very large reserves.
func curveYFromV(v, r1 sdkmath.Int) sdkmath.Int {
	if v.IsZero() || r1.IsZero() {
		return sdkmath.ZeroInt()
	}

	// a scaled by NAD
	aScaled := v.Mul(config.NAD).Quo(r1)

	fourAPlusOne := aScaled.MulRaw(4).Add(config.NAD)
	sqrtTerm, err := utils.IntSqrt(fourAPlusOne.Mul(config.NAD))
	if err != nil {
		return sdkmath.ZeroInt()
	}

	numerator := aScaled.MulRaw(2).Mul(config.NAD)
	denominator := aScaled.MulRaw(2).Add(config.NAD).Add(sqrtTerm)
	if denominator.IsZero() {
		return sdkmath.ZeroInt()
	}

	tScaled := numerator.Quo(denominator)
	return r1.Mul(tScaled).Quo(config.NAD)
}

// pessimisticCFBps shrinks the base CF by spot/ema when spot lags the EMA,
// closing the front-running window while the filter catches up. It only ever
// shrinks or holds: a spot above the EMA never raises the CF. The result is
// clamped to [1%, maxCF]; a zero EMA clamps straight to the floor.
func pessimisticCFBps(baseCFBps int64, spotPrice, emaPrice sdkmath.Int, maxCFBps int64) int64 {
	if emaPrice.IsZero() {
		return minCFBps
	}

	// The shrunk value can exceed int64 when the EMA is tiny relative to
	// spot; it is only used when below the base, so compare before Int64.
	shrunk := spotPrice.MulRaw(baseCFBps).Quo(emaPrice)

	cf := baseCFBps
	if shrunk.LT(sdkmath.NewInt(baseCFBps)) {
		cf = shrunk.Int64()
	}
	if cf < minCFBps {
		cf = minCFBps
	}
	return min64(cf, maxCFBps)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
