/*

This file contains the EMA price oracle: a time-weighted exponential-decay
filter that turns a raw AMM spot price into a manipulation-resistant lending
price.

The decay factor is recomputed from elapsed wall-clock time rather than a
fixed tick count, so the filter stays correct under irregular sampling:
alpha = exp(-dt * ln(2) / half_life), and 50% of the weight moves to new
observations every half-life.

*/

package oracle

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"

	"github.com/Fadi7anna/omnipair-gamm-risk/internal/config"
)

var ErrHalfLifeOutOfRange = errors.New("EMA half-life out of range")

// emaState carries the decay state. Owned exclusively by one oracle
// instance and mutated only by Update.
type emaState struct {
	halfLife   int64       // seconds, constant for the life of the oracle
	lastEMA    sdkmath.Int // NAD-scaled; zero means uninitialized
	lastUpdate int64       // unix seconds
}

// PriceOracle converts spot prices into lending prices. With EMA disabled it
// is a pass-through (traditional oracle baseline) and never touches decay
// state.
type PriceOracle struct {
	useEMA bool
	state  emaState
}

// NewPriceOracle builds an oracle. When useEMA is set, halfLife must lie in
// [config.MinHalfLife, config.MaxHalfLife] seconds.
func NewPriceOracle(useEMA bool, halfLife int64) (*PriceOracle, error) {
	if useEMA && (halfLife < config.MinHalfLife || halfLife > config.MaxHalfLife) {
		return nil, fmt.Errorf("%w: %d seconds (must be in [%d, %d])",
			ErrHalfLifeOutOfRange, halfLife, config.MinHalfLife, config.MaxHalfLife)
	}
	return &PriceOracle{
		useEMA: useEMA,
		state: emaState{
			halfLife: halfLife,
			lastEMA:  sdkmath.ZeroInt(),
		},
	}, nil
}

// EMAEnabled reports whether the oracle smooths or passes spot through.
func (o *PriceOracle) EMAEnabled() bool {
	return o.useEMA
}

// Update returns the lending price for the given spot observation and
// commits the new EMA state.
//
// First observation initializes the EMA to the spot price. Repeated calls at
// the same or an earlier timestamp return the stored EMA unchanged, which
// makes Update idempotent within one step.
func (o *PriceOracle) Update(spotPrice sdkmath.Int, timestamp int64) sdkmath.Int {
	if !o.useEMA {
		return spotPrice
	}

	if o.state.lastEMA.IsZero() {
		o.state.lastEMA = spotPrice
		o.state.lastUpdate = timestamp
		return spotPrice
	}

	dt := timestamp - o.state.lastUpdate
	if dt <= 0 {
		return o.state.lastEMA
	}

	newEMA := decay(spotPrice, o.state.lastEMA, dt, o.state.halfLife)
	o.state.lastEMA = newEMA
	o.state.lastUpdate = timestamp
	return newEMA
}

// Peek computes what Update would return without committing state.
func (o *PriceOracle) Peek(spotPrice sdkmath.Int, timestamp int64) sdkmath.Int {
	if !o.useEMA {
		return spotPrice
	}
	if o.state.lastEMA.IsZero() {
		return spotPrice
	}
	dt := timestamp - o.state.lastUpdate
	if dt <= 0 {
		return o.state.lastEMA
	}
	return decay(spotPrice, o.state.lastEMA, dt, o.state.halfLife)
}

// decay blends spot into the stored EMA with weight 1-alpha, where
// alpha = exp(-dt * ln(2) / halfLife). The result truncates to an integer,
// matching the reference protocol's rounding.
func decay(spotPrice, lastEMA sdkmath.Int, dt, halfLife int64) sdkmath.Int {
	alpha := math.Exp(-float64(dt) * math.Ln2 / float64(halfLife))

	alphaDec := sdkmath.LegacyMustNewDecFromStr(fmt.Sprintf("%.18f", alpha))
	oneMinusAlpha := sdkmath.LegacyOneDec().Sub(alphaDec)

	blended := oneMinusAlpha.MulInt(spotPrice).Add(alphaDec.MulInt(lastEMA))
	return blended.TruncateInt()
}

// Lag returns the relative divergence between spot and EMA as a fraction
// (0.05 means 5%). Zero EMA reports zero lag.
func Lag(spotPrice, emaPrice sdkmath.Int) float64 {
	if emaPrice.IsZero() {
		return 0
	}
	diff := spotPrice.Sub(emaPrice).Abs()
	ratio := sdkmath.LegacyNewDecFromInt(diff).Quo(sdkmath.LegacyNewDecFromInt(emaPrice))
	f, err := ratio.Float64()
	if err != nil {
		return 0
	}
	return f
}

// EstimateConvergenceTime estimates the seconds until the EMA closes the
// current lag down to targetLag, in whole half-lives.
func EstimateConvergenceTime(currentLag float64, halfLife int64, targetLag float64) int64 {
	if currentLag <= targetLag || targetLag <= 0 {
		return 0
	}
	halfLives := math.Log(currentLag/targetLag) / math.Ln2
	return int64(halfLives * float64(halfLife))
}
