/*
This file contains common utility functions for converting between float64
values and NAD-scaled SDK integers, and the integer square root used by the
collateral factor curve.
*/

package utils

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	sdkmath "cosmossdk.io/math"

	"github.com/Fadi7anna/omnipair-gamm-risk/internal/config"
)

// Error definitions for zero-tolerance error handling
var (
	ErrAmountNil      = errors.New("amount is nil")
	ErrAmountNegative = errors.New("amount is negative")
	ErrNotFinite      = errors.New("value is not finite")
)

// FloatToNAD converts a float64 to a NAD-scaled sdkmath.Int, truncating any
// precision below 1e-9. The string round-trip avoids binary float artifacts.
func FloatToNAD(amount float64) (sdkmath.Int, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: amount is %f", ErrNotFinite, amount)
	}
	if amount < 0 {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	if amount == 0 {
		return sdkmath.ZeroInt(), nil
	}

	amountStr := fmt.Sprintf("%.9f", amount)
	dec, err := sdkmath.LegacyNewDecFromStr(amountStr)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to parse %q as decimal: %w", amountStr, err)
	}

	return dec.MulInt(config.NAD).TruncateInt(), nil
}

// NADToFloat converts a NAD-scaled sdkmath.Int to float64 for reporting.
// Core engine math never round-trips through this.
func NADToFloat(amount sdkmath.Int) (float64, error) {
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	result, err := sdkmath.LegacyNewDecFromInt(amount).QuoInt(config.NAD).Float64()
	if err != nil {
		return 0, err
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, result)
	}
	return result, nil
}

// MustFloatToNAD is FloatToNAD for static literals in presets and tests.
func MustFloatToNAD(amount float64) sdkmath.Int {
	result, err := FloatToNAD(amount)
	if err != nil {
		panic(err)
	}
	return result
}

// IntSqrt returns the floor of the square root of a non-negative sdkmath.Int.
// sdkmath exposes no integer square root, so this goes through the big.Int
// backing value; callers pre-scale the radicand by NAD so the result is
// itself NAD-scaled.
func IntSqrt(value sdkmath.Int) (sdkmath.Int, error) {
	if value.IsNil() {
		return sdkmath.ZeroInt(), ErrAmountNil
	}
	if value.IsNegative() {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	root := new(big.Int).Sqrt(value.BigInt())
	return sdkmath.NewIntFromBigInt(root), nil
}

// BpsToFloat converts basis points to a plain fraction (7500 -> 0.75).
func BpsToFloat(bps int64) float64 {
	return float64(bps) / float64(config.BPSDenominator)
}
