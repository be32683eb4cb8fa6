/*

This file contains the protocol constants used across the simulation engine.

The values mirror the on-chain constants of the reference lending protocol:
all amounts and prices are carried as integers scaled by NAD (1e9), and all
ratios are expressed in basis points (10,000 bps = 100%).

*/

package config

import (
	sdkmath "cosmossdk.io/math"
)

const (
	// NADDecimals is the number of decimals behind the NAD scale factor.
	NADDecimals = 9

	// BPSDenominator is the basis-point denominator (100% = 10,000 bps).
	BPSDenominator = 10_000

	// CloseFactorBPS is the portion of debt repaid in one partial liquidation.
	CloseFactorBPS = 5_000

	// MaxCollateralFactorBPS caps the collateral factor at 85%.
	MaxCollateralFactorBPS = 8_500

	// LTVBufferBPS is the gap between the max-borrow CF and the liquidation CF.
	LTVBufferBPS = 500

	// LiquidationIncentiveBPS is the liquidator bonus (3%).
	LiquidationIncentiveBPS = 300

	// MinHalfLife and MaxHalfLife bound the EMA half-life in seconds.
	MinHalfLife = 60
	MaxHalfLife = 43_200

	// DefaultHalfLife is one minute.
	DefaultHalfLife = 60

	// HealthSentinel is reported as the protocol health / health factor when
	// there is no debt to measure against.
	HealthSentinel = 999
)

var (
	// NAD is the fixed-point scale factor (1e9) as an sdkmath.Int.
	NAD = sdkmath.NewInt(1_000_000_000)

	// BPSDenom is BPSDenominator as an sdkmath.Int for ratio arithmetic.
	BPSDenom = sdkmath.NewInt(BPSDenominator)
)
