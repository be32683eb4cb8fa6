/*

This file contains the simulation configuration type and the preset
configurations used for comparative risk analysis.

Each preset enables a different combination of the protocol's protective
mechanisms so that the marginal effect of every mechanism on bad debt and
liquidation volume can be measured against the same price trajectory.

*/

package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrHalfLifeOutOfRange = errors.New("EMA half-life out of range")
	ErrNoBaseCF           = errors.New("exactly one of dynamic CF or fixed CF must be configured")
	ErrInvalidBPS         = errors.New("basis-point value out of range")
)

// CollateralFactorConfig controls how the collateral factor solver derives
// the liquidation and max-borrow thresholds. Immutable for a run.
type CollateralFactorConfig struct {
	DynamicCF      bool  `json:"dynamic_cf"`
	PessimisticCap bool  `json:"pessimistic_cap"`
	LTVBuffer      bool  `json:"ltv_buffer"`
	FixedCFBps     int64 `json:"fixed_cf_bps,omitempty"` // 0 means unset
	MaxCFBps       int64 `json:"max_cf_bps"`
	LTVBufferBps   int64 `json:"ltv_buffer_bps"`
}

// LiquidationConfig controls the liquidation engine. Immutable for a run.
// When PartialLiquidation is false the engine forces a 10,000 bps close
// factor, i.e. full repayment on every liquidation.
type LiquidationConfig struct {
	CloseFactorBps          int64 `json:"close_factor_bps"`
	LiquidationIncentiveBps int64 `json:"liquidation_incentive_bps"`
	PartialLiquidation      bool  `json:"partial_liquidation"`
}

// SimulationConfig is the full configuration for one simulated pool.
type SimulationConfig struct {
	Name string `json:"name"`

	EMAEnabled bool  `json:"ema_enabled"`
	HalfLife   int64 `json:"half_life"` // seconds, only read when EMAEnabled

	CollateralFactor CollateralFactorConfig `json:"collateral_factor"`
	Liquidation      LiquidationConfig      `json:"liquidation"`
}

// Validate checks the configuration before any simulation step runs.
// A config that enables neither dynamic CF nor a fixed CF is rejected here
// so the solver never has to fall back to a silent default.
func (c SimulationConfig) Validate() error {
	if c.EMAEnabled && (c.HalfLife < MinHalfLife || c.HalfLife > MaxHalfLife) {
		return fmt.Errorf("%w: %d seconds (must be in [%d, %d])",
			ErrHalfLifeOutOfRange, c.HalfLife, MinHalfLife, MaxHalfLife)
	}

	cf := c.CollateralFactor
	if cf.DynamicCF == (cf.FixedCFBps > 0) {
		return ErrNoBaseCF
	}
	if cf.FixedCFBps < 0 || cf.FixedCFBps > BPSDenominator {
		return fmt.Errorf("%w: fixed_cf_bps=%d", ErrInvalidBPS, cf.FixedCFBps)
	}
	if cf.MaxCFBps <= 0 || cf.MaxCFBps > BPSDenominator {
		return fmt.Errorf("%w: max_cf_bps=%d", ErrInvalidBPS, cf.MaxCFBps)
	}
	if cf.LTVBuffer && (cf.LTVBufferBps <= 0 || cf.LTVBufferBps >= BPSDenominator) {
		return fmt.Errorf("%w: ltv_buffer_bps=%d", ErrInvalidBPS, cf.LTVBufferBps)
	}

	liq := c.Liquidation
	if liq.CloseFactorBps <= 0 || liq.CloseFactorBps > BPSDenominator {
		return fmt.Errorf("%w: close_factor_bps=%d", ErrInvalidBPS, liq.CloseFactorBps)
	}
	if liq.LiquidationIncentiveBps < 0 || liq.LiquidationIncentiveBps >= BPSDenominator {
		return fmt.Errorf("%w: liquidation_incentive_bps=%d", ErrInvalidBPS, liq.LiquidationIncentiveBps)
	}

	return nil
}

// String renders the enabled components, used in logs and reports.
func (c SimulationConfig) String() string {
	var components []string
	if c.EMAEnabled {
		components = append(components, fmt.Sprintf("EMA(%ds)", c.HalfLife))
	}
	if c.CollateralFactor.DynamicCF {
		components = append(components, "DynamicCF")
	}
	if c.CollateralFactor.PessimisticCap {
		components = append(components, "PessimisticCap")
	}
	if c.CollateralFactor.LTVBuffer {
		components = append(components, fmt.Sprintf("LTVBuffer(%dbps)", c.CollateralFactor.LTVBufferBps))
	}
	if c.Liquidation.PartialLiquidation {
		components = append(components, fmt.Sprintf("PartialLiq(%dbps)", c.Liquidation.CloseFactorBps))
	}
	if len(components) == 0 {
		return c.Name + ": [No protections]"
	}
	return c.Name + ": [" + strings.Join(components, ", ") + "]"
}

// --- Preset Configurations ---

// TraditionalLending is the baseline: instant spot oracle, fixed 75% CF,
// no divergence cap, no buffer.
var TraditionalLending = SimulationConfig{
	Name: "Traditional Lending",
	CollateralFactor: CollateralFactorConfig{
		FixedCFBps: 7_500,
		MaxCFBps:   MaxCollateralFactorBPS,
	},
	Liquidation: LiquidationConfig{
		CloseFactorBps:          CloseFactorBPS,
		LiquidationIncentiveBps: LiquidationIncentiveBPS,
		PartialLiquidation:      true,
	},
}

// OnlyEMA adds price smoothing on top of the traditional baseline.
var OnlyEMA = SimulationConfig{
	Name:       "Only EMA",
	EMAEnabled: true,
	HalfLife:   DefaultHalfLife,
	CollateralFactor: CollateralFactorConfig{
		FixedCFBps: 7_500,
		MaxCFBps:   MaxCollateralFactorBPS,
	},
	Liquidation: LiquidationConfig{
		CloseFactorBps:          CloseFactorBPS,
		LiquidationIncentiveBps: LiquidationIncentiveBPS,
		PartialLiquidation:      true,
	},
}

// OnlyDynamicCF derives CF from pool depth but prices off raw spot.
var OnlyDynamicCF = SimulationConfig{
	Name: "Only Dynamic CF",
	CollateralFactor: CollateralFactorConfig{
		DynamicCF: true,
		MaxCFBps:  MaxCollateralFactorBPS,
	},
	Liquidation: LiquidationConfig{
		CloseFactorBps:          CloseFactorBPS,
		LiquidationIncentiveBps: LiquidationIncentiveBPS,
		PartialLiquidation:      true,
	},
}

// EMAPlusDynamicCF combines smoothing and depth-aware CF without the
// pessimistic divergence cap.
var EMAPlusDynamicCF = SimulationConfig{
	Name:       "EMA + Dynamic CF",
	EMAEnabled: true,
	HalfLife:   DefaultHalfLife,
	CollateralFactor: CollateralFactorConfig{
		DynamicCF: true,
		MaxCFBps:  MaxCollateralFactorBPS,
	},
	Liquidation: LiquidationConfig{
		CloseFactorBps:          CloseFactorBPS,
		LiquidationIncentiveBps: LiquidationIncentiveBPS,
		PartialLiquidation:      true,
	},
}

// FullGAMM enables every protective mechanism.
var FullGAMM = SimulationConfig{
	Name:       "Full OmniPair GAMM",
	EMAEnabled: true,
	HalfLife:   DefaultHalfLife,
	CollateralFactor: CollateralFactorConfig{
		DynamicCF:      true,
		PessimisticCap: true,
		LTVBuffer:      true,
		MaxCFBps:       MaxCollateralFactorBPS,
		LTVBufferBps:   LTVBufferBPS,
	},
	Liquidation: LiquidationConfig{
		CloseFactorBps:          CloseFactorBPS,
		LiquidationIncentiveBps: LiquidationIncentiveBPS,
		PartialLiquidation:      true,
	},
}

// ConservativeGAMM uses a slower EMA, a wider buffer and a lower CF cap.
var ConservativeGAMM = SimulationConfig{
	Name:       "Conservative GAMM",
	EMAEnabled: true,
	HalfLife:   300,
	CollateralFactor: CollateralFactorConfig{
		DynamicCF:      true,
		PessimisticCap: true,
		LTVBuffer:      true,
		MaxCFBps:       7_500,
		LTVBufferBps:   1_000,
	},
	Liquidation: LiquidationConfig{
		CloseFactorBps:          CloseFactorBPS,
		LiquidationIncentiveBps: LiquidationIncentiveBPS,
		PartialLiquidation:      true,
	},
}

// AggressiveGAMM tracks spot more closely and keeps only a thin buffer.
var AggressiveGAMM = SimulationConfig{
	Name:       "Aggressive GAMM",
	EMAEnabled: true,
	HalfLife:   MinHalfLife,
	CollateralFactor: CollateralFactorConfig{
		DynamicCF:      true,
		PessimisticCap: true,
		LTVBuffer:      true,
		MaxCFBps:       MaxCollateralFactorBPS,
		LTVBufferBps:   300,
	},
	Liquidation: LiquidationConfig{
		CloseFactorBps:          CloseFactorBPS,
		LiquidationIncentiveBps: LiquidationIncentiveBPS,
		PartialLiquidation:      true,
	},
}

// AllPresets lists every preset in report order.
var AllPresets = []SimulationConfig{
	TraditionalLending,
	OnlyEMA,
	OnlyDynamicCF,
	EMAPlusDynamicCF,
	FullGAMM,
	ConservativeGAMM,
	AggressiveGAMM,
}
