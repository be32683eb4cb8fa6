/*

This file contains the borrower position type and the liquidation outcome
record shared between the liquidation engine, the pool orchestrator and the
result stores.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// PositionID is a stable integer handle into the pool's position arena.
type PositionID int

// BorrowerPosition is a single borrower's state. Created once at open time;
// collateral and debt are mutated only by liquidation. A position transitions
// to the liquidated terminal state at most once and is never destroyed.
type BorrowerPosition struct {
	ID               PositionID  `json:"id"`
	CollateralAmount sdkmath.Int `json:"collateral_amount"` // NAD-scaled base tokens
	DebtAmount       sdkmath.Int `json:"debt_amount"`       // NAD-scaled quote tokens
	EntryPrice       sdkmath.Int `json:"entry_price"`       // NAD-scaled
	EntryTime        int64       `json:"entry_time"`

	Liquidated       bool        `json:"liquidated"`
	LiquidationTime  int64       `json:"liquidation_time,omitempty"`
	LiquidationPrice sdkmath.Int `json:"liquidation_price,omitempty"`
	BadDebtAccrued   sdkmath.Int `json:"bad_debt_accrued"`
}

// BorrowerSpec describes a position to open at the first sample of a run.
type BorrowerSpec struct {
	CollateralAmount sdkmath.Int `json:"collateral_amount"` // NAD-scaled
	TargetLTV        float64     `json:"target_ltv"`        // fraction of max borrow, e.g. 0.75
}

// LiquidationOutcome is the result of evaluating one position against the
// liquidation engine. When Liquidatable is false only the health fields are
// meaningful.
type LiquidationOutcome struct {
	Liquidatable bool `json:"liquidatable"`
	IsInsolvent  bool `json:"is_insolvent"`

	DebtToRepay          sdkmath.Int `json:"debt_to_repay"`
	CollateralSeized     sdkmath.Int `json:"collateral_seized"`
	LiquidatorBonus      sdkmath.Int `json:"liquidator_bonus"`
	CollateralToReserves sdkmath.Int `json:"collateral_to_reserves"`
	BadDebt              sdkmath.Int `json:"bad_debt"`
	RemainingCollateral  sdkmath.Int `json:"remaining_collateral"`
	RemainingDebt        sdkmath.Int `json:"remaining_debt"`
	LiquidatorProfitUSD  sdkmath.Int `json:"liquidator_profit_usd"` // may be negative

	// HealthFactorPct is borrow limit / debt as an integer percentage
	// (106 = 1.06). Zero debt reports the 999 sentinel.
	HealthFactorPct int64       `json:"health_factor_pct"`
	CollateralValue sdkmath.Int `json:"collateral_value"`
	DebtAmount      sdkmath.Int `json:"debt_amount"`
	BorrowLimit     sdkmath.Int `json:"borrow_limit"`
}

// LiquidationEvent pairs an executed outcome with where and when it fired.
type LiquidationEvent struct {
	Timestamp  int64              `json:"timestamp"`
	PositionID PositionID         `json:"position_id"`
	Price      sdkmath.Int        `json:"price"`      // lending price used for the check
	SpotPrice  sdkmath.Int        `json:"spot_price"` // raw spot at the same step
	Outcome    LiquidationOutcome `json:"outcome"`
}
