/*

This file contains the per-step pool snapshot and the aggregate run
statistics produced by the orchestrator.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// PoolSnapshot is an immutable record appended once per simulation step.
// The snapshot history is append-only and ordered by timestamp.
type PoolSnapshot struct {
	Timestamp         int64       `json:"timestamp"`
	ReserveBase       sdkmath.Int `json:"reserve_base"`
	ReserveQuote      sdkmath.Int `json:"reserve_quote"`
	TotalDebt         sdkmath.Int `json:"total_debt"`
	TotalCollateral   sdkmath.Int `json:"total_collateral"`
	SpotPrice         sdkmath.Int `json:"spot_price"`
	LendingPrice      sdkmath.Int `json:"lending_price"`
	AverageCFBps      int64       `json:"average_cf_bps"`
	ActivePositions   int         `json:"active_positions"`
	TotalBadDebt      sdkmath.Int `json:"total_bad_debt"`
	ProtocolHealthPct int64       `json:"protocol_health_pct"`
}

// RunStatistics aggregates one full simulation run.
type RunStatistics struct {
	ConfigName          string      `json:"config_name"`
	TotalPositions      int         `json:"total_positions"`
	ActivePositions     int         `json:"active_positions"`
	LiquidatedPositions int         `json:"liquidated_positions"`
	TotalBorrowed       sdkmath.Int `json:"total_borrowed"`
	TotalBadDebt        sdkmath.Int `json:"total_bad_debt"`
	BadDebtRateBps      int64       `json:"bad_debt_rate_bps"`
	TotalLiquidations   int         `json:"total_liquidations"`
	FinalHealthPct      int64       `json:"protocol_health_final"`
}

// RunResult bundles everything a scenario run produces: the snapshot
// history (one entry per input sample after the first), the full position
// list with terminal states, the liquidation events, aggregate statistics
// and the LP return over the run.
type RunResult struct {
	ScenarioName string             `json:"scenario_name"`
	Statistics   RunStatistics      `json:"statistics"`
	Snapshots    []PoolSnapshot     `json:"snapshots"`
	Positions    []BorrowerPosition `json:"positions"`
	Events       []LiquidationEvent `json:"events"`
	LPReturnPct  float64            `json:"lp_return_pct"`
}
