// ./internal/state/run_store.go
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Fadi7anna/omnipair-gamm-risk/internal/config"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/logger"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/types"
)

var storeLogger = logger.GetForComponent("run_store")

// RunRecord is a persisted scenario run row, summary columns only.
type RunRecord struct {
	RunID        int64     `json:"run_id"`
	CreatedAt    time.Time `json:"created_at"`
	ScenarioName string    `json:"scenario_name"`
	ConfigName   string    `json:"config_name"`

	TotalPositions      int     `json:"total_positions"`
	ActivePositions     int     `json:"active_positions"`
	LiquidatedPositions int     `json:"liquidated_positions"`
	TotalLiquidations   int     `json:"total_liquidations"`
	TotalBorrowed       string  `json:"total_borrowed_nad"`
	TotalBadDebt        string  `json:"total_bad_debt_nad"`
	BadDebtRateBps      int64   `json:"bad_debt_rate_bps"`
	FinalHealthPct      int64   `json:"final_health_pct"`
	LPReturnPct         float64 `json:"lp_return_pct"`
}

// SaveRun persists a completed scenario run and its snapshots.
// Returns the generated run_id.
func SaveRun(cfg config.SimulationConfig, result *types.RunResult) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	if result == nil {
		return 0, fmt.Errorf("nil run result")
	}

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config: %w", err)
	}
	positionsJSON, err := json.Marshal(result.Positions)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal positions: %w", err)
	}
	eventsJSON, err := json.Marshal(result.Events)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal events: %w", err)
	}

	stats := result.Statistics

	var runID int64
	err = DB.QueryRow(`
		INSERT INTO scenario_runs (
			scenario_name, config_name, config,
			total_positions, active_positions, liquidated_positions,
			total_liquidations, total_borrowed_nad, total_bad_debt_nad,
			bad_debt_rate_bps, final_health_pct, lp_return_pct,
			positions, events
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING run_id`,
		result.ScenarioName, stats.ConfigName, configJSON,
		stats.TotalPositions, stats.ActivePositions, stats.LiquidatedPositions,
		stats.TotalLiquidations, stats.TotalBorrowed.String(), stats.TotalBadDebt.String(),
		stats.BadDebtRateBps, stats.FinalHealthPct, result.LPReturnPct,
		positionsJSON, eventsJSON,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scenario run: %w", err)
	}

	if err := saveSnapshots(runID, result.Snapshots); err != nil {
		return runID, fmt.Errorf("run %d saved but snapshots failed: %w", runID, err)
	}

	storeLogger.Info().
		Int64("run_id", runID).
		Str("scenario", result.ScenarioName).
		Str("config", stats.ConfigName).
		Int("snapshots", len(result.Snapshots)).
		Msg("Persisted scenario run")

	return runID, nil
}

// saveSnapshots inserts the per-step snapshot rows for a run inside one transaction.
func saveSnapshots(runID int64, snapshots []types.PoolSnapshot) error {
	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO run_snapshots (
			run_id, step_timestamp,
			reserve_base_nad, reserve_quote_nad,
			total_debt_nad, total_collateral_nad,
			spot_price_nad, lending_price_nad,
			average_cf_bps, active_positions,
			total_bad_debt_nad, protocol_health_pct
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range snapshots {
		_, err = stmt.Exec(
			runID, s.Timestamp,
			s.ReserveBase.String(), s.ReserveQuote.String(),
			s.TotalDebt.String(), s.TotalCollateral.String(),
			s.SpotPrice.String(), s.LendingPrice.String(),
			s.AverageCFBps, s.ActivePositions,
			s.TotalBadDebt.String(), s.ProtocolHealthPct,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot at ts %d: %w", s.Timestamp, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent persisted runs, newest first.
func ListRuns(limit int) ([]RunRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := DB.Query(`
		SELECT run_id, created_at, scenario_name, config_name,
		       total_positions, active_positions, liquidated_positions,
		       total_liquidations, total_borrowed_nad, total_bad_debt_nad,
		       bad_debt_rate_bps, final_health_pct, lp_return_pct
		FROM scenario_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenario runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		err = rows.Scan(
			&r.RunID, &r.CreatedAt, &r.ScenarioName, &r.ConfigName,
			&r.TotalPositions, &r.ActivePositions, &r.LiquidatedPositions,
			&r.TotalLiquidations, &r.TotalBorrowed, &r.TotalBadDebt,
			&r.BadDebtRateBps, &r.FinalHealthPct, &r.LPReturnPct,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetRun loads a single run with its config, positions and events payloads.
func GetRun(runID int64) (*RunRecord, json.RawMessage, json.RawMessage, json.RawMessage, error) {
	if DB == nil {
		return nil, nil, nil, nil, fmt.Errorf("database not initialized")
	}

	var r RunRecord
	var configJSON, positionsJSON, eventsJSON []byte
	err := DB.QueryRow(`
		SELECT run_id, created_at, scenario_name, config_name,
		       total_positions, active_positions, liquidated_positions,
		       total_liquidations, total_borrowed_nad, total_bad_debt_nad,
		       bad_debt_rate_bps, final_health_pct, lp_return_pct,
		       config, positions, events
		FROM scenario_runs
		WHERE run_id = $1`, runID).Scan(
		&r.RunID, &r.CreatedAt, &r.ScenarioName, &r.ConfigName,
		&r.TotalPositions, &r.ActivePositions, &r.LiquidatedPositions,
		&r.TotalLiquidations, &r.TotalBorrowed, &r.TotalBadDebt,
		&r.BadDebtRateBps, &r.FinalHealthPct, &r.LPReturnPct,
		&configJSON, &positionsJSON, &eventsJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil, nil, nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load run %d: %w", runID, err)
	}

	return &r, configJSON, positionsJSON, eventsJSON, nil
}

// GetRunSnapshots loads the snapshot time series for a run in step order.
func GetRunSnapshots(runID int64) ([]SnapshotRow, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := DB.Query(`
		SELECT step_timestamp, reserve_base_nad, reserve_quote_nad,
		       total_debt_nad, total_collateral_nad,
		       spot_price_nad, lending_price_nad,
		       average_cf_bps, active_positions,
		       total_bad_debt_nad, protocol_health_pct
		FROM run_snapshots
		WHERE run_id = $1
		ORDER BY step_timestamp ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var s SnapshotRow
		err = rows.Scan(
			&s.Timestamp, &s.ReserveBase, &s.ReserveQuote,
			&s.TotalDebt, &s.TotalCollateral,
			&s.SpotPrice, &s.LendingPrice,
			&s.AverageCFBps, &s.ActivePositions,
			&s.TotalBadDebt, &s.ProtocolHealthPct,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SnapshotRow mirrors a run_snapshots row with NAD amounts as decimal strings.
type SnapshotRow struct {
	Timestamp         int64  `json:"timestamp"`
	ReserveBase       string `json:"reserve_base_nad"`
	ReserveQuote      string `json:"reserve_quote_nad"`
	TotalDebt         string `json:"total_debt_nad"`
	TotalCollateral   string `json:"total_collateral_nad"`
	SpotPrice         string `json:"spot_price_nad"`
	LendingPrice      string `json:"lending_price_nad"`
	AverageCFBps      int64  `json:"average_cf_bps"`
	ActivePositions   int    `json:"active_positions"`
	TotalBadDebt      string `json:"total_bad_debt_nad"`
	ProtocolHealthPct int64  `json:"protocol_health_pct"`
}
