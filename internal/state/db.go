// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS scenario_runs (
			run_id SERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			scenario_name VARCHAR(255) NOT NULL,
			config_name VARCHAR(255) NOT NULL,
			config JSONB NOT NULL,

			total_positions INTEGER NOT NULL,
			active_positions INTEGER NOT NULL,
			liquidated_positions INTEGER NOT NULL,
			total_liquidations INTEGER NOT NULL,
			total_borrowed_nad NUMERIC(40, 0) NOT NULL,
			total_bad_debt_nad NUMERIC(40, 0) NOT NULL,
			bad_debt_rate_bps BIGINT NOT NULL,
			final_health_pct BIGINT NOT NULL,
			lp_return_pct DECIMAL(20, 8) NOT NULL,

			positions JSONB,
			events JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_scenario_runs_created ON scenario_runs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_scenario_runs_scenario ON scenario_runs(scenario_name);
		CREATE INDEX IF NOT EXISTS idx_scenario_runs_config ON scenario_runs(config_name);

		CREATE TABLE IF NOT EXISTS run_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			run_id INTEGER NOT NULL REFERENCES scenario_runs(run_id) ON DELETE CASCADE,
			step_timestamp BIGINT NOT NULL,
			reserve_base_nad NUMERIC(40, 0) NOT NULL,
			reserve_quote_nad NUMERIC(40, 0) NOT NULL,
			total_debt_nad NUMERIC(40, 0) NOT NULL,
			total_collateral_nad NUMERIC(40, 0) NOT NULL,
			spot_price_nad NUMERIC(40, 0) NOT NULL,
			lending_price_nad NUMERIC(40, 0) NOT NULL,
			average_cf_bps BIGINT NOT NULL,
			active_positions INTEGER NOT NULL,
			total_bad_debt_nad NUMERIC(40, 0) NOT NULL,
			protocol_health_pct BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_run_snapshots_run ON run_snapshots(run_id, step_timestamp);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured (scenario_runs, run_snapshots).")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
