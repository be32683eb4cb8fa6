package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Fadi7anna/omnipair-gamm-risk/internal/config"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/datafetcher"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/logger"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/pool"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/state"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/types"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/utils"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/web"
)

// main is the entry point for the GAMM risk simulator.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("GAMM Risk Simulator Starting...")

	// Initialize Database Connection when result persistence is enabled
	if config.PersistResults {
		dbCfg := state.DBConfig{
			Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
			User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
			DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
	}

	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", config.DataDir).Msg("Failed to create data directory")
	}

	// --- 2. Scenario Assembly ---
	poolTVL := sdkmath.NewInt(config.InitialPoolTVL).Mul(config.NAD)
	borrowers := defaultBorrowerCohort(poolTVL)

	var scenarios []pool.Scenario
	for _, event := range datafetcher.CrisisEvents {
		series, err := loadCrisisSeries(event)
		if err != nil {
			log.Fatal().Err(err).Str("event", event.Key).Msg("Failed to load crisis price series")
		}
		scenarios = append(scenarios, pool.Scenario{
			Name:           event.Name,
			Series:         series,
			InitialPoolTVL: poolTVL,
			Borrowers:      borrowers,
		})
	}

	// --- 3. Run Every Configuration Against Every Scenario ---
	ctx := context.Background()
	for _, scenario := range scenarios {
		log.Info().
			Str("scenario", scenario.Name).
			Int("samples", len(scenario.Series)).
			Int("configs", len(config.AllPresets)).
			Msg("Running configuration comparison")

		results, err := pool.CompareConfigurations(ctx, config.AllPresets, scenario)
		if err != nil {
			log.Fatal().Err(err).Str("scenario", scenario.Name).Msg("Scenario comparison failed")
		}

		reportResults(scenario.Name, results)

		if config.PersistResults {
			for _, cfg := range config.AllPresets {
				result := results[cfg.Name]
				if _, err := state.SaveRun(cfg, &result); err != nil {
					log.Error().Err(err).
						Str("scenario", scenario.Name).
						Str("config", cfg.Name).
						Msg("Failed to persist run")
				}
			}
		}
	}

	// --- 4. Optional Results API ---
	if os.Getenv("GAMM_SERVE_RESULTS") == "true" {
		webServer := web.NewWebServer(config.WebPort)
		log.Info().Str("url", "http://localhost:"+config.WebPort).Msg("Serving results API")
		if err := webServer.Start(); err != nil {
			log.Fatal().Err(err).Msg("Web server failed")
		}
	}

	log.Info().Msg("All scenarios completed.")
}

// loadCrisisSeries resolves the price series for one crisis event. A cached
// CSV in the data directory wins; otherwise CoinGecko is tried and the result
// cached; if the fetch fails the synthetic reconstruction is used instead.
func loadCrisisSeries(event datafetcher.CrisisEvent) ([]types.PriceSample, error) {
	csvPath := filepath.Join(config.DataDir, event.Key+".csv")

	if series, err := datafetcher.LoadPriceCSV(csvPath); err == nil {
		log.Info().Str("event", event.Key).Str("path", csvPath).Int("samples", len(series)).Msg("Loaded cached price data")
		return series, nil
	}

	series, err := datafetcher.FetchCrisisData(event.Key)
	if err != nil {
		log.Warn().Err(err).Str("event", event.Key).Msg("API fetch failed, generating synthetic series")
		return datafetcher.GenerateSyntheticCrisis(event.Key)
	}

	if err := datafetcher.SavePriceCSV(csvPath, series); err != nil {
		log.Warn().Err(err).Str("path", csvPath).Msg("Failed to cache price data")
	}
	return series, nil
}

// defaultBorrowerCohort builds a spread of borrowers from cautious to
// maximally levered. Each posts 1% of one reserve side as collateral.
func defaultBorrowerCohort(poolTVL sdkmath.Int) []types.BorrowerSpec {
	collateral := poolTVL.QuoRaw(100)
	targetLTVs := []float64{0.30, 0.50, 0.70, 0.80, 0.90, 0.95, 1.00}

	cohort := make([]types.BorrowerSpec, 0, len(targetLTVs))
	for _, ltv := range targetLTVs {
		cohort = append(cohort, types.BorrowerSpec{
			CollateralAmount: collateral,
			TargetLTV:        ltv,
		})
	}
	return cohort
}

// reportResults logs the comparison table for one scenario.
func reportResults(scenarioName string, results map[string]types.RunResult) {
	for _, cfg := range config.AllPresets {
		result, ok := results[cfg.Name]
		if !ok {
			continue
		}
		stats := result.Statistics
		log.Info().
			Str("scenario", scenarioName).
			Str("config", stats.ConfigName).
			Int("positions", stats.TotalPositions).
			Int("liquidated", stats.LiquidatedPositions).
			Int("liquidations", stats.TotalLiquidations).
			Float64("totalBorrowed", nadToFloat(stats.TotalBorrowed)).
			Float64("totalBadDebt", nadToFloat(stats.TotalBadDebt)).
			Int64("badDebtRateBps", stats.BadDebtRateBps).
			Int64("finalHealthPct", stats.FinalHealthPct).
			Float64("lpReturnPct", result.LPReturnPct).
			Msg("Scenario result")
	}
}

// nadToFloat renders a NAD amount for report logging. Amounts that fail the
// conversion (nil or out of float range) log as zero rather than aborting.
func nadToFloat(amount sdkmath.Int) float64 {
	f, err := utils.NADToFloat(amount)
	if err != nil {
		return 0
	}
	return f
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
