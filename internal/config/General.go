package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// DataDir is where crisis price CSVs are read from and written to.
	DataDir string

	// WebPort is the port for the results dashboard API.
	WebPort string

	// PersistResults enables writing run results to Postgres.
	PersistResults bool

	// InitialPoolTVL is the size of each simulated reserve side, in whole
	// quote units (scaled to NAD at pool construction).
	InitialPoolTVL int64
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. Database settings are read separately by the state
// package only when PersistResults is set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	DataDir = os.Getenv("GAMM_DATA_DIR")
	if DataDir == "" {
		DataDir = "data"
	}

	WebPort = os.Getenv("WEB_PORT")
	if WebPort == "" {
		WebPort = "8080"
	}

	PersistResults = os.Getenv("GAMM_PERSIST_RESULTS") == "true"

	var err error
	InitialPoolTVL, err = getEnvAsInt64("GAMM_INITIAL_POOL_TVL", 1_000_000)
	if err != nil {
		return err
	}
	if InitialPoolTVL <= 0 {
		return errors.New("GAMM_INITIAL_POOL_TVL must be positive")
	}

	log.Debug().
		Str("DataDir", DataDir).
		Str("WebPort", WebPort).
		Bool("PersistResults", PersistResults).
		Int64("InitialPoolTVL", InitialPoolTVL).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnvAsInt64 retrieves an environment variable as an int64, falling back
// to a default when unset. Returns error if set but invalid.
func getEnvAsInt64(key string, defaultValue int64) (int64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int64, got: " + valueStr)
	}
	return value, nil
}
