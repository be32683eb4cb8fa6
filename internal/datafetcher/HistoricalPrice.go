/*
This file fetches historical crisis price data from the CoinGecko API and
loads/saves price series as CSV.

The simulation engine itself performs no I/O: everything here produces the
plain ordered (timestamp, price) series the engine consumes, validated at
ingestion so ordering violations never reach the oracle.
*/

package datafetcher

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/Fadi7anna/omnipair-gamm-risk/internal/logger"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/types"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/utils"
)

var priceLogger = logger.GetForComponent("price_retriever")

var (
	ErrInvalidPriceData = errors.New("invalid price data received")
	ErrUnknownCrisis    = errors.New("unknown crisis event")
	ErrAPIFailure       = errors.New("price API request failed")
)

const (
	BASE_URL        = "https://api.coingecko.com/api/v3"
	MAX_RETRIES     = 3
	TIMEOUT_SECONDS = 30
	// Free tier allows roughly 50 calls a minute.
	RATE_LIMIT_DELAY = 1500 * time.Millisecond
)

// CrisisEvent describes one catalogued DeFi crisis window.
type CrisisEvent struct {
	Key         string
	Name        string
	CoinID      string
	Start       time.Time
	End         time.Time
	Description string
}

// CrisisEvents catalogues the three scenarios the risk analysis targets.
var CrisisEvents = []CrisisEvent{
	{
		Key:         "mango_exploit",
		Name:        "Mango Markets Exploit",
		CoinID:      "mango-markets",
		Start:       time.Date(2022, 10, 10, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2022, 10, 13, 0, 0, 0, 0, time.UTC),
		Description: "Oracle manipulation attack, $110M loss",
	},
	{
		Key:         "luna_collapse",
		Name:        "LUNA/UST Death Spiral",
		CoinID:      "terra-luna",
		Start:       time.Date(2022, 5, 5, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2022, 5, 15, 0, 0, 0, 0, time.UTC),
		Description: "$40B+ ecosystem collapse, death spiral",
	},
	{
		Key:         "ftt_collapse",
		Name:        "FTX Token Collapse",
		CoinID:      "ftx-token",
		Start:       time.Date(2022, 11, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2022, 11, 12, 0, 0, 0, 0, time.UTC),
		Description: "Gradual then rapid crash, liquidity crisis",
	},
}

// marketChartResponse is CoinGecko's market_chart/range payload. Prices are
// [ms-timestamp, usd-price] pairs.
type marketChartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

// FetchCrisisData downloads the price series for a catalogued crisis event.
func FetchCrisisData(eventKey string) ([]types.PriceSample, error) {
	var event *CrisisEvent
	for i := range CrisisEvents {
		if CrisisEvents[i].Key == eventKey {
			event = &CrisisEvents[i]
			break
		}
	}
	if event == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCrisis, eventKey)
	}

	url := fmt.Sprintf("%s/coins/%s/market_chart/range?vs_currency=usd&from=%d&to=%d",
		BASE_URL, event.CoinID, event.Start.Unix(), event.End.Unix())

	priceLogger.Info().
		Str("event", event.Name).
		Str("coin", event.CoinID).
		Msg("Fetching crisis price data")

	body, err := fetchWithRetry(url)
	if err != nil {
		return nil, err
	}

	var chart marketChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		priceLogger.Error().Err(err).Msg("Failed to unmarshal market chart response")
		return nil, fmt.Errorf("failed to unmarshal market chart response: %w", err)
	}
	if len(chart.Prices) == 0 {
		return nil, fmt.Errorf("%w: empty price array for %s", ErrInvalidPriceData, event.CoinID)
	}

	series := make([]types.PriceSample, 0, len(chart.Prices))
	for _, point := range chart.Prices {
		ts := int64(point[0]) / 1000 // ms -> s
		price, err := utils.FloatToNAD(point[1])
		if err != nil {
			return nil, fmt.Errorf("%w: price %f at %d: %v", ErrInvalidPriceData, point[1], ts, err)
		}
		series = append(series, types.PriceSample{Timestamp: ts, Price: price})
	}

	// CoinGecko occasionally returns slightly out-of-order points.
	sort.Slice(series, func(i, j int) bool {
		return series[i].Timestamp < series[j].Timestamp
	})

	if err := types.ValidateSeries(series); err != nil {
		return nil, err
	}

	priceLogger.Info().
		Str("event", event.Name).
		Int("samples", len(series)).
		Msg("Crisis price data fetched")

	return series, nil
}

// fetchWithRetry performs a GET with bounded retries and the free-tier rate
// limit delay between attempts.
func fetchWithRetry(url string) ([]byte, error) {
	client := http.Client{Timeout: TIMEOUT_SECONDS * time.Second}

	var lastErr error
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		if attempt > 1 {
			time.Sleep(RATE_LIMIT_DELAY)
		}

		resp, err := client.Get(url)
		if err != nil {
			lastErr = err
			priceLogger.Warn().Err(err).Int("attempt", attempt).Msg("Price API request failed")
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%w: status %d", ErrAPIFailure, resp.StatusCode)
			priceLogger.Warn().
				Int("status", resp.StatusCode).
				Int("attempt", attempt).
				Msg("Price API returned non-200")
			continue
		}

		return body, nil
	}
	return nil, fmt.Errorf("all %d attempts failed: %w", MAX_RETRIES, lastErr)
}

// LoadPriceCSV reads a series from a "timestamp,datetime,price_usd" CSV
// (header row required) and validates it.
func LoadPriceCSV(path string) ([]types.PriceSample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read price CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: %s has no data rows", ErrInvalidPriceData, path)
	}

	series := make([]types.PriceSample, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 3 {
			return nil, fmt.Errorf("%w: row %d has %d columns", ErrInvalidPriceData, i+2, len(record))
		}
		ts, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d timestamp %q", ErrInvalidPriceData, i+2, record[0])
		}
		priceFloat, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d price %q", ErrInvalidPriceData, i+2, record[2])
		}
		price, err := utils.FloatToNAD(priceFloat)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidPriceData, i+2, err)
		}
		series = append(series, types.PriceSample{Timestamp: ts, Price: price})
	}

	if err := types.ValidateSeries(series); err != nil {
		return nil, err
	}
	return series, nil
}

// SavePriceCSV writes a series in the same format LoadPriceCSV reads,
// creating parent directories as needed.
func SavePriceCSV(path string, series []types.PriceSample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create price CSV: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "datetime", "price_usd"}); err != nil {
		return err
	}
	for _, sample := range series {
		priceFloat, err := utils.NADToFloat(sample.Price)
		if err != nil {
			return err
		}
		row := []string{
			strconv.FormatInt(sample.Timestamp, 10),
			time.Unix(sample.Timestamp, 0).UTC().Format(time.RFC3339),
			strconv.FormatFloat(priceFloat, 'f', 6, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}
