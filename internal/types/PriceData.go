/*

This file contains the price series input type consumed by the simulation
engine. A series is an ordered sequence of (unix timestamp, NAD-scaled price)
samples; ordering violations are rejected here at ingestion, never inside
the oracle.

*/

package types

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

var (
	ErrEmptySeries       = errors.New("price series is empty")
	ErrNonPositivePrice  = errors.New("price sample must be positive")
	ErrTimestampOrdering = errors.New("price series timestamps must be non-decreasing")
	ErrNilPrice          = errors.New("price sample is nil")
)

// PriceSample is one externally supplied market observation.
type PriceSample struct {
	Timestamp int64       `json:"timestamp"` // unix seconds
	Price     sdkmath.Int `json:"price"`     // NAD-scaled
}

// ValidateSeries checks a price series against the engine's input contract:
// non-empty, every price positive, timestamps non-decreasing. Duplicate
// timestamps are legal; the oracle treats them idempotently.
func ValidateSeries(series []PriceSample) error {
	if len(series) == 0 {
		return ErrEmptySeries
	}
	for i, sample := range series {
		if sample.Price.IsNil() {
			return fmt.Errorf("%w: index %d", ErrNilPrice, i)
		}
		if !sample.Price.IsPositive() {
			return fmt.Errorf("%w: index %d (%s)", ErrNonPositivePrice, i, sample.Price)
		}
		if i > 0 && sample.Timestamp < series[i-1].Timestamp {
			return fmt.Errorf("%w: index %d (%d < %d)",
				ErrTimestampOrdering, i, sample.Timestamp, series[i-1].Timestamp)
		}
	}
	return nil
}
