package types

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestValidateSeries(t *testing.T) {
	valid := []PriceSample{
		{Timestamp: 100, Price: sdkmath.NewInt(1_000_000_000)},
		{Timestamp: 160, Price: sdkmath.NewInt(900_000_000)},
		{Timestamp: 160, Price: sdkmath.NewInt(950_000_000)}, // duplicate ts is legal
		{Timestamp: 220, Price: sdkmath.NewInt(800_000_000)},
	}
	require.NoError(t, ValidateSeries(valid))
}

func TestValidateSeriesEmpty(t *testing.T) {
	require.ErrorIs(t, ValidateSeries(nil), ErrEmptySeries)
	require.ErrorIs(t, ValidateSeries([]PriceSample{}), ErrEmptySeries)
}

func TestValidateSeriesNonPositivePrice(t *testing.T) {
	series := []PriceSample{
		{Timestamp: 100, Price: sdkmath.ZeroInt()},
	}
	require.ErrorIs(t, ValidateSeries(series), ErrNonPositivePrice)

	series[0].Price = sdkmath.NewInt(-5)
	require.ErrorIs(t, ValidateSeries(series), ErrNonPositivePrice)
}

func TestValidateSeriesNilPrice(t *testing.T) {
	series := []PriceSample{{Timestamp: 100}}
	require.ErrorIs(t, ValidateSeries(series), ErrNilPrice)
}

func TestValidateSeriesOrdering(t *testing.T) {
	series := []PriceSample{
		{Timestamp: 200, Price: sdkmath.NewInt(1)},
		{Timestamp: 100, Price: sdkmath.NewInt(1)},
	}
	require.ErrorIs(t, ValidateSeries(series), ErrTimestampOrdering)
}
