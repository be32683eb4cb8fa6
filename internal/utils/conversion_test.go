package utils

import (
	"math"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatToNAD(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{1, 1_000_000_000},
		{1.5, 1_500_000_000},
		{0.0295, 29_500_000},
		{0.000000001, 1},
		{123456.789, 123_456_789_000_000},
	}
	for _, tc := range cases {
		got, err := FloatToNAD(tc.in)
		require.NoError(t, err)
		assert.Equal(t, sdkmath.NewInt(tc.want), got, "input %f", tc.in)
	}
}

func TestFloatToNADTruncatesBelowPrecision(t *testing.T) {
	// Anything below 1e-9 truncates away.
	got, err := FloatToNAD(0.0000000001)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestFloatToNADErrors(t *testing.T) {
	_, err := FloatToNAD(-1)
	require.ErrorIs(t, err, ErrAmountNegative)

	_, err = FloatToNAD(math.NaN())
	require.ErrorIs(t, err, ErrNotFinite)

	_, err = FloatToNAD(math.Inf(1))
	require.ErrorIs(t, err, ErrNotFinite)
}

func TestNADToFloatRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, 0.5, 80.25, 123456.789} {
		scaled, err := FloatToNAD(v)
		require.NoError(t, err)
		back, err := NADToFloat(scaled)
		require.NoError(t, err)
		assert.InDelta(t, v, back, 1e-9)
	}
}

func TestNADToFloatNil(t *testing.T) {
	_, err := NADToFloat(sdkmath.Int{})
	require.ErrorIs(t, err, ErrAmountNil)
}

func TestIntSqrt(t *testing.T) {
	cases := []struct {
		in   int64
		want int64
	}{
		{0, 0},
		{1, 1},
		{4, 2},
		{15, 3}, // floor
		{16, 4},
		{1_000_000_000_000_000_000, 1_000_000_000},
	}
	for _, tc := range cases {
		got, err := IntSqrt(sdkmath.NewInt(tc.in))
		require.NoError(t, err)
		assert.Equal(t, sdkmath.NewInt(tc.want), got, "sqrt(%d)", tc.in)
	}
}

func TestIntSqrtLargeValue(t *testing.T) {
	// (2^70)^2 exceeds int64; the big.Int path must stay exact.
	root := sdkmath.NewInt(1).MulRaw(2)
	for i := 0; i < 69; i++ {
		root = root.MulRaw(2)
	}
	square := root.Mul(root)

	got, err := IntSqrt(square)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestIntSqrtErrors(t *testing.T) {
	_, err := IntSqrt(sdkmath.NewInt(-1))
	require.ErrorIs(t, err, ErrAmountNegative)

	_, err = IntSqrt(sdkmath.Int{})
	require.ErrorIs(t, err, ErrAmountNil)
}

func TestBpsToFloat(t *testing.T) {
	assert.InDelta(t, 0.75, BpsToFloat(7_500), 1e-12)
	assert.InDelta(t, 1.0, BpsToFloat(10_000), 1e-12)
	assert.Zero(t, BpsToFloat(0))
}
