/*
This file generates synthetic crisis price series shaped after the actual
historical events, for running scenarios without network access. Each
generator reproduces the characteristic phases of its event: pre-crisis
calm, the move itself, and the aftermath.
*/

package datafetcher

import (
	"math"
	"time"

	"github.com/Fadi7anna/omnipair-gamm-risk/internal/types"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/utils"
)

// GenerateMangoExploit reproduces the Oct 11 2022 Mango Markets oracle
// manipulation: MNGO pumped from ~$0.03 to ~$0.91 in roughly 20 minutes,
// then crashed back down. Minute resolution.
func GenerateMangoExploit() []types.PriceSample {
	start := time.Date(2022, 10, 11, 17, 0, 0, 0, time.UTC).Unix()
	const basePrice = 0.0295
	const peakPrice = 0.91

	var series []types.PriceSample
	appendSample := func(minute int64, price float64) {
		series = append(series, types.PriceSample{
			Timestamp: start + minute*60,
			Price:     utils.MustFloatToNAD(price),
		})
	}

	// Phase 1: stable hour before the attack.
	for minute := int64(0); minute < 60; minute++ {
		appendSample(minute, basePrice+0.0005*math.Sin(float64(minute)/10))
	}

	// Phase 2: 20-minute pump, square-root curve to the peak.
	for minute := int64(0); minute < 20; minute++ {
		progress := float64(minute) / 20
		appendSample(60+minute, basePrice+(peakPrice-basePrice)*math.Sqrt(progress))
	}

	// Phase 3: 20-minute quadratic crash back down.
	for minute := int64(0); minute < 20; minute++ {
		progress := float64(minute) / 20
		appendSample(80+minute, peakPrice-(peakPrice-0.04)*progress*progress)
	}

	// Phase 4: volatile aftermath.
	for minute := int64(0); minute < 200; minute++ {
		base := 0.04 - 0.01*(float64(minute)/200)
		price := base + 0.005*math.Sin(float64(minute)/5)
		appendSample(100+minute, math.Max(0.025, price))
	}

	return series
}

// GenerateLunaCollapse reproduces the May 2022 LUNA death spiral: ~$80 to
// near zero over six days. Hourly resolution.
func GenerateLunaCollapse() []types.PriceSample {
	start := time.Date(2022, 5, 7, 0, 0, 0, 0, time.UTC).Unix()
	const startPrice = 80.0

	var series []types.PriceSample
	appendSample := func(hour int64, price float64) {
		series = append(series, types.PriceSample{
			Timestamp: start + hour*3600,
			Price:     utils.MustFloatToNAD(price),
		})
	}

	// Phase 1: two days of mild decline with the depeg rumors building.
	for hour := int64(0); hour < 48; hour++ {
		drift := startPrice * (1 - 0.002*float64(hour))
		appendSample(hour, drift+0.5*math.Sin(float64(hour)/6))
	}

	// Phase 2: the spiral, exponential decay over four days. Halving
	// roughly every seven hours takes the price to fractions of a cent.
	phase2Start := startPrice * (1 - 0.002*48)
	for hour := int64(0); hour < 96; hour++ {
		price := phase2Start * math.Exp(-float64(hour)/10)
		appendSample(48+hour, math.Max(0.0001, price))
	}

	// Phase 3: flatline at the bottom.
	for hour := int64(0); hour < 24; hour++ {
		appendSample(144+hour, 0.0001+0.00002*math.Sin(float64(hour)))
	}

	return series
}

// GenerateFTTCollapse reproduces the Nov 2022 FTX token collapse: a slow
// slide after the balance-sheet leak, then a 90% crash once withdrawals
// halted. Hourly resolution over ten days.
func GenerateFTTCollapse() []types.PriceSample {
	start := time.Date(2022, 11, 1, 0, 0, 0, 0, time.UTC).Unix()
	const startPrice = 25.0

	var series []types.PriceSample
	appendSample := func(hour int64, price float64) {
		series = append(series, types.PriceSample{
			Timestamp: start + hour*3600,
			Price:     utils.MustFloatToNAD(price),
		})
	}

	// Phase 1: five days of slow bleed after the leak.
	for hour := int64(0); hour < 120; hour++ {
		drift := startPrice * (1 - 0.0008*float64(hour))
		appendSample(hour, drift+0.2*math.Sin(float64(hour)/8))
	}

	// Phase 2: three days of accelerating decline.
	phase2Start := startPrice * (1 - 0.0008*120)
	for hour := int64(0); hour < 72; hour++ {
		progress := float64(hour) / 72
		appendSample(120+hour, phase2Start*(1-0.45*progress))
	}

	// Phase 3: the crash to ~$2 in two days, then stabilization.
	phase3Start := phase2Start * 0.55
	for hour := int64(0); hour < 48; hour++ {
		progress := float64(hour) / 48
		price := phase3Start - (phase3Start-2.0)*math.Sqrt(progress)
		appendSample(192+hour, math.Max(2.0, price))
	}

	return series
}

// GenerateSyntheticCrisis maps a catalogued event key to its generator.
func GenerateSyntheticCrisis(eventKey string) ([]types.PriceSample, error) {
	switch eventKey {
	case "mango_exploit":
		return GenerateMangoExploit(), nil
	case "luna_collapse":
		return GenerateLunaCollapse(), nil
	case "ftt_collapse":
		return GenerateFTTCollapse(), nil
	default:
		return nil, ErrUnknownCrisis
	}
}
