/*

This file contains the pool orchestrator: the time-stepped state machine
that owns the reserves and the borrower positions, drives the oracle and the
collateral factor solver, applies liquidations, and records one immutable
snapshot per step.

One pool instance never shares mutable state with another, so independent
configurations can be simulated in parallel against the same read-only price
series without locks.

*/

package pool

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/Fadi7anna/omnipair-gamm-risk/internal/collateral"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/config"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/liquidation"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/logger"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/oracle"
	"github.com/Fadi7anna/omnipair-gamm-risk/internal/types"
)

// Pool is one simulated lending pool under one immutable configuration.
// All operations are single-goroutine; steps must arrive in non-decreasing
// timestamp order (enforced at series ingestion).
type Pool struct {
	cfg    config.SimulationConfig
	logger zerolog.Logger

	reserveBase  sdkmath.Int
	reserveQuote sdkmath.Int

	totalDebt       sdkmath.Int
	totalCollateral sdkmath.Int

	priceOracle *oracle.PriceOracle
	cfSolver    *collateral.Solver
	liqEngine   *liquidation.Engine

	// Position arena: stable integer id -> record, mutated in place so
	// terminal entries can be skipped cheaply across many steps.
	positions []*types.BorrowerPosition

	snapshots []types.PoolSnapshot
	events    []types.LiquidationEvent

	currentTime int64
}

// NewPool validates the configuration, builds the components and primes the
// oracle with the initial spot price implied by the reserves.
func NewPool(
	cfg config.SimulationConfig,
	reserveBase, reserveQuote sdkmath.Int,
	initialTimestamp int64,
) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config %q: %w", cfg.Name, err)
	}

	halfLife := cfg.HalfLife
	if !cfg.EMAEnabled {
		halfLife = config.DefaultHalfLife
	}
	priceOracle, err := oracle.NewPriceOracle(cfg.EMAEnabled, halfLife)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		cfg:             cfg,
		logger:          logger.GetForComponent("gamm_pool"),
		reserveBase:     reserveBase,
		reserveQuote:    reserveQuote,
		totalDebt:       sdkmath.ZeroInt(),
		totalCollateral: sdkmath.ZeroInt(),
		priceOracle:     priceOracle,
		cfSolver:        collateral.NewSolver(cfg.CollateralFactor),
		liqEngine:       liquidation.NewEngine(cfg.Liquidation),
		currentTime:     initialTimestamp,
	}

	p.priceOracle.Update(p.SpotPrice(), initialTimestamp)
	return p, nil
}

// SpotPrice is the price implied by the reserves: quote/base, NAD-scaled.
func (p *Pool) SpotPrice() sdkmath.Int {
	if p.reserveBase.IsZero() {
		return sdkmath.ZeroInt()
	}
	return p.reserveQuote.Mul(config.NAD).Quo(p.reserveBase)
}

// syncReservesToPrice adjusts the quote reserve so the implied spot equals
// the supplied market price, holding the base reserve fixed. Trade execution
// mechanics are out of scope; the market price is an external input.
func (p *Pool) syncReservesToPrice(newPrice sdkmath.Int) {
	p.reserveQuote = p.reserveBase.Mul(newPrice).Quo(config.NAD)
}

// OpenPosition creates a borrower position at the given timestamp: the
// solver derives the maximum borrow at the current lending price, and the
// borrower takes targetLTV of it. The borrowed amount leaves the quote
// reserve.
func (p *Pool) OpenPosition(
	collateralAmount sdkmath.Int,
	targetLTV float64,
	timestamp int64,
) (*types.BorrowerPosition, error) {
	if targetLTV < 0 || targetLTV > 1 {
		return nil, fmt.Errorf("target LTV must be in [0, 1], got %f", targetLTV)
	}

	lendingPrice := p.priceOracle.Update(p.SpotPrice(), timestamp)
	spotPrice := p.SpotPrice()

	solved := p.cfSolver.Solve(collateralAmount, lendingPrice, spotPrice, p.reserveQuote)

	ltvDec := sdkmath.LegacyMustNewDecFromStr(fmt.Sprintf("%.9f", targetLTV))
	debt := ltvDec.MulInt(solved.MaxBorrow).TruncateInt()

	position := &types.BorrowerPosition{
		ID:               types.PositionID(len(p.positions) + 1),
		CollateralAmount: collateralAmount,
		DebtAmount:       debt,
		EntryPrice:       lendingPrice,
		EntryTime:        timestamp,
		LiquidationPrice: sdkmath.ZeroInt(),
		BadDebtAccrued:   sdkmath.ZeroInt(),
	}
	p.positions = append(p.positions, position)

	p.totalDebt = p.totalDebt.Add(debt)
	p.totalCollateral = p.totalCollateral.Add(collateralAmount)

	p.reserveQuote = p.reserveQuote.Sub(debt)
	if p.reserveQuote.IsNegative() {
		p.reserveQuote = sdkmath.ZeroInt()
	}

	p.logger.Debug().
		Int("positionID", int(position.ID)).
		Str("collateral", collateralAmount.String()).
		Str("debt", debt.String()).
		Int64("maxAllowedCFBps", solved.MaxAllowedCFBps).
		Msg("Position opened")

	return position, nil
}

// Step advances the simulation by one externally supplied price sample:
// resync reserves, derive the lending price (the single oracle mutation of
// the step), evaluate and apply liquidations, then snapshot. Every per-step
// read uses the one lending price derived here.
func (p *Pool) Step(newPrice sdkmath.Int, timestamp int64) types.PoolSnapshot {
	p.currentTime = timestamp
	p.syncReservesToPrice(newPrice)

	lendingPrice := p.priceOracle.Update(p.SpotPrice(), timestamp)
	spotPrice := p.SpotPrice()

	p.checkLiquidations(lendingPrice, spotPrice, timestamp)

	avgCF, active := p.averageLiquidationCF(lendingPrice, spotPrice)

	snapshot := types.PoolSnapshot{
		Timestamp:         timestamp,
		ReserveBase:       p.reserveBase,
		ReserveQuote:      p.reserveQuote,
		TotalDebt:         p.totalDebt,
		TotalCollateral:   p.totalCollateral,
		SpotPrice:         spotPrice,
		LendingPrice:      lendingPrice,
		AverageCFBps:      avgCF,
		ActivePositions:   active,
		TotalBadDebt:      p.liqEngine.TotalBadDebt(),
		ProtocolHealthPct: p.protocolHealthPct(lendingPrice),
	}
	p.snapshots = append(p.snapshots, snapshot)
	return snapshot
}

// checkLiquidations evaluates every non-terminal position at the step's
// lending price and applies liquidatable outcomes. Each position is
// evaluated once per step; a partially liquidated position is only
// re-checked on the next step. CF is recomputed per position against the
// reserves as they stand, so repayments earlier in the pass deepen the
// quote reserve seen by later positions.
func (p *Pool) checkLiquidations(lendingPrice, spotPrice sdkmath.Int, timestamp int64) {
	for _, position := range p.positions {
		if position.Liquidated {
			continue
		}

		solved := p.cfSolver.Solve(position.CollateralAmount, lendingPrice, spotPrice, p.reserveQuote)

		outcome := p.liqEngine.CheckAndLiquidate(
			position.CollateralAmount,
			lendingPrice,
			position.DebtAmount,
			solved.LiquidationCFBps,
		)
		if !outcome.Liquidatable {
			continue
		}

		position.Liquidated = true
		position.LiquidationTime = timestamp
		position.LiquidationPrice = lendingPrice
		position.BadDebtAccrued = position.BadDebtAccrued.Add(outcome.BadDebt)
		position.CollateralAmount = outcome.RemainingCollateral
		position.DebtAmount = outcome.RemainingDebt

		p.totalDebt = p.totalDebt.Sub(outcome.DebtToRepay)
		p.totalCollateral = p.totalCollateral.Sub(outcome.CollateralSeized)

		// Seized collateral minus the liquidator bonus flows back into the
		// base reserve; the repaid debt returns to the quote reserve.
		p.reserveBase = p.reserveBase.Add(outcome.CollateralToReserves)
		p.reserveQuote = p.reserveQuote.Add(outcome.DebtToRepay)

		p.events = append(p.events, types.LiquidationEvent{
			Timestamp:  timestamp,
			PositionID: position.ID,
			Price:      lendingPrice,
			SpotPrice:  spotPrice,
			Outcome:    outcome,
		})

		p.logger.Info().
			Int("positionID", int(position.ID)).
			Int64("timestamp", timestamp).
			Bool("insolvent", outcome.IsInsolvent).
			Str("badDebt", outcome.BadDebt.String()).
			Msg("Liquidation executed")
	}
}

// averageLiquidationCF recomputes each still-active position's liquidation
// CF at the step's prices and averages them.
func (p *Pool) averageLiquidationCF(lendingPrice, spotPrice sdkmath.Int) (int64, int) {
	var totalCF int64
	active := 0
	for _, position := range p.positions {
		if position.Liquidated {
			continue
		}
		solved := p.cfSolver.Solve(position.CollateralAmount, lendingPrice, spotPrice, p.reserveQuote)
		totalCF += solved.LiquidationCFBps
		active++
	}
	if active == 0 {
		return 0, 0
	}
	return totalCF / int64(active), active
}

// protocolHealthPct is ((total collateral value - total debt) * 100) /
// total debt at the step's lending price, or the 999 sentinel at zero debt.
func (p *Pool) protocolHealthPct(lendingPrice sdkmath.Int) int64 {
	if !p.totalDebt.IsPositive() {
		return config.HealthSentinel
	}
	collateralValue := p.totalCollateral.Mul(lendingPrice).Quo(config.NAD)
	health := collateralValue.Sub(p.totalDebt).MulRaw(100).Quo(p.totalDebt)
	if !health.IsInt64() {
		return config.HealthSentinel
	}
	return health.Int64()
}

// Snapshots returns the append-only snapshot history, one entry per step.
func (p *Pool) Snapshots() []types.PoolSnapshot {
	return p.snapshots
}

// Events returns the liquidation events recorded so far.
func (p *Pool) Events() []types.LiquidationEvent {
	return p.events
}

// Positions returns the full position list, terminal states included.
func (p *Pool) Positions() []types.BorrowerPosition {
	out := make([]types.BorrowerPosition, len(p.positions))
	for i, position := range p.positions {
		out[i] = *position
	}
	return out
}

// Statistics aggregates the run so far.
func (p *Pool) Statistics() types.RunStatistics {
	active, liquidated := 0, 0
	totalBorrowed := sdkmath.ZeroInt()
	for _, position := range p.positions {
		if position.Liquidated {
			liquidated++
		} else {
			active++
		}
		totalBorrowed = totalBorrowed.Add(position.DebtAmount)
	}

	badDebt := p.liqEngine.TotalBadDebt()
	badDebtRate := int64(0)
	if totalBorrowed.IsPositive() {
		badDebtRate = badDebt.Mul(config.BPSDenom).Quo(totalBorrowed).Int64()
	}

	finalHealth := int64(0)
	if len(p.snapshots) > 0 {
		finalHealth = p.snapshots[len(p.snapshots)-1].ProtocolHealthPct
	}

	return types.RunStatistics{
		ConfigName:          p.cfg.Name,
		TotalPositions:      len(p.positions),
		ActivePositions:     active,
		LiquidatedPositions: liquidated,
		TotalBorrowed:       totalBorrowed,
		TotalBadDebt:        badDebt,
		BadDebtRateBps:      badDebtRate,
		TotalLiquidations:   p.liqEngine.TotalLiquidations(),
		FinalHealthPct:      finalHealth,
	}
}

// LPReturn computes the fractional change in pool value over the run, where
// pool value = reserves + marked collateral - debt - bad debt, all valued
// at the final snapshot's lending price.
func (p *Pool) LPReturn(initialPoolValue sdkmath.Int) float64 {
	if len(p.snapshots) == 0 || !initialPoolValue.IsPositive() {
		return 0
	}
	final := p.snapshots[len(p.snapshots)-1]

	finalValue := final.ReserveBase.Mul(final.LendingPrice).Quo(config.NAD).
		Add(final.ReserveQuote).
		Add(final.TotalCollateral.Mul(final.LendingPrice).Quo(config.NAD)).
		Sub(final.TotalDebt).
		Sub(final.TotalBadDebt)

	delta := sdkmath.LegacyNewDecFromInt(finalValue.Sub(initialPoolValue))
	ratio := delta.Quo(sdkmath.LegacyNewDecFromInt(initialPoolValue))
	f, err := ratio.Float64()
	if err != nil {
		return 0
	}
	return f
}
