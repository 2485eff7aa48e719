// Package enginev1 is the reference simulation engine: bar-by-bar fills
// at the close, whole-position entries and exits, lot-of-100 sizing and
// decimal cash accounting.
package enginev1

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/astocklab/astock-eval/internal/commission"
	"github.com/astocklab/astock-eval/internal/engine"
	"github.com/astocklab/astock-eval/internal/strategy"
	"github.com/astocklab/astock-eval/internal/types"
)

// A-share trading lot size.
const lotSize = 100

// Annualization factor for daily returns.
const tradingDaysPerYear = 252

var (
	ErrNotConfigured = errors.New("engine is not configured")
	ErrNoSeries      = errors.New("no price series attached")
	ErrNoStrategy    = errors.New("no strategy attached")
	// ErrAlreadyRan guards against reuse: an instance accumulates
	// position state and must not be run twice.
	ErrAlreadyRan = errors.New("engine instance already ran; create a fresh one")
)

type EngineV1 struct {
	initialCash float64
	comm        commission.Model
	slippage    float64
	series      types.PriceSeries
	strat       strategy.Strategy

	configured bool
	ran        bool
}

// New creates an unconfigured engine instance.
func New() engine.Engine {
	return &EngineV1{}
}

// Factory returns a factory producing fresh EngineV1 instances.
func Factory() engine.Factory {
	return New
}

// Configure implements engine.Engine.
func (e *EngineV1) Configure(initialCash float64, model commission.Model, slippagePct float64) error {
	if initialCash <= 0 {
		return errors.New("initial cash must be positive")
	}

	if model == nil {
		model = commission.NewZero()
	}

	e.initialCash = initialCash
	e.comm = model
	e.slippage = slippagePct
	e.configured = true

	return nil
}

// SetSeries implements engine.Engine.
func (e *EngineV1) SetSeries(series types.PriceSeries) error {
	if series.IsEmpty() {
		return ErrNoSeries
	}

	e.series = series

	return nil
}

// SetStrategy implements engine.Engine.
func (e *EngineV1) SetStrategy(strategyType string, params strategy.Params) error {
	strat, err := strategy.New(strategyType, params)
	if err != nil {
		return err
	}

	e.strat = strat

	return nil
}

// Run implements engine.Engine.
func (e *EngineV1) Run() (*types.PerformanceRecord, error) {
	switch {
	case e.ran:
		return nil, ErrAlreadyRan
	case !e.configured:
		return nil, ErrNotConfigured
	case e.series.IsEmpty():
		return nil, ErrNoSeries
	case e.strat == nil:
		return nil, ErrNoStrategy
	}

	e.ran = true

	if err := e.strat.Init(e.series); err != nil {
		return nil, err
	}

	cash := decimal.NewFromFloat(e.initialCash)
	shares := 0.0
	costBasis := decimal.Zero
	trades := 0
	wins := 0
	equity := make([]float64, 0, len(e.series))

	for i, bar := range e.series {
		switch e.strat.Next(i) {
		case strategy.ActionBuy:
			if shares == 0 {
				shares, cash, costBasis = e.enterPosition(cash, bar.Close)
			}
		case strategy.ActionSell:
			if shares > 0 {
				var net decimal.Decimal
				cash, net = e.exitPosition(cash, shares, bar.Close)
				trades++

				if net.GreaterThan(costBasis) {
					wins++
				}

				shares = 0
				costBasis = decimal.Zero
			}
		case strategy.ActionHold:
		}

		equity = append(equity, cash.InexactFloat64()+shares*bar.Close)
	}

	finalValue := equity[len(equity)-1]

	record := &types.PerformanceRecord{
		InitialCash: e.initialCash,
		FinalValue:  finalValue,
		TotalReturn: (finalValue/e.initialCash - 1) * 100,
		TotalTrades: trades,
		WinRate:     winRate(wins, trades),
		MaxDrawdown: maxDrawdown(equity),
		SharpeRatio: sharpeRatio(equity),
	}

	return record, nil
}

// enterPosition buys as many whole lots as cash allows at the slipped
// close. Returns the new share count, remaining cash and cost basis.
func (e *EngineV1) enterPosition(cash decimal.Decimal, close float64) (float64, decimal.Decimal, decimal.Decimal) {
	execPrice := close * (1 + e.slippage)
	if execPrice <= 0 {
		return 0, cash, decimal.Zero
	}

	cashF := cash.InexactFloat64()
	qty := math.Floor(cashF/execPrice/lotSize) * lotSize

	// Shrink until the fill plus fees fits in cash.
	for qty > 0 {
		cost := qty*execPrice + e.comm.Calculate(qty, execPrice, false)
		if cost <= cashF {
			costBasis := decimal.NewFromFloat(cost)
			return qty, cash.Sub(costBasis), costBasis
		}

		qty -= lotSize
	}

	return 0, cash, decimal.Zero
}

// exitPosition sells the whole position at the slipped close. Returns the
// new cash and the net proceeds of the sale.
func (e *EngineV1) exitPosition(cash decimal.Decimal, shares float64, close float64) (decimal.Decimal, decimal.Decimal) {
	execPrice := close * (1 - e.slippage)
	proceeds := shares*execPrice - e.comm.Calculate(shares, execPrice, true)
	net := decimal.NewFromFloat(proceeds)

	return cash.Add(net), net
}

func winRate(wins, trades int) float64 {
	if trades == 0 {
		return 0
	}

	return float64(wins) / float64(trades) * 100
}

// maxDrawdown returns the largest peak-to-trough decline in percent.
func maxDrawdown(equity []float64) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0

	for _, value := range equity {
		if value > peak {
			peak = value
		}

		if peak > 0 {
			dd := (peak - value) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// sharpeRatio annualizes the mean/stddev of daily equity returns. A zero
// risk-free rate is assumed.
func sharpeRatio(equity []float64) float64 {
	if len(equity) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)

	for i := 1; i < len(equity); i++ {
		if equity[i-1] != 0 {
			returns = append(returns, equity[i]/equity[i-1]-1)
		}
	}

	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}

	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}

	variance /= float64(len(returns) - 1)

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	return mean / std * math.Sqrt(tradingDaysPerYear)
}
