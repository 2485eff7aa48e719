package screener

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/astocklab/astock-eval/internal/data"
	"github.com/astocklab/astock-eval/internal/logger"
	"github.com/astocklab/astock-eval/internal/types"
)

const tradingDaysPerYear = 252

// VolatilityScreener selects symbols whose annualized daily-return
// volatility falls inside a band. Too quiet and there is nothing to
// trade; too wild and the commission and slippage assumptions break.
//
// Parameters:
//
//	min_volatility annualized volatility lower bound in percent (default 15)
//	max_volatility annualized volatility upper bound in percent (default 60)
//	window_days    data retrieval window (default 365)
type VolatilityScreener struct {
	manager *data.Manager
	log     *logger.Logger
}

func NewVolatilityScreener(manager *data.Manager, log *logger.Logger) Screener {
	return &VolatilityScreener{manager: manager, log: log}
}

func (v *VolatilityScreener) Name() string {
	return "volatility"
}

func (v *VolatilityScreener) Screen(ctx context.Context, symbols []string, params Params) (*Result, error) {
	valid, err := ValidateSymbols(symbols)
	if err != nil {
		return nil, err
	}

	minVol := params.FloatParam("min_volatility", 15)
	maxVol := params.FloatParam("max_volatility", 60)
	start, end := screenWindow(params)

	result := newResult(v.Name(), len(valid))

	for _, symbol := range valid {
		series := v.manager.GetData(ctx, symbol, start, end, types.AdjustForward, false)
		if len(series) < 3 {
			v.log.Warn("Skipping symbol with insufficient data",
				zap.String("screener", v.Name()),
				zap.String("symbol", symbol),
				zap.Int("bars", len(series)),
			)

			continue
		}

		vol := annualizedVolatility(series.Closes())
		if math.IsNaN(vol) {
			continue
		}

		result.Metrics[symbol] = map[string]float64{"volatility_pct": vol}

		if vol >= minVol && vol <= maxVol {
			result.Selected = append(result.Selected, symbol)
		}
	}

	return result, nil
}

// annualizedVolatility returns the sample standard deviation of daily
// returns scaled to a yearly horizon, in percent.
func annualizedVolatility(closes []float64) float64 {
	returns := make([]float64, 0, len(closes)-1)

	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			return math.NaN()
		}

		returns = append(returns, closes[i]/closes[i-1]-1)
	}

	if len(returns) < 2 {
		return math.NaN()
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}

	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}

	std := math.Sqrt(variance / float64(len(returns)-1))

	return std * math.Sqrt(tradingDaysPerYear) * 100
}
