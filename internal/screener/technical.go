package screener

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/astocklab/astock-eval/internal/data"
	"github.com/astocklab/astock-eval/internal/indicator"
	"github.com/astocklab/astock-eval/internal/logger"
	"github.com/astocklab/astock-eval/internal/types"
)

// TechnicalScreener selects symbols in an established uptrend: price
// above the long moving average, short average above the long one, RSI
// inside a band and recent volume above its average.
//
// Parameters:
//
//	fast_ma      short moving average period (default 5)
//	slow_ma      long moving average period (default 20)
//	rsi_period   RSI period (default 14)
//	rsi_min      lower RSI bound (default 30)
//	rsi_max      upper RSI bound (default 70)
//	volume_ratio minimum last-volume over average-volume (default 1.0)
//	window_days  data retrieval window (default 365)
type TechnicalScreener struct {
	manager *data.Manager
	log     *logger.Logger
}

func NewTechnicalScreener(manager *data.Manager, log *logger.Logger) Screener {
	return &TechnicalScreener{manager: manager, log: log}
}

func (t *TechnicalScreener) Name() string {
	return "technical"
}

func (t *TechnicalScreener) Screen(ctx context.Context, symbols []string, params Params) (*Result, error) {
	valid, err := ValidateSymbols(symbols)
	if err != nil {
		return nil, err
	}

	fastMA := params.IntParam("fast_ma", 5)
	slowMA := params.IntParam("slow_ma", 20)
	rsiPeriod := params.IntParam("rsi_period", 14)
	rsiMin := params.FloatParam("rsi_min", 30)
	rsiMax := params.FloatParam("rsi_max", 70)
	minVolumeRatio := params.FloatParam("volume_ratio", 1.0)
	start, end := screenWindow(params)

	result := newResult(t.Name(), len(valid))

	for _, symbol := range valid {
		series := t.manager.GetData(ctx, symbol, start, end, types.AdjustForward, false)

		required := slowMA
		if rsiPeriod+1 > required {
			required = rsiPeriod + 1
		}

		if len(series) < required {
			t.log.Warn("Skipping symbol with insufficient data",
				zap.String("screener", t.Name()),
				zap.String("symbol", symbol),
				zap.Int("bars", len(series)),
			)

			continue
		}

		closes := series.Closes()
		volumes := series.Volumes()

		fast := indicator.Last(indicator.SMA(closes, fastMA))
		slow := indicator.Last(indicator.SMA(closes, slowMA))
		rsi := indicator.Last(indicator.RSI(closes, rsiPeriod))
		lastClose := closes[len(closes)-1]
		volRatio := volumeRatio(volumes, slowMA)

		if math.IsNaN(fast) || math.IsNaN(slow) || math.IsNaN(rsi) {
			continue
		}

		result.Metrics[symbol] = map[string]float64{
			"rsi":          rsi,
			"fast_ma":      fast,
			"slow_ma":      slow,
			"volume_ratio": volRatio,
		}

		uptrend := lastClose > slow && fast > slow
		rsiOK := rsi >= rsiMin && rsi <= rsiMax
		volumeOK := volRatio >= minVolumeRatio

		if uptrend && rsiOK && volumeOK {
			result.Selected = append(result.Selected, symbol)
		}
	}

	return result, nil
}

// volumeRatio compares the last bar's volume to its trailing average.
func volumeRatio(volumes []float64, period int) float64 {
	if len(volumes) < period || period == 0 {
		return 0
	}

	var sum float64
	for _, v := range volumes[len(volumes)-period:] {
		sum += v
	}

	avg := sum / float64(period)
	if avg == 0 {
		return 0
	}

	return volumes[len(volumes)-1] / avg
}
