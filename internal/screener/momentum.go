package screener

import (
	"context"

	"go.uber.org/zap"

	"github.com/astocklab/astock-eval/internal/data"
	"github.com/astocklab/astock-eval/internal/logger"
	"github.com/astocklab/astock-eval/internal/types"
)

// MomentumScreener selects symbols whose return over a recent lookback
// period exceeds a threshold.
//
// Parameters:
//
//	period      lookback in trading days (default 20)
//	threshold   minimum period return in percent (default 10)
//	window_days data retrieval window (default 365)
type MomentumScreener struct {
	manager *data.Manager
	log     *logger.Logger
}

func NewMomentumScreener(manager *data.Manager, log *logger.Logger) Screener {
	return &MomentumScreener{manager: manager, log: log}
}

func (m *MomentumScreener) Name() string {
	return "momentum"
}

func (m *MomentumScreener) Screen(ctx context.Context, symbols []string, params Params) (*Result, error) {
	valid, err := ValidateSymbols(symbols)
	if err != nil {
		return nil, err
	}

	period := params.IntParam("period", 20)
	threshold := params.FloatParam("threshold", 10.0)
	start, end := screenWindow(params)

	result := newResult(m.Name(), len(valid))

	for _, symbol := range valid {
		series := m.manager.GetData(ctx, symbol, start, end, types.AdjustForward, false)
		if len(series) <= period {
			m.log.Warn("Skipping symbol with insufficient data",
				zap.String("screener", m.Name()),
				zap.String("symbol", symbol),
				zap.Int("bars", len(series)),
			)

			continue
		}

		closes := series.Closes()
		last := closes[len(closes)-1]
		base := closes[len(closes)-1-period]

		if base == 0 {
			continue
		}

		momentum := (last/base - 1) * 100
		result.Metrics[symbol] = map[string]float64{"momentum_pct": momentum}

		if momentum >= threshold {
			result.Selected = append(result.Selected, symbol)
		}
	}

	return result, nil
}
