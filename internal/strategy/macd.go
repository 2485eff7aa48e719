package strategy

import (
	"fmt"
	"math"

	"github.com/astocklab/astock-eval/internal/indicator"
	"github.com/astocklab/astock-eval/internal/types"
)

// MACD buys when the MACD line crosses above its signal line and sells
// on the cross below.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int

	macd   []float64
	signal []float64
}

// NewMACD creates a MACD crossover strategy. Defaults: 12/26/9.
func NewMACD(params Params) (*MACD, error) {
	fast := params.IntParam("fast_period", 12)
	slow := params.IntParam("slow_period", 26)
	signal := params.IntParam("signal_period", 9)

	if fast <= 0 || slow <= fast || signal <= 0 {
		return nil, fmt.Errorf("invalid macd periods: fast=%d slow=%d signal=%d", fast, slow, signal)
	}

	return &MACD{fastPeriod: fast, slowPeriod: slow, signalPeriod: signal}, nil
}

// Name implements Strategy.
func (s *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", s.fastPeriod, s.slowPeriod, s.signalPeriod)
}

// Init implements Strategy.
func (s *MACD) Init(series types.PriceSeries) error {
	s.macd, s.signal, _ = indicator.MACD(series.Closes(), s.fastPeriod, s.slowPeriod, s.signalPeriod)
	return nil
}

// Next implements Strategy.
func (s *MACD) Next(i int) Action {
	if i < 1 || i >= len(s.macd) {
		return ActionHold
	}

	prevDiff := s.macd[i-1] - s.signal[i-1]
	currDiff := s.macd[i] - s.signal[i]

	if math.IsNaN(prevDiff) || math.IsNaN(currDiff) {
		return ActionHold
	}

	if prevDiff <= 0 && currDiff > 0 {
		return ActionBuy
	}

	if prevDiff >= 0 && currDiff < 0 {
		return ActionSell
	}

	return ActionHold
}
