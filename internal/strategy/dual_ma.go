package strategy

import (
	"fmt"
	"math"

	"github.com/astocklab/astock-eval/internal/indicator"
	"github.com/astocklab/astock-eval/internal/types"
)

// DualMA buys when the fast moving average crosses above the slow one
// and sells on the cross below.
type DualMA struct {
	fastPeriod int
	slowPeriod int

	fast []float64
	slow []float64
}

// NewDualMA creates a dual moving average strategy. Defaults: 5/20.
func NewDualMA(params Params) (*DualMA, error) {
	fast := params.IntParam("fast_period", 5)
	slow := params.IntParam("slow_period", 20)

	if fast <= 0 || slow <= fast {
		return nil, fmt.Errorf("invalid dual_ma periods: fast=%d slow=%d", fast, slow)
	}

	return &DualMA{fastPeriod: fast, slowPeriod: slow}, nil
}

// Name implements Strategy.
func (s *DualMA) Name() string {
	return fmt.Sprintf("DualMA(%d,%d)", s.fastPeriod, s.slowPeriod)
}

// Init implements Strategy.
func (s *DualMA) Init(series types.PriceSeries) error {
	closes := series.Closes()
	s.fast = indicator.SMA(closes, s.fastPeriod)
	s.slow = indicator.SMA(closes, s.slowPeriod)

	return nil
}

// Next implements Strategy.
func (s *DualMA) Next(i int) Action {
	if i < 1 || i >= len(s.fast) {
		return ActionHold
	}

	prevFast, prevSlow := s.fast[i-1], s.slow[i-1]
	currFast, currSlow := s.fast[i], s.slow[i]

	if math.IsNaN(prevFast) || math.IsNaN(prevSlow) || math.IsNaN(currFast) || math.IsNaN(currSlow) {
		return ActionHold
	}

	if prevFast <= prevSlow && currFast > currSlow {
		return ActionBuy
	}

	if prevFast >= prevSlow && currFast < currSlow {
		return ActionSell
	}

	return ActionHold
}
