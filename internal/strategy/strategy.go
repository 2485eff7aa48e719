// Package strategy holds the trading strategies handed to the simulation
// engine. The engine treats them as opaque signal generators.
package strategy

import (
	"fmt"

	"github.com/astocklab/astock-eval/internal/types"
)

// Action is the decision a strategy emits for one bar.
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

// Params carries strategy parameters parsed from config. Values are
// looked up with the typed helpers below.
type Params map[string]any

// Strategy produces buy/sell decisions over an attached price series.
// Init is called once with the full series; Next is called per bar index
// in ascending order.
type Strategy interface {
	Name() string
	Init(series types.PriceSeries) error
	Next(i int) Action
}

// Type names accepted by New.
const (
	TypeDualMA = "dual_ma"
	TypeMACD   = "macd"
)

// New constructs a fresh strategy instance of the given type. Every
// evaluation gets its own instance because strategies keep per-run state.
func New(strategyType string, params Params) (Strategy, error) {
	switch strategyType {
	case TypeDualMA:
		return NewDualMA(params)
	case TypeMACD:
		return NewMACD(params)
	default:
		return nil, fmt.Errorf("unknown strategy type: %s", strategyType)
	}
}

// IntParam reads an integer parameter, accepting the numeric types YAML
// and JSON decoders produce.
func (p Params) IntParam(key string, fallback int) int {
	value, ok := p[key]
	if !ok {
		return fallback
	}

	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// FloatParam reads a float parameter.
func (p Params) FloatParam(key string, fallback float64) float64 {
	value, ok := p[key]
	if !ok {
		return fallback
	}

	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// StringParam reads a string parameter.
func (p Params) StringParam(key string, fallback string) string {
	if value, ok := p[key].(string); ok {
		return value
	}

	return fallback
}
