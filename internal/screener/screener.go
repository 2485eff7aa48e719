package screener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moznion/go-optional"
)

var (
	// ErrScreenerNotFound is returned when a registry lookup misses.
	ErrScreenerNotFound = errors.New("screener not found")
	// ErrInvalidCombination is returned for a composite with no children
	// or an unknown combination mode.
	ErrInvalidCombination = errors.New("invalid screener combination")
	// ErrWeightedRankingUnscored is returned when a weighted composite is
	// asked for a top_n cutoff. The scoring rule for weights is not
	// defined yet, so the request cannot be honored.
	ErrWeightedRankingUnscored = errors.New("weighted ranking not yet scored")
	// ErrAllChildrenFailed is returned when every child of a composite
	// fails and no result can be merged.
	ErrAllChildrenFailed = errors.New("all child screeners failed")
	// ErrNoSymbols is returned when the candidate list is empty after
	// validation.
	ErrNoSymbols = errors.New("no valid symbols to screen")
)

const (
	defaultWindowDays = 365
	symbolCodeLength  = 6
)

// Params holds free-form screener parameters, typically decoded from a
// YAML pipeline config.
type Params map[string]any

// IntParam reads an integer parameter, tolerating the numeric types a
// YAML or JSON decoder may produce.
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

// FloatParam reads a float parameter with the same tolerance as IntParam.
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

// OptionalInt reads an integer parameter without committing to a default.
func (p Params) OptionalInt(key string) optional.Option[int] {
	value, ok := p[key]
	if !ok {
		return optional.None[int]()
	}

	switch v := value.(type) {
	case int:
		return optional.Some(v)
	case int64:
		return optional.Some(int(v))
	case float64:
		return optional.Some(int(v))
	default:
		return optional.None[int]()
	}
}

// Merge returns a new map holding p overlaid with overrides.
func (p Params) Merge(overrides Params) Params {
	merged := make(Params, len(p)+len(overrides))

	for key, value := range p {
		merged[key] = value
	}

	for key, value := range overrides {
		merged[key] = value
	}

	return merged
}

// Result is the outcome of one screening pass. Selected preserves the
// order of the validated input list.
type Result struct {
	ScreenerName string                        `yaml:"screener_name"`
	Total        int                           `yaml:"total"`
	Selected     []string                      `yaml:"selected"`
	Metrics      map[string]map[string]float64 `yaml:"metrics,omitempty"`
	Timestamp    time.Time                     `yaml:"timestamp"`
}

// SelectedCount returns the number of selected symbols.
func (r *Result) SelectedCount() int {
	return len(r.Selected)
}

func newResult(name string, total int) *Result {
	return &Result{
		ScreenerName: name,
		Total:        total,
		Selected:     make([]string, 0),
		Metrics:      make(map[string]map[string]float64),
		Timestamp:    time.Now(),
	}
}

// Screener filters a candidate symbol list down to a selected subset.
type Screener interface {
	Name() string
	Screen(ctx context.Context, symbols []string, params Params) (*Result, error)
}

// Config describes one screener invocation in a pipeline file.
type Config struct {
	Name    string  `yaml:"name" validate:"required"`
	Params  Params  `yaml:"params"`
	Weight  float64 `yaml:"weight"`
	Enabled bool    `yaml:"enabled"`
}

// ValidateSymbols drops duplicates and malformed codes, keeping the
// first occurrence order. An A-share instrument code is six digits.
func ValidateSymbols(symbols []string) ([]string, error) {
	seen := make(map[string]bool, len(symbols))
	valid := make([]string, 0, len(symbols))

	for _, symbol := range symbols {
		if !wellFormed(symbol) || seen[symbol] {
			continue
		}

		seen[symbol] = true
		valid = append(valid, symbol)
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("validated %d candidates: %w", len(symbols), ErrNoSymbols)
	}

	return valid, nil
}

func wellFormed(symbol string) bool {
	if len(symbol) != symbolCodeLength {
		return false
	}

	for _, c := range symbol {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// screenWindow resolves the lookback window for data retrieval. Callers
// can override the default with a window_days parameter.
func screenWindow(params Params) (time.Time, time.Time) {
	days := params.OptionalInt("window_days").TakeOr(defaultWindowDays)
	end := time.Now()

	return end.AddDate(0, 0, -days), end
}
