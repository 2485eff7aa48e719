package screener

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/astocklab/astock-eval/internal/logger"
)

// Mode selects how a composite merges its children's selections.
type Mode string

const (
	// ModeAND keeps symbols present in every successful child result.
	ModeAND Mode = "and"
	// ModeOR keeps symbols present in at least one child result.
	ModeOR Mode = "or"
	// ModeWeighted carries per-child weights for a future ranking step.
	// Until a scoring rule exists it merges like ModeOR, and asking for
	// a top_n cutoff is an explicit error.
	ModeWeighted Mode = "weighted"
)

// Child is one member of a composite: a screener with its own parameters
// and, in weighted mode, a weight.
type Child struct {
	Screener Screener
	Params   Params
	Weight   float64
}

// Composite runs an ordered list of child screeners sequentially and
// merges their selections according to its mode. A child failure is
// logged and the child is excluded from the merge; the composite only
// fails when every child does.
type Composite struct {
	name     string
	mode     Mode
	children []Child
	log      *logger.Logger
}

// NewComposite builds a composite screener. At least one child and a
// known mode are required.
func NewComposite(name string, mode Mode, children []Child, log *logger.Logger) (*Composite, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("composite %s has no children: %w", name, ErrInvalidCombination)
	}

	switch mode {
	case ModeAND, ModeOR, ModeWeighted:
	default:
		return nil, fmt.Errorf("composite %s mode %q: %w", name, mode, ErrInvalidCombination)
	}

	return &Composite{
		name:     name,
		mode:     mode,
		children: children,
		log:      log,
	}, nil
}

func (c *Composite) Name() string {
	return c.name
}

// Mode returns the combination mode.
func (c *Composite) Mode() Mode {
	return c.mode
}

func (c *Composite) Screen(ctx context.Context, symbols []string, shared Params) (*Result, error) {
	valid, err := ValidateSymbols(symbols)
	if err != nil {
		return nil, err
	}

	if c.mode == ModeWeighted && shared.OptionalInt("top_n").IsSome() {
		return nil, fmt.Errorf("composite %s: %w", c.name, ErrWeightedRankingUnscored)
	}

	result := newResult(c.name, len(valid))

	// Count of successful children each symbol appeared in.
	hits := make(map[string]int, len(valid))
	successful := 0

	var failed []string

	for _, child := range c.children {
		childResult, err := child.Screener.Screen(ctx, valid, child.Params.Merge(shared))
		if err != nil {
			c.log.Warn("Child screener failed, excluding from merge",
				zap.String("composite", c.name),
				zap.String("child", child.Screener.Name()),
				zap.Error(err),
			)

			failed = append(failed, child.Screener.Name())

			continue
		}

		successful++

		for _, symbol := range childResult.Selected {
			hits[symbol]++
		}

		for symbol, metrics := range childResult.Metrics {
			merged, ok := result.Metrics[symbol]
			if !ok {
				merged = make(map[string]float64, len(metrics))
				result.Metrics[symbol] = merged
			}

			for key, value := range metrics {
				merged[key] = value
			}
		}
	}

	if successful == 0 {
		return nil, fmt.Errorf("composite %s, children %v: %w", c.name, failed, ErrAllChildrenFailed)
	}

	if len(failed) > 0 {
		c.log.Warn("Composite merged with partial results",
			zap.String("composite", c.name),
			zap.Strings("failed_children", failed),
			zap.Int("successful", successful),
		)
	}

	for _, symbol := range valid {
		if c.selects(hits[symbol], successful) {
			result.Selected = append(result.Selected, symbol)
		}
	}

	return result, nil
}

// selects applies the combination rule. AND requires presence in every
// child that actually ran, which shrinks with failed children.
func (c *Composite) selects(hits, successful int) bool {
	if c.mode == ModeAND {
		return hits == successful
	}

	return hits > 0
}
