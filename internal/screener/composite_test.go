package screener

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/astocklab/astock-eval/internal/logger"
)

// stubScreener returns a canned selection, or fails.
type stubScreener struct {
	name     string
	selected []string
	metrics  map[string]map[string]float64
	err      error
}

func (s *stubScreener) Name() string { return s.name }

func (s *stubScreener) Screen(_ context.Context, symbols []string, _ Params) (*Result, error) {
	if s.err != nil {
		return nil, s.err
	}

	result := newResult(s.name, len(symbols))
	result.Selected = append(result.Selected, s.selected...)

	for symbol, metrics := range s.metrics {
		result.Metrics[symbol] = metrics
	}

	return result, nil
}

type CompositeSuite struct {
	suite.Suite
	log *logger.Logger
}

func TestCompositeSuite(t *testing.T) {
	suite.Run(t, new(CompositeSuite))
}

func (s *CompositeSuite) SetupTest() {
	s.log = logger.NewNopLogger()
}

func (s *CompositeSuite) candidates() []string {
	return []string{"600001", "600002", "600003", "600004"}
}

func (s *CompositeSuite) twoChildren() []Child {
	return []Child{
		{Screener: &stubScreener{name: "a", selected: []string{"600001", "600002", "600003"}}},
		{Screener: &stubScreener{name: "b", selected: []string{"600002", "600003", "600004"}}},
	}
}

func (s *CompositeSuite) TestANDIntersection() {
	composite, err := NewComposite("combo", ModeAND, s.twoChildren(), s.log)
	s.Require().NoError(err)

	result, err := composite.Screen(context.Background(), s.candidates(), nil)
	s.Require().NoError(err)
	s.Equal([]string{"600002", "600003"}, result.Selected)
}

func (s *CompositeSuite) TestORUnion() {
	composite, err := NewComposite("combo", ModeOR, s.twoChildren(), s.log)
	s.Require().NoError(err)

	result, err := composite.Screen(context.Background(), s.candidates(), nil)
	s.Require().NoError(err)
	s.Equal([]string{"600001", "600002", "600003", "600004"}, result.Selected)
}

func (s *CompositeSuite) TestSelectionFollowsInputOrder() {
	composite, err := NewComposite("combo", ModeOR, []Child{
		{Screener: &stubScreener{name: "a", selected: []string{"600004", "600001"}}},
	}, s.log)
	s.Require().NoError(err)

	result, err := composite.Screen(context.Background(), s.candidates(), nil)
	s.Require().NoError(err)
	s.Equal([]string{"600001", "600004"}, result.Selected)
}

func (s *CompositeSuite) TestFailedChildExcludedFromMerge() {
	children := append(s.twoChildren(), Child{
		Screener: &stubScreener{name: "broken", err: errors.New("feed down")},
	})

	composite, err := NewComposite("combo", ModeAND, children, s.log)
	s.Require().NoError(err)

	// The failed child shrinks the required count to the two children
	// that actually ran.
	result, err := composite.Screen(context.Background(), s.candidates(), nil)
	s.Require().NoError(err)
	s.Equal([]string{"600002", "600003"}, result.Selected)
}

func (s *CompositeSuite) TestAllChildrenFailed() {
	composite, err := NewComposite("combo", ModeOR, []Child{
		{Screener: &stubScreener{name: "a", err: errors.New("feed down")}},
		{Screener: &stubScreener{name: "b", err: errors.New("feed down")}},
	}, s.log)
	s.Require().NoError(err)

	_, err = composite.Screen(context.Background(), s.candidates(), nil)
	s.ErrorIs(err, ErrAllChildrenFailed)
}

func (s *CompositeSuite) TestMetricMergeLaterChildWins() {
	composite, err := NewComposite("combo", ModeOR, []Child{
		{Screener: &stubScreener{
			name:     "a",
			selected: []string{"600001"},
			metrics:  map[string]map[string]float64{"600001": {"score": 1, "rsi": 40}},
		}},
		{Screener: &stubScreener{
			name:     "b",
			selected: []string{"600001"},
			metrics:  map[string]map[string]float64{"600001": {"score": 2}},
		}},
	}, s.log)
	s.Require().NoError(err)

	result, err := composite.Screen(context.Background(), s.candidates(), nil)
	s.Require().NoError(err)
	s.InDelta(2.0, result.Metrics["600001"]["score"], 1e-9)
	s.InDelta(40.0, result.Metrics["600001"]["rsi"], 1e-9)
}

func (s *CompositeSuite) TestWeightedTopNUnscored() {
	children := s.twoChildren()
	children[0].Weight = 0.7
	children[1].Weight = 0.3

	composite, err := NewComposite("combo", ModeWeighted, children, s.log)
	s.Require().NoError(err)

	_, err = composite.Screen(context.Background(), s.candidates(), Params{"top_n": 2})
	s.ErrorIs(err, ErrWeightedRankingUnscored)

	// Without a cutoff the weighted mode falls back to union bookkeeping.
	result, err := composite.Screen(context.Background(), s.candidates(), nil)
	s.Require().NoError(err)
	s.Len(result.Selected, 4)
}

func (s *CompositeSuite) TestInvalidCombination() {
	_, err := NewComposite("combo", ModeAND, nil, s.log)
	s.ErrorIs(err, ErrInvalidCombination)

	_, err = NewComposite("combo", Mode("xor"), s.twoChildren(), s.log)
	s.ErrorIs(err, ErrInvalidCombination)
}

func (s *CompositeSuite) TestValidatesCandidates() {
	composite, err := NewComposite("combo", ModeOR, s.twoChildren(), s.log)
	s.Require().NoError(err)

	_, err = composite.Screen(context.Background(), []string{"junk"}, nil)
	s.ErrorIs(err, ErrNoSymbols)
}
