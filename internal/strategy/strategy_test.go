package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/astocklab/astock-eval/internal/types"
)

type StrategyTestSuite struct {
	suite.Suite
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func seriesFromCloses(closes []float64) types.PriceSeries {
	series := make(types.PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = types.Bar{
			Date:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}

	return series
}

func (suite *StrategyTestSuite) TestNewUnknownType() {
	_, err := New("no_such_strategy", nil)
	suite.Error(err)
}

func (suite *StrategyTestSuite) TestNewDualMADefaults() {
	strat, err := New(TypeDualMA, nil)
	suite.NoError(err)
	suite.Equal("DualMA(5,20)", strat.Name())
}

func (suite *StrategyTestSuite) TestDualMAInvalidPeriods() {
	_, err := NewDualMA(Params{"fast_period": 20, "slow_period": 5})
	suite.Error(err)
}

func (suite *StrategyTestSuite) TestDualMACrossover() {
	// Flat, then a rally: the fast average must cross above the slow one.
	closes := make([]float64, 0, 20)
	for i := 0; i < 10; i++ {
		closes = append(closes, 10)
	}

	for i := 0; i < 10; i++ {
		closes = append(closes, 10+float64(i+1))
	}

	strat, err := NewDualMA(Params{"fast_period": 2, "slow_period": 5})
	suite.Require().NoError(err)
	suite.Require().NoError(strat.Init(seriesFromCloses(closes)))

	sawBuy := false

	for i := range closes {
		if strat.Next(i) == ActionBuy {
			sawBuy = true
		}
	}

	suite.True(sawBuy)
}

func (suite *StrategyTestSuite) TestDualMASellOnReversal() {
	closes := make([]float64, 0, 30)
	for i := 0; i < 15; i++ {
		closes = append(closes, 10+float64(i))
	}

	for i := 0; i < 15; i++ {
		closes = append(closes, 25-float64(i+1))
	}

	strat, err := NewDualMA(Params{"fast_period": 2, "slow_period": 5})
	suite.Require().NoError(err)
	suite.Require().NoError(strat.Init(seriesFromCloses(closes)))

	sawSell := false

	for i := range closes {
		if strat.Next(i) == ActionSell {
			sawSell = true
		}
	}

	suite.True(sawSell)
}

func (suite *StrategyTestSuite) TestDualMAHoldsDuringWarmup() {
	closes := []float64{10, 11, 12}
	strat, err := NewDualMA(Params{"fast_period": 2, "slow_period": 5})
	suite.Require().NoError(err)
	suite.Require().NoError(strat.Init(seriesFromCloses(closes)))

	for i := range closes {
		suite.Equal(ActionHold, strat.Next(i))
	}
}

func (suite *StrategyTestSuite) TestMACDSignals() {
	closes := make([]float64, 0, 120)
	for i := 0; i < 60; i++ {
		closes = append(closes, 100+float64(i))
	}

	for i := 0; i < 60; i++ {
		closes = append(closes, 160-float64(i+1))
	}

	strat, err := New(TypeMACD, nil)
	suite.Require().NoError(err)
	suite.Require().NoError(strat.Init(seriesFromCloses(closes)))

	sawSell := false

	for i := range closes {
		if strat.Next(i) == ActionSell {
			sawSell = true
		}
	}

	suite.True(sawSell)
}

func (suite *StrategyTestSuite) TestParamHelpers() {
	params := Params{"a": 3, "b": 2.5, "c": "x", "d": int64(7)}

	suite.Equal(3, params.IntParam("a", 0))
	suite.Equal(7, params.IntParam("d", 0))
	suite.Equal(9, params.IntParam("missing", 9))
	suite.Equal(2.5, params.FloatParam("b", 0))
	suite.Equal(3.0, params.FloatParam("a", 0))
	suite.Equal("x", params.StringParam("c", ""))
	suite.Equal("y", params.StringParam("missing", "y"))
}
