package enginev1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/astocklab/astock-eval/internal/commission"
	"github.com/astocklab/astock-eval/internal/strategy"
	"github.com/astocklab/astock-eval/internal/types"
)

type EngineV1TestSuite struct {
	suite.Suite
}

func TestEngineV1Suite(t *testing.T) {
	suite.Run(t, new(EngineV1TestSuite))
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

// vShapeSeries rises, falls, then rises again so a crossover strategy
// produces at least one full round trip.
func vShapeSeries() types.PriceSeries {
	closes := make([]float64, 0, 60)
	for i := 0; i < 20; i++ {
		closes = append(closes, 10+float64(i)*0.5)
	}

	for i := 0; i < 20; i++ {
		closes = append(closes, 20-float64(i)*0.6)
	}

	for i := 0; i < 20; i++ {
		closes = append(closes, 8+float64(i)*0.3)
	}

	return seriesFromCloses(closes)
}

func (suite *EngineV1TestSuite) newConfigured() *EngineV1 {
	e := New().(*EngineV1)
	suite.Require().NoError(e.Configure(100000, commission.NewAStock(), 0.0001))
	suite.Require().NoError(e.SetSeries(vShapeSeries()))
	suite.Require().NoError(e.SetStrategy(strategy.TypeDualMA, strategy.Params{
		"fast_period": 3,
		"slow_period": 8,
	}))

	return e
}

func (suite *EngineV1TestSuite) TestRunProducesRecord() {
	e := suite.newConfigured()

	record, err := e.Run()
	suite.Require().NoError(err)

	suite.Equal(100000.0, record.InitialCash)
	suite.Greater(record.FinalValue, 0.0)
	suite.InDelta((record.FinalValue/record.InitialCash-1)*100, record.TotalReturn, 1e-9)
	suite.GreaterOrEqual(record.TotalTrades, 1)
	suite.GreaterOrEqual(record.MaxDrawdown, 0.0)
	suite.GreaterOrEqual(record.WinRate, 0.0)
	suite.LessOrEqual(record.WinRate, 100.0)
}

func (suite *EngineV1TestSuite) TestRunTwiceFails() {
	e := suite.newConfigured()

	_, err := e.Run()
	suite.Require().NoError(err)

	_, err = e.Run()
	suite.ErrorIs(err, ErrAlreadyRan)
}

func (suite *EngineV1TestSuite) TestRunWithoutConfigure() {
	e := New()
	suite.Require().NoError(e.SetSeries(vShapeSeries()))
	suite.Require().NoError(e.SetStrategy(strategy.TypeDualMA, nil))

	_, err := e.Run()
	suite.ErrorIs(err, ErrNotConfigured)
}

func (suite *EngineV1TestSuite) TestRunWithoutSeries() {
	e := New()
	suite.Require().NoError(e.Configure(100000, nil, 0))
	suite.Require().NoError(e.SetStrategy(strategy.TypeDualMA, nil))

	_, err := e.Run()
	suite.ErrorIs(err, ErrNoSeries)
}

func (suite *EngineV1TestSuite) TestSetSeriesEmpty() {
	e := New()

	suite.ErrorIs(e.SetSeries(nil), ErrNoSeries)
}

func (suite *EngineV1TestSuite) TestSetStrategyUnknown() {
	e := New()

	suite.Error(e.SetStrategy("bogus", nil))
}

func (suite *EngineV1TestSuite) TestConfigureRejectsNonPositiveCash() {
	e := New()

	suite.Error(e.Configure(0, nil, 0))
	suite.Error(e.Configure(-100, nil, 0))
}

func (suite *EngineV1TestSuite) TestFlatSeriesNoTrades() {
	e := New().(*EngineV1)
	suite.Require().NoError(e.Configure(100000, commission.NewZero(), 0))
	suite.Require().NoError(e.SetSeries(seriesFromCloses([]float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10})))
	suite.Require().NoError(e.SetStrategy(strategy.TypeDualMA, strategy.Params{
		"fast_period": 2,
		"slow_period": 4,
	}))

	record, err := e.Run()
	suite.Require().NoError(err)

	suite.Equal(0, record.TotalTrades)
	suite.Equal(0.0, record.WinRate)
	suite.InDelta(100000.0, record.FinalValue, 1e-9)
	suite.InDelta(0.0, record.TotalReturn, 1e-9)
}

func (suite *EngineV1TestSuite) TestMaxDrawdown() {
	suite.InDelta(50.0, maxDrawdown([]float64{100, 200, 100, 150}), 1e-9)
	suite.InDelta(0.0, maxDrawdown([]float64{100, 110, 120}), 1e-9)
}

func (suite *EngineV1TestSuite) TestSharpeRatioFlatIsZero() {
	suite.Equal(0.0, sharpeRatio([]float64{100, 100, 100, 100}))
	suite.Equal(0.0, sharpeRatio([]float64{100}))
}

func (suite *EngineV1TestSuite) TestSharpeRatioUptrendPositive() {
	equity := make([]float64, 30)
	for i := range equity {
		equity[i] = 100 + float64(i) + float64(i%3)
	}

	suite.Greater(sharpeRatio(equity), 0.0)
}
