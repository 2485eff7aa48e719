package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func (suite *IndicatorTestSuite) TestSMA() {
	values := []float64{1, 2, 3, 4, 5}
	out := SMA(values, 3)

	suite.True(math.IsNaN(out[0]))
	suite.True(math.IsNaN(out[1]))
	suite.InDelta(2.0, out[2], 1e-9)
	suite.InDelta(3.0, out[3], 1e-9)
	suite.InDelta(4.0, out[4], 1e-9)
}

func (suite *IndicatorTestSuite) TestSMAShortInput() {
	out := SMA([]float64{1, 2}, 5)

	suite.Len(out, 2)
	suite.True(math.IsNaN(out[0]))
	suite.True(math.IsNaN(out[1]))
}

func (suite *IndicatorTestSuite) TestEMASeededWithSMA() {
	values := []float64{2, 4, 6, 8}
	out := EMA(values, 3)

	suite.True(math.IsNaN(out[1]))
	suite.InDelta(4.0, out[2], 1e-9)
	// multiplier = 0.5: 4 + (8-4)*0.5 = 6
	suite.InDelta(6.0, out[3], 1e-9)
}

func (suite *IndicatorTestSuite) TestRSIAllGains() {
	values := []float64{1, 2, 3, 4, 5, 6}
	out := RSI(values, 3)

	suite.True(math.IsNaN(out[2]))
	suite.InDelta(100.0, out[3], 1e-9)
	suite.InDelta(100.0, out[5], 1e-9)
}

func (suite *IndicatorTestSuite) TestRSIMidRange() {
	values := []float64{10, 11, 10, 11, 10, 11, 10}
	out := RSI(values, 2)

	last := out[len(out)-1]
	suite.False(math.IsNaN(last))
	suite.Greater(last, 0.0)
	suite.Less(last, 100.0)
}

func (suite *IndicatorTestSuite) TestMACDCrossesZeroOnTrendChange() {
	values := make([]float64, 0, 80)
	for i := 0; i < 40; i++ {
		values = append(values, 100+float64(i))
	}

	for i := 0; i < 40; i++ {
		values = append(values, 140-float64(i))
	}

	macd, signal, hist := MACD(values, 12, 26, 9)

	// Rising segment: MACD above signal once both are warm.
	suite.Greater(macd[39], 0.0)
	// Falling segment drags MACD below its signal line eventually.
	suite.Less(macd[79], signal[79])
	suite.Less(hist[79], 0.0)
}

func (suite *IndicatorTestSuite) TestLast() {
	suite.True(math.IsNaN(Last(nil)))
	suite.Equal(3.0, Last([]float64{1, 2, 3}))
}
