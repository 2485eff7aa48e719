package commission

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommissionTestSuite struct {
	suite.Suite
}

func TestCommissionSuite(t *testing.T) {
	suite.Run(t, new(CommissionTestSuite))
}

func (suite *CommissionTestSuite) TestAStockBuyHitsFloor() {
	model := NewAStock()

	// value = 100 * 10 = 1000; commission 0.3 is below the 5 CNY floor,
	// transfer fee 0.02, no stamp duty on buys.
	fee := model.Calculate(100, 10, false)
	suite.InDelta(5.02, fee, 1e-9)
}

func (suite *CommissionTestSuite) TestAStockSellAddsStampDuty() {
	model := NewAStock()

	fee := model.Calculate(100, 10, true)
	suite.InDelta(6.02, fee, 1e-9)
}

func (suite *CommissionTestSuite) TestAStockRoundTripRatio() {
	model := NewAStock()

	value := 100 * 10.0
	roundTrip := model.Calculate(100, 10, false) + model.Calculate(100, 10, true)
	suite.InDelta(11.04, roundTrip, 1e-9)
	suite.InDelta(1.104, roundTrip/value*100, 1e-9)
}

func (suite *CommissionTestSuite) TestAStockNegativeSize() {
	model := NewAStock()

	// Size sign is irrelevant; only isSell selects stamp duty.
	suite.InDelta(model.Calculate(100, 10, true), model.Calculate(-100, 10, true), 1e-9)
}

func (suite *CommissionTestSuite) TestAStockAboveFloor() {
	model := NewAStock()

	// value = 10000 * 10 = 100000; commission 30 is above the floor.
	fee := model.Calculate(10000, 10, false)
	suite.InDelta(30+2, fee, 1e-9)
}

func (suite *CommissionTestSuite) TestZero() {
	model := NewZero()

	suite.Equal(0.0, model.Calculate(100, 10, false))
	suite.Equal(0.0, model.Calculate(100, 10, true))
}

func (suite *CommissionTestSuite) TestGetModel() {
	suite.IsType(&AStock{}, GetModel(BrokerAStock))
	suite.IsType(&Zero{}, GetModel(BrokerZero))
	suite.IsType(&AStock{}, GetModel(Broker("unknown")))
}

func (suite *CommissionTestSuite) TestConcurrentCalculate() {
	model := NewAStock()

	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 1000; j++ {
				_ = model.Calculate(100, 10, j%2 == 0)
			}
		}()
	}

	wg.Wait()
}
