package commission

import "math"

// A-share fee structure defaults: broker commission of 0.03% with a
// 5 CNY floor, stamp duty of 0.1% charged on sells only, and a transfer
// fee of 0.002% charged on both sides.
const (
	DefaultRate            = 0.0003
	DefaultMinFee          = 5.0
	DefaultStampDutyRate   = 0.001
	DefaultTransferFeeRate = 0.00002
)

// AStock implements Model with the mainland A-share fee structure.
type AStock struct {
	// Rate is the broker commission rate, charged on both sides.
	Rate float64
	// MinFee is the commission floor in CNY.
	MinFee float64
	// StampDutyRate is charged on sells only.
	StampDutyRate float64
	// TransferFeeRate is charged on both sides.
	TransferFeeRate float64
}

// NewAStock creates an A-share commission model with the standard rates.
func NewAStock() *AStock {
	return &AStock{
		Rate:            DefaultRate,
		MinFee:          DefaultMinFee,
		StampDutyRate:   DefaultStampDutyRate,
		TransferFeeRate: DefaultTransferFeeRate,
	}
}

// Calculate implements Model.
func (c *AStock) Calculate(size float64, price float64, isSell bool) float64 {
	value := math.Abs(size) * price

	fee := math.Max(value*c.Rate, c.MinFee)
	fee += value * c.TransferFeeRate

	if isSell {
		fee += value * c.StampDutyRate
	}

	return fee
}
