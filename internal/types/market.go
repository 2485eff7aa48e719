package types

import (
	"sort"
	"time"
)

// AdjustMode is the price adjustment convention applied to historical bars.
type AdjustMode string

const (
	// AdjustNone returns raw unadjusted prices.
	AdjustNone AdjustMode = ""
	// AdjustForward is forward-adjusted (qfq), the usual choice for backtests.
	AdjustForward AdjustMode = "qfq"
	// AdjustBackward is backward-adjusted (hfq).
	AdjustBackward AdjustMode = "hfq"
)

// Bar is one daily OHLCV observation for a single instrument.
type Bar struct {
	Date   time.Time `parquet:"date" csv:"date"`
	Open   float64   `parquet:"open" csv:"open"`
	High   float64   `parquet:"high" csv:"high"`
	Low    float64   `parquet:"low" csv:"low"`
	Close  float64   `parquet:"close" csv:"close"`
	Volume float64   `parquet:"volume" csv:"volume"`
	// Amount is the traded value in CNY for the day. Zero when the
	// upstream source does not report it.
	Amount float64 `parquet:"amount" csv:"amount"`
}

// PriceSeries is an ordered sequence of bars, ascending by date with no
// duplicate dates.
type PriceSeries []Bar

// Copy returns a deep copy of the series. Callers receiving a series from
// a cache always get a copy so mutating it cannot corrupt cached storage.
func (s PriceSeries) Copy() PriceSeries {
	if s == nil {
		return nil
	}

	out := make(PriceSeries, len(s))
	copy(out, s)

	return out
}

// IsEmpty reports whether the series has no bars.
func (s PriceSeries) IsEmpty() bool {
	return len(s) == 0
}

// Closes returns the close price of every bar in order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}

	return closes
}

// Volumes returns the volume of every bar in order.
func (s PriceSeries) Volumes() []float64 {
	volumes := make([]float64, len(s))
	for i, bar := range s {
		volumes[i] = bar.Volume
	}

	return volumes
}

// Normalize sorts the series ascending by date and removes duplicate
// dates, keeping the first occurrence. Sources are expected to return
// ordered data but the invariant is enforced here.
func (s PriceSeries) Normalize() PriceSeries {
	if len(s) == 0 {
		return s
	}

	out := s.Copy()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	deduped := out[:1]

	for _, bar := range out[1:] {
		if bar.Date.Equal(deduped[len(deduped)-1].Date) {
			continue
		}

		deduped = append(deduped, bar)
	}

	return deduped
}
