package indicator

import "math"

// MACD computes the MACD line, signal line and histogram for the given
// fast/slow/signal periods. The conventional parameters are 12, 26, 9.
func MACD(values []float64, fast, slow, signal int) (macd, signalLine, histogram []float64) {
	n := len(values)
	macd = nanSlice(n)
	signalLine = nanSlice(n)
	histogram = nanSlice(n)

	if fast <= 0 || slow <= fast || signal <= 0 || n < slow {
		return macd, signalLine, histogram
	}

	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)

	for i := slow - 1; i < n; i++ {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	// Signal line is an EMA of the MACD line, seeded where MACD starts.
	start := slow - 1
	if n-start < signal {
		return macd, signalLine, histogram
	}

	var seed float64
	for i := start; i < start+signal; i++ {
		seed += macd[i]
	}

	prev := seed / float64(signal)
	signalLine[start+signal-1] = prev
	multiplier := 2.0 / float64(signal+1)

	for i := start + signal; i < n; i++ {
		prev = (macd[i]-prev)*multiplier + prev
		signalLine[i] = prev
	}

	for i := range histogram {
		if !math.IsNaN(macd[i]) && !math.IsNaN(signalLine[i]) {
			histogram[i] = macd[i] - signalLine[i]
		}
	}

	return macd, signalLine, histogram
}
