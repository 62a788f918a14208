package service

import "math"

// RSI computes the Wilder relative strength index over the close series
// using exponentially weighted averages with normalized weights: each of
// the running gain/loss averages is sum((1-a)^k * x_k) / sum((1-a)^k)
// with a = 1/period, newest sample weighted 1. The second value is false
// when the series is too short (fewer than period+1 closes are needed to
// form period deltas plus one warm-up sample).
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	alpha := 1.0 / float64(period)
	decay := 1.0 - alpha

	var gainNum, lossNum, den float64
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		gainNum = gain + decay*gainNum
		lossNum = loss + decay*lossNum
		den = 1 + decay*den
	}

	avgGain := gainNum / den
	avgLoss := lossNum / den
	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	rsi := 100 - 100/(1+rs)
	return math.Round(rsi*100) / 100, true
}
