// Package indicators holds the batch indicator math the decision engine
// runs over a candle snapshot. All functions are pure: same input slice,
// same output, no retained state.
package indicators

import (
	"math"

	"signal_bot/internal/models"
)

// EMA periods of the MACD stack and the band/volatility settings used by
// the decision rule. Kept here so the explanation surface and the engine
// can never drift apart.
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9

	ATRPeriod = 14

	TrendPeriod = 10
	TrendMult   = 3.0

	SweepLookback = 12
)

// EMA smooths values with k = 2/(period+1), seeded with the first value.
// Output has the same length as the input.
func EMA(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	k := 2.0 / (float64(period) + 1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// MACD returns the macd line, its signal line and the histogram for the
// close series. Series of different lengths are aligned by dropping the
// longer one's tail before subtracting.
func MACD(closes []float64) (macd, signal, hist []float64) {
	emaFast := EMA(closes, MACDFast)
	emaSlow := EMA(closes, MACDSlow)

	n := len(emaFast)
	if len(emaSlow) < n {
		n = len(emaSlow)
	}
	macd = make([]float64, n)
	for i := 0; i < n; i++ {
		macd[i] = emaFast[i] - emaSlow[i]
	}

	signal = EMA(macd, MACDSignal)

	n = len(macd)
	if len(signal) < n {
		n = len(signal)
	}
	hist = make([]float64, n)
	for i := 0; i < n; i++ {
		hist[i] = macd[i] - signal[i]
	}
	return macd, signal, hist
}

// TrueRange for one bar given the previous close.
func TrueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if v := math.Abs(high - prevClose); v > tr {
		tr = v
	}
	if v := math.Abs(low - prevClose); v > tr {
		tr = v
	}
	return tr
}

// ATR is the running mean of true range over a window that grows to period
// entries and then slides. The first bar has no previous close and uses
// high-low.
func ATR(candles []models.Candle, period int) []float64 {
	out := make([]float64, 0, len(candles))
	window := make([]float64, 0, period)
	var prevClose float64
	for i, c := range candles {
		var tr float64
		if i == 0 {
			tr = c.High - c.Low
		} else {
			tr = TrueRange(c.High, c.Low, prevClose)
		}
		window = append(window, tr)
		if len(window) > period {
			window = window[1:]
		}
		sum := 0.0
		for _, v := range window {
			sum += v
		}
		out = append(out, sum/float64(len(window)))
		prevClose = c.Close
	}
	return out
}

// Trend is a SuperTrend-style trailing band. Basic bands are mid ± mult*ATR;
// the final bands only ratchet toward price, and the emitted value is the
// final lower band while direction is up, otherwise the final upper band.
func Trend(candles []models.Candle, period int, mult float64) []float64 {
	n := len(candles)
	if n == 0 {
		return nil
	}

	atr := ATR(candles, period)
	basicUpper := make([]float64, n)
	basicLower := make([]float64, n)
	for i, c := range candles {
		mid := (c.High + c.Low) / 2
		r := atr[i] * mult
		basicUpper[i] = mid + r
		basicLower[i] = mid - r
	}

	finalUpper := make([]float64, n)
	finalLower := make([]float64, n)
	finalUpper[0] = basicUpper[0]
	finalLower[0] = basicLower[0]

	trend := make([]float64, n)
	dirUp := true
	for i := 1; i < n; i++ {
		prevClose := candles[i-1].Close

		finalUpper[i] = finalUpper[i-1]
		if basicUpper[i] < finalUpper[i-1] || prevClose > finalUpper[i-1] {
			finalUpper[i] = basicUpper[i]
		}
		finalLower[i] = finalLower[i-1]
		if basicLower[i] > finalLower[i-1] || prevClose < finalLower[i-1] {
			finalLower[i] = basicLower[i]
		}

		close := candles[i].Close
		if close > finalUpper[i-1] {
			dirUp = true
		} else if close < finalLower[i-1] {
			dirUp = false
		}

		if dirUp {
			trend[i] = finalLower[i]
		} else {
			trend[i] = finalUpper[i]
		}
	}
	return trend
}

// Sweep classification of the latest bar against recent extremes.
type Sweep string

const (
	SweepBuy  Sweep = "buy"  // failed downside break, bullish
	SweepSell Sweep = "sell" // failed upside break, bearish
	SweepNone Sweep = "none"
)

// LiquiditySweep compares the latest candle against the extremes of the bars
// preceding it. A new high that closes back under the prior high reads as a
// trapped-buyers sweep (sell); the mirror case reads as buy. Needs at least
// lookback+2 candles, otherwise none.
func LiquiditySweep(candles []models.Candle, lookback int) Sweep {
	if len(candles) < lookback+2 {
		return SweepNone
	}
	last := candles[len(candles)-1]
	prevs := candles[len(candles)-(lookback+2) : len(candles)-1]

	prevHigh := prevs[0].High
	prevLow := prevs[0].Low
	for _, p := range prevs[1:] {
		if p.High > prevHigh {
			prevHigh = p.High
		}
		if p.Low < prevLow {
			prevLow = p.Low
		}
	}

	if last.High > prevHigh && last.Close < prevHigh {
		return SweepSell
	}
	if last.Low < prevLow && last.Close > prevLow {
		return SweepBuy
	}
	return SweepNone
}
