package indicators

import "signal_bot/internal/models"

// Frame bundles every derived series for one candle snapshot. Building all
// of them in one call is what guarantees a decision never mixes cached and
// fresh indicator data.
type Frame struct {
	EMAFast    []float64
	EMASlow    []float64
	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64
	ATR        []float64
	Trend      []float64
	Sweep      Sweep
}

// ComputeFrame evaluates the full indicator set over candles.
func ComputeFrame(candles []models.Candle) Frame {
	closes := models.Closes(candles)
	macd, signal, hist := MACD(closes)
	return Frame{
		EMAFast:    EMA(closes, MACDFast),
		EMASlow:    EMA(closes, MACDSlow),
		MACD:       macd,
		MACDSignal: signal,
		MACDHist:   hist,
		ATR:        ATR(candles, ATRPeriod),
		Trend:      Trend(candles, TrendPeriod, TrendMult),
		Sweep:      LiquiditySweep(candles, SweepLookback),
	}
}
