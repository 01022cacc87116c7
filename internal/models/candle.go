package models

import "time"

// Candle is one OHLC bar as delivered by the feed, oldest-to-newest.
// Rows with missing fields are dropped at the feed boundary and never
// reach the engines.
type Candle struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Closes extracts the close series in candle order.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
