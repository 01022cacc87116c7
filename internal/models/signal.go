package models

import (
	"fmt"
	"time"
)

// Direction of a signal card.
type Direction string

const (
	DirectionLong   Direction = "LONG"
	DirectionShort  Direction = "SHORT"
	DirectionFlat   Direction = "FLAT"    // confluence not met, no levels
	DirectionNoData Direction = "NO_DATA" // fewer than 60 candles, no levels
)

func (d Direction) Actionable() bool {
	return d == DirectionLong || d == DirectionShort
}

// Signal is one analysis card for a (symbol, timeframe). Ephemeral until the
// user takes it; ID is the dedup key for the ledger.
type Signal struct {
	ID        string
	Symbol    string
	Timeframe string
	Direction Direction

	Entry       float64
	StopLoss    float64
	TakeProfit1 float64
	TakeProfit2 float64
	RiskReward1 string
	RiskReward2 string

	SignalTimeUTC time.Time
	TZOffset      string // display offset, e.g. "+02:00"

	Explanation string
}

// SignalID derives the card id from symbol and creation time.
func SignalID(symbol string, at time.Time) string {
	return fmt.Sprintf("%s-%d", symbol, at.Unix())
}

// LocalTime shifts t by the card's display offset. The shifted value is
// naive wall-clock time, offset math only.
func (s Signal) LocalTime() time.Time {
	return ApplyTZOffset(s.SignalTimeUTC, s.TZOffset)
}
