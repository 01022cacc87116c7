package models

import "time"

// Result of a taken signal.
type Result string

const (
	ResultOpen Result = "OPEN"
	ResultWin  Result = "WIN"
	ResultLoss Result = "LOSS"
)

// LedgerEntry is a taken signal tracked through to resolution. Created once
// per card id; only the evaluator moves Result, and only OPEN -> WIN/LOSS.
type LedgerEntry struct {
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
	TZOffset      string

	Taken        bool
	TakenTimeUTC time.Time

	Result        Result
	ClosedTimeUTC time.Time // zero while open
	Pips          float64   // set on close, 1 decimal
}

// ReferenceTime is the entry's age anchor: taken time when present,
// otherwise the signal time.
func (e LedgerEntry) ReferenceTime() time.Time {
	if !e.TakenTimeUTC.IsZero() {
		return e.TakenTimeUTC
	}
	return e.SignalTimeUTC
}

// Expired reports whether the entry has aged out of retention. Age counts
// whole days from the reference time, so an entry exactly retentionDays old
// is still kept.
func (e LedgerEntry) Expired(now time.Time, retentionDays int) bool {
	age := now.Sub(e.ReferenceTime())
	return int(age.Hours()/24) > retentionDays
}

// EntryFromSignal builds the OPEN ledger row for a card the user took.
func EntryFromSignal(s Signal, takenAt time.Time) LedgerEntry {
	return LedgerEntry{
		ID:            s.ID,
		Symbol:        s.Symbol,
		Timeframe:     s.Timeframe,
		Direction:     s.Direction,
		Entry:         s.Entry,
		StopLoss:      s.StopLoss,
		TakeProfit1:   s.TakeProfit1,
		TakeProfit2:   s.TakeProfit2,
		RiskReward1:   s.RiskReward1,
		RiskReward2:   s.RiskReward2,
		SignalTimeUTC: s.SignalTimeUTC,
		TZOffset:      s.TZOffset,
		Taken:         true,
		TakenTimeUTC:  takenAt,
		Result:        ResultOpen,
	}
}
