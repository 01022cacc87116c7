package file

import (
	"strconv"
	"time"

	"signal_bot/internal/models"
)

// Headers is the fixed column layout of the CSV store. Order and presence
// are a compatibility contract with concurrent readers; never reorder.
var Headers = []string{
	"id", "symbol", "timeframe", "direction", "entry", "sl", "tp1", "tp2", "rr1", "rr2",
	"signal_time_utc", "tz", "taken", "taken_time_utc", "result", "closed_time_utc", "pips",
}

func encodeRow(e models.LedgerEntry) []string {
	taken := "0"
	if e.Taken {
		taken = "1"
	}
	return []string{
		e.ID,
		e.Symbol,
		e.Timeframe,
		string(e.Direction),
		formatPrice(e.Entry),
		formatPrice(e.StopLoss),
		formatPrice(e.TakeProfit1),
		formatPrice(e.TakeProfit2),
		e.RiskReward1,
		e.RiskReward2,
		formatTime(e.SignalTimeUTC),
		e.TZOffset,
		taken,
		formatTime(e.TakenTimeUTC),
		string(e.Result),
		formatTime(e.ClosedTimeUTC),
		formatPips(e.Pips, e.Result),
	}
}

// decodeRow maps one CSV record back to an entry. badTime reports how many
// timestamp fields failed to parse and were substituted with now.
func decodeRow(rec []string, now time.Time) (e models.LedgerEntry, badTime int) {
	e.ID = rec[0]
	e.Symbol = rec[1]
	e.Timeframe = rec[2]
	e.Direction = models.Direction(rec[3])
	e.Entry = parsePrice(rec[4])
	e.StopLoss = parsePrice(rec[5])
	e.TakeProfit1 = parsePrice(rec[6])
	e.TakeProfit2 = parsePrice(rec[7])
	e.RiskReward1 = rec[8]
	e.RiskReward2 = rec[9]

	var ok bool
	if e.SignalTimeUTC, ok = parseTime(rec[10]); !ok {
		e.SignalTimeUTC = now
		badTime++
	}
	e.TZOffset = rec[11]
	e.Taken = rec[12] == "1"
	if rec[13] != "" {
		if e.TakenTimeUTC, ok = parseTime(rec[13]); !ok {
			e.TakenTimeUTC = now
			badTime++
		}
	}
	e.Result = models.Result(rec[14])
	if e.Result == "" {
		e.Result = models.ResultOpen
	}
	if rec[15] != "" {
		if e.ClosedTimeUTC, ok = parseTime(rec[15]); !ok {
			e.ClosedTimeUTC = now
			badTime++
		}
	}
	if rec[16] != "" {
		e.Pips, _ = strconv.ParseFloat(rec[16], 64)
	}
	return e, badTime
}

func formatPrice(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parsePrice(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func formatPips(v float64, result models.Result) string {
	if result == models.ResultOpen {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	// tolerate the bare ISO form without zone some writers produce
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
