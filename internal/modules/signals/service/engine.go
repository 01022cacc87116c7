package service

import (
	"fmt"
	"time"

	"signal_bot/internal/indicators"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// MinCandles is the history floor below which no decision is attempted.
const MinCandles = 60

// Engine turns a candle snapshot into a signal card using the fixed
// confluence rule: MACD vs its signal line, close vs the trailing band,
// and the liquidity-sweep veto.
type Engine struct {
	instruments *models.InstrumentSet
	tzOffset    string
}

func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		instruments: cfg.InstrumentSet(),
		tzOffset:    cfg.Scan.TZOffset,
	}
}

// Evaluate builds the card for one (symbol, timeframe) snapshot. now is the
// card's creation instant and feeds the dedup id; identical candles and now
// always give an identical card.
func (e *Engine) Evaluate(symbol, timeframe string, candles []models.Candle, now time.Time) models.Signal {
	card := models.Signal{
		ID:            models.SignalID(symbol, now),
		Symbol:        symbol,
		Timeframe:     timeframe,
		SignalTimeUTC: now.UTC(),
		TZOffset:      e.tzOffset,
	}

	if len(candles) < MinCandles {
		card.Direction = models.DirectionNoData
		card.Explanation = "Not enough candle history for a decision."
		return card
	}

	frame := indicators.ComputeFrame(candles)
	last := candles[len(candles)-1]

	macdLast := frame.MACD[len(frame.MACD)-1]
	sigLast := frame.MACDSignal[len(frame.MACDSignal)-1]
	trendLast := frame.Trend[len(frame.Trend)-1]
	sweep := frame.Sweep

	// Sweep evidence only ever vetoes a direction: "none" is compatible
	// with both sides. The SHORT check runs second and wins if both hold.
	direction := models.DirectionFlat
	if macdLast > sigLast && last.Close > trendLast && (sweep == indicators.SweepBuy || sweep == indicators.SweepNone) {
		direction = models.DirectionLong
	}
	if macdLast < sigLast && last.Close < trendLast && (sweep == indicators.SweepSell || sweep == indicators.SweepNone) {
		direction = models.DirectionShort
	}

	card.Direction = direction
	card.Explanation = confluenceText(macdLast, sigLast, last.Close, trendLast, sweep)

	if !direction.Actionable() {
		return card
	}

	inst := e.instruments.Get(symbol)
	atr14 := frame.ATR[len(frame.ATR)-1]
	entry := last.Close

	card.Entry = inst.RoundPrice(entry)
	if direction == models.DirectionLong {
		card.StopLoss = inst.RoundPrice(entry - 1.0*atr14)
		card.TakeProfit1 = inst.RoundPrice(entry + 2.0*atr14)
		card.TakeProfit2 = inst.RoundPrice(entry + 3.0*atr14)
	} else {
		card.StopLoss = inst.RoundPrice(entry + 1.0*atr14)
		card.TakeProfit1 = inst.RoundPrice(entry - 2.0*atr14)
		card.TakeProfit2 = inst.RoundPrice(entry - 3.0*atr14)
	}
	card.RiskReward1 = "1:2"
	card.RiskReward2 = "1:3"

	return card
}

// confluenceText states, in fixed order, the MACD comparison, the
// close-vs-trend comparison and the sweep class. Downstream explanation
// surfaces rely on this ordering.
func confluenceText(macd, signal, close, trend float64, sweep indicators.Sweep) string {
	macdCmp := "<"
	if macd > signal {
		macdCmp = ">"
	}
	trendCmp := "below"
	if close > trend {
		trendCmp = "above"
	}
	return fmt.Sprintf("Confluence: MACD %s signal, price %s trend line, liquidity sweep: %s.",
		macdCmp, trendCmp, sweep)
}
