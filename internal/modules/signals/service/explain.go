package service

import (
	"fmt"

	"signal_bot/internal/indicators"
	"signal_bot/internal/models"
)

// Explain renders the long-form walkthrough for a card. Deterministic:
// the same card always produces the same text, and the indicator settings
// quoted here are the constants the engine actually ran with.
func Explain(card models.Signal) string {
	switch card.Direction {
	case models.DirectionNoData:
		return fmt.Sprintf("For %s on %s there was not enough candle history to analyze (minimum %d bars).",
			card.Symbol, card.Timeframe, MinCandles)
	case models.DirectionFlat:
		return fmt.Sprintf("For %s on %s the confluence did not line up. %s No entry, stop or target is offered without it.",
			card.Symbol, card.Timeframe, card.Explanation)
	}

	return fmt.Sprintf(
		"For %s on %s I detected: %s Based on MACD(%d,%d,%d), SuperTrend(%d,%g) "+
			"and a simple liquidity check (sweep of recent highs/lows). Stop and targets come from ATR(%d). "+
			"Minimum RR: %s and %s. Always validate against your own trading plan.",
		card.Symbol, card.Timeframe, card.Explanation,
		indicators.MACDFast, indicators.MACDSlow, indicators.MACDSignal,
		indicators.TrendPeriod, indicators.TrendMult,
		indicators.ATRPeriod,
		card.RiskReward1, card.RiskReward2,
	)
}
