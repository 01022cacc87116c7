package service

import (
	"context"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/ledger"
	"signal_bot/pkg/logger"
)

// PriceSource answers "what does symbol trade at right now".
type PriceSource interface {
	LatestClose(ctx context.Context, symbol string) (float64, error)
}

// Evaluator walks OPEN ledger entries and resolves the ones whose price has
// crossed TP1 or the stop. It is the only component that moves an entry out
// of OPEN, and a terminal result is never revisited.
type Evaluator struct {
	store       ledger.Store
	prices      PriceSource
	instruments *models.InstrumentSet

	now func() time.Time
}

func NewEvaluator(store ledger.Store, prices PriceSource, instruments *models.InstrumentSet) *Evaluator {
	return &Evaluator{
		store:       store,
		prices:      prices,
		instruments: instruments,
		now:         time.Now,
	}
}

// EvaluateOpen runs one pass and returns the entries it closed. The ledger
// is rewritten only when something actually changed. A failed price lookup
// leaves the entry OPEN for the next cycle.
func (ev *Evaluator) EvaluateOpen(ctx context.Context) ([]models.LedgerEntry, error) {
	entries, err := ev.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	var closed []models.LedgerEntry
	changed := false
	for i := range entries {
		e := &entries[i]
		if e.Result != models.ResultOpen {
			continue
		}

		price, err := ev.prices.LatestClose(ctx, e.Symbol)
		if err != nil {
			logger.Warn("evaluator: price lookup %s failed, will retry: %v", e.Symbol, err)
			continue
		}

		result := outcome(e.Direction, price, e.TakeProfit1, e.StopLoss)
		if result == models.ResultOpen {
			continue
		}

		e.Result = result
		e.ClosedTimeUTC = ev.now().UTC()
		ref := e.TakeProfit1
		if result == models.ResultLoss {
			ref = e.StopLoss
		}
		e.Pips = ev.instruments.Get(e.Symbol).Pips(ref - e.Entry)

		closed = append(closed, *e)
		changed = true
		logger.Info("evaluator: %s %s closed %s at %.5f (%.1f pips)", e.Symbol, e.Direction, e.Result, price, e.Pips)
	}

	if changed {
		if err := ev.store.Save(ctx, entries); err != nil {
			return nil, err
		}
	}
	return closed, nil
}

// outcome applies the TP1/stop crossing rule for one direction.
func outcome(dir models.Direction, price, tp1, sl float64) models.Result {
	switch dir {
	case models.DirectionLong:
		if price >= tp1 {
			return models.ResultWin
		}
		if price <= sl {
			return models.ResultLoss
		}
	case models.DirectionShort:
		if price <= tp1 {
			return models.ResultWin
		}
		if price >= sl {
			return models.ResultLoss
		}
	}
	return models.ResultOpen
}
