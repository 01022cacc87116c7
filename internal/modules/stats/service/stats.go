package service

import (
	"context"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/ledger"
)

// Summary is the rolling result window shown next to the cards.
type Summary struct {
	Wins   int
	Losses int
	Open   int
}

func (s Summary) Total() int { return s.Wins + s.Losses + s.Open }

// Aggregator counts outcomes over a trailing window. Entries whose
// reference time falls outside the window are excluded entirely, open
// ones included.
type Aggregator struct {
	store       ledger.Store
	windowHours int

	now func() time.Time
}

func NewAggregator(store ledger.Store, windowHours int) *Aggregator {
	return &Aggregator{
		store:       store,
		windowHours: windowHours,
		now:         time.Now,
	}
}

func (a *Aggregator) Recent(ctx context.Context) (Summary, error) {
	entries, err := a.store.Load(ctx)
	if err != nil {
		return Summary{}, err
	}

	now := a.now().UTC()
	window := time.Duration(a.windowHours) * time.Hour

	var sum Summary
	for _, e := range entries {
		if now.Sub(e.ReferenceTime()) > window {
			continue
		}
		switch e.Result {
		case models.ResultWin:
			sum.Wins++
		case models.ResultLoss:
			sum.Losses++
		default:
			sum.Open++
		}
	}
	return sum, nil
}
