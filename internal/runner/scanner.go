package runner

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	marketdata "signal_bot/internal/modules/marketdata/service"
	signals "signal_bot/internal/modules/signals/service"
	"signal_bot/pkg/logger"
)

// Feed is the candle source the scanner pulls from.
type Feed interface {
	Fetch(ctx context.Context, symbol, timeframe string) ([]models.Candle, error)
}

// Health receives readiness updates; the service is ready once the first
// sweep has completed.
type Health interface {
	SetReady(v bool)
	TouchScan(t time.Time)
}

// Scanner walks the instrument list on a fixed timeframe, evaluates each
// symbol and pushes actionable cards into the signal channel. Cards from
// the latest sweep stay addressable by id until the next sweep replaces
// them.
type Scanner struct {
	feed      Feed
	engine    *signals.Engine
	symbols   []string
	timeframe string
	spacing   time.Duration
	out       chan<- models.Signal
	health    Health

	mu       sync.RWMutex
	cards    map[string]models.Signal
	lastScan time.Time

	now func() time.Time
}

func NewScanner(cfg *config.Config, feed *marketdata.Client, engine *signals.Engine, out chan models.Signal, health Health) *Scanner {
	return &Scanner{
		feed:      feed,
		engine:    engine,
		symbols:   cfg.InstrumentSet().Symbols(),
		timeframe: cfg.Scan.Timeframe,
		spacing:   cfg.Feed.Spacing,
		out:       out,
		health:    health,
		cards:     make(map[string]models.Signal),
		now:       time.Now,
	}
}

// Scan runs one full sweep over the watchlist.
func (s *Scanner) Scan(ctx context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "scan")
	span.SetTag("timeframe", s.timeframe)
	defer span.Finish()

	fresh := make(map[string]models.Signal, len(s.symbols))
	var actionable int
	for i, symbol := range s.symbols {
		if i > 0 && s.spacing > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.spacing):
			}
		}

		candles, err := s.feed.Fetch(ctx, symbol, s.timeframe)
		if err != nil {
			logger.Warn("scan %s: fetch failed: %v", symbol, err)
			candles = nil // evaluates to NO_DATA
		}

		card := s.engine.Evaluate(symbol, s.timeframe, candles, s.now().UTC())
		fresh[card.ID] = card

		if !card.Direction.Actionable() {
			continue
		}
		actionable++
		select {
		case s.out <- card:
		case <-ctx.Done():
			return
		}
	}

	done := s.now().UTC()
	s.mu.Lock()
	s.cards = fresh
	s.lastScan = done
	s.mu.Unlock()

	if s.health != nil {
		s.health.SetReady(true)
		s.health.TouchScan(done)
	}

	span.SetTag("actionable", actionable)
	logger.Info("scan done: %d symbols, %d actionable", len(s.symbols), actionable)
}

// Card looks up a card from the latest sweep by id.
func (s *Scanner) Card(id string) (models.Signal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[id]
	return card, ok
}

// LastScan is zero until the first sweep completes.
func (s *Scanner) LastScan() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastScan
}
