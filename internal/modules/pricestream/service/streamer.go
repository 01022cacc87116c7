package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"signal_bot/internal/modules/config"
)

// Health is told whether the stream connection is currently up.
type Health interface {
	SetStreamConnected(v bool)
}

// Streamer keeps a last-price cache fed by a quote WebSocket. It is a
// best-effort fast path for the evaluator: a missing or stale price just
// means the caller falls back to the HTTP feed.
type Streamer struct {
	url      string
	symbols  []string
	maxAge   time.Duration
	wsDialer *websocket.Dialer
	health   Health

	mu    sync.RWMutex
	cache map[string]pricePoint

	now func() time.Time
}

type pricePoint struct {
	price float64
	at    time.Time
}

func NewStreamer(cfg *config.Config, health Health) *Streamer {
	return &Streamer{
		url:      cfg.Stream.URL,
		symbols:  cfg.InstrumentSet().Symbols(),
		maxAge:   cfg.Stream.MaxAge,
		wsDialer: &websocket.Dialer{},
		health:   health,
		cache:    make(map[string]pricePoint),
		now:      time.Now,
	}
}

// Price returns the cached last price for a symbol, or false when nothing
// fresh enough is cached.
func (s *Streamer) Price(symbol string) (float64, bool) {
	s.mu.RLock()
	p, ok := s.cache[symbol]
	s.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if s.maxAge > 0 && s.now().Sub(p.at) > s.maxAge {
		return 0, false
	}
	return p.price, true
}

func (s *Streamer) markConnected(v bool) {
	if s.health != nil {
		s.health.SetStreamConnected(v)
	}
}

func (s *Streamer) put(symbol string, price float64, at time.Time) {
	s.mu.Lock()
	s.cache[symbol] = pricePoint{price: price, at: at}
	s.mu.Unlock()
}

type tickFrame struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	TsMs   int64   `json:"ts"`
}

// Run dials the quote stream and refills the cache until ctx is done,
// reconnecting after any failure.
func (s *Streamer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		log.Printf("[WS] connect %s %d symbols", s.url, len(s.symbols))
		conn, _, err := s.wsDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			log.Printf("[WS] dial error: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		sub := map[string]any{
			"op":   "subscribe",
			"args": s.symbols,
		}
		if err := conn.WriteJSON(sub); err != nil {
			log.Printf("[WS] subscribe error: %v", err)
			_ = conn.Close()
			continue
		}
		s.markConnected(true)

		s.readLoop(ctx, conn)
		s.markConnected(false)
		if ctx.Err() != nil {
			return
		}
	}
}

// readLoop drains one connection until it fails or ctx is done. The cancel
// watcher is scoped to this connection so reconnects do not stack goroutines.
func (s *Streamer) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("[WS] read error: %v", err)
			}
			return
		}

		var frame tickFrame
		if err := sonic.Unmarshal(msg, &frame); err != nil {
			continue
		}
		if frame.Symbol == "" || frame.Price == 0 {
			continue
		}
		at := s.now()
		if frame.TsMs > 0 {
			at = time.UnixMilli(frame.TsMs)
		}
		s.put(frame.Symbol, frame.Price, at)
	}
}
