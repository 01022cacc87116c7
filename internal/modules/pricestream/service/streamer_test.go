package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"signal_bot/internal/modules/config"
)

func testStreamer(url string) *Streamer {
	cfg := &config.Config{}
	cfg.Stream.URL = url
	cfg.Stream.MaxAge = 30 * time.Second
	return NewStreamer(cfg, nil)
}

func TestPrice_StalePriceIgnored(t *testing.T) {
	s := testStreamer("ws://unused")
	base := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	s.put("EURUSD", 1.1000, base)

	s.now = func() time.Time { return base.Add(10 * time.Second) }
	if p, ok := s.Price("EURUSD"); !ok || p != 1.1000 {
		t.Fatalf("fresh price = %v,%v, want 1.1000,true", p, ok)
	}

	s.now = func() time.Time { return base.Add(31 * time.Second) }
	if _, ok := s.Price("EURUSD"); ok {
		t.Error("price older than max age should be ignored")
	}
	if _, ok := s.Price("GBPUSD"); ok {
		t.Error("unknown symbol should report no price")
	}
}

func TestRun_CachesStreamedTicks(t *testing.T) {
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		// swallow the subscribe frame, then push one tick
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"symbol":"EURUSD","price":1.2345,"ts":1709380800000}`))
		// hold the connection open until the client goes away
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	s := testStreamer("ws" + strings.TrimPrefix(srv.URL, "http"))
	s.maxAge = 0 // no staleness cutoff in this test

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p, ok := s.Price("EURUSD"); ok {
			if p != 1.2345 {
				t.Fatalf("price = %v, want 1.2345", p)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("streamed tick never reached the cache")
}

// A flapping upstream must not accumulate one watcher goroutine per
// reconnect for the lifetime of Run.
func TestRun_ReconnectsWithoutLeakingWatchers(t *testing.T) {
	var conns atomic.Int64
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns.Add(1)
		_ = conn.Close()
	}))
	defer srv.Close()

	s := testStreamer("ws" + strings.TrimPrefix(srv.URL, "http"))

	before := runtime.NumGoroutine()
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for conns.Load() < 20 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if n := conns.Load(); n < 20 {
		t.Fatalf("server saw only %d reconnects", n)
	}

	// give Run and the per-connection watchers a moment to wind down
	time.Sleep(200 * time.Millisecond)
	if after := runtime.NumGoroutine(); after > before+5 {
		t.Fatalf("goroutines grew from %d to %d across reconnects", before, after)
	}
}
