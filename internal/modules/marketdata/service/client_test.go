package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"signal_bot/internal/modules/config"
)

func chartJSON(ts []int64, o, h, l, c []any) string {
	num := func(vals []any) string {
		parts := make([]string, len(vals))
		for i, v := range vals {
			if v == nil {
				parts[i] = "null"
			} else {
				parts[i] = fmt.Sprintf("%v", v)
			}
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	tsParts := make([]string, len(ts))
	for i, v := range ts {
		tsParts[i] = fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"open":%s,"high":%s,"low":%s,"close":%s}]}}],"error":null}}`,
		strings.Join(tsParts, ","), num(o), num(h), num(l), num(c))
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{}
	cfg.Feed.BaseURL = srv.URL
	cfg.Feed.Timeout = 5 * time.Second
	return NewClient(cfg)
}

func TestFetch_DropsRowsWithMissingFields(t *testing.T) {
	body := chartJSON(
		[]int64{1700000000, 1700000300, 1700000600},
		[]any{1.0, nil, 1.2},
		[]any{1.1, 2.1, 1.3},
		[]any{0.9, 1.9, 1.1},
		[]any{1.05, 2.0, 1.25},
	)
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	})

	candles, err := c.Fetch(context.Background(), "EURUSD", "15m")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected the null row dropped, got %d candles", len(candles))
	}
	if !candles[0].Time.Before(candles[1].Time) {
		t.Fatalf("candles must be oldest first")
	}
	if candles[1].Close != 1.25 {
		t.Fatalf("unexpected close %.4f", candles[1].Close)
	}
}

func TestFetch_InvertedTickerFlipsQuote(t *testing.T) {
	body := chartJSON(
		[]int64{1700000000},
		[]any{100.0}, []any{110.0}, []any{90.0}, []any{105.0},
	)
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "JPY=X") {
			t.Errorf("expected remapped ticker in path, got %s", r.URL.Path)
		}
		fmt.Fprint(w, body)
	})

	candles, err := c.Fetch(context.Background(), "USDJPY", "15m")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	got := candles[0]
	if math.Abs(got.Close-1.0/105.0) > 1e-12 {
		t.Fatalf("close not inverted: %.8f", got.Close)
	}
	// 1/x reverses ordering, so high and low must swap sources
	if math.Abs(got.High-1.0/90.0) > 1e-12 || math.Abs(got.Low-1.0/110.0) > 1e-12 {
		t.Fatalf("high/low not swapped on inversion: high=%.8f low=%.8f", got.High, got.Low)
	}
	if got.High < got.Low {
		t.Fatalf("inverted candle has high below low")
	}
}

func TestFetch_UpstreamErrorIsError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	})
	if _, err := c.Fetch(context.Background(), "EURUSD", "15m"); err == nil {
		t.Fatal("expected an error on http 429")
	}
}

func TestFetch_UnknownTimeframeRejected(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := c.Fetch(context.Background(), "EURUSD", "2h"); err == nil {
		t.Fatal("expected an error for an unsupported timeframe")
	}
}

func TestLatestClose_UsesShortestTimeframe(t *testing.T) {
	var gotInterval string
	body := chartJSON([]int64{1700000000}, []any{1.0}, []any{1.1}, []any{0.9}, []any{1.07})
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotInterval = r.URL.Query().Get("interval")
		fmt.Fprint(w, body)
	})

	price, err := c.LatestClose(context.Background(), "EURUSD")
	if err != nil {
		t.Fatalf("latest close: %v", err)
	}
	if price != 1.07 {
		t.Fatalf("unexpected price %.4f", price)
	}
	if gotInterval != "5m" {
		t.Fatalf("expected the 5m snapshot, got %q", gotInterval)
	}
}
