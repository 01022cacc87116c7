package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"signal_bot/internal/models"
)

type stubStore struct {
	entries []models.LedgerEntry
}

func (s *stubStore) Load(ctx context.Context) ([]models.LedgerEntry, error) { return s.entries, nil }
func (s *stubStore) Insert(ctx context.Context, e models.LedgerEntry) error { return nil }
func (s *stubStore) Save(ctx context.Context, e []models.LedgerEntry) error { return nil }

func entryAt(symbol string, result models.Result, taken time.Time) models.LedgerEntry {
	return models.LedgerEntry{
		ID:            models.SignalID(symbol, taken),
		Symbol:        symbol,
		Timeframe:     "15m",
		Direction:     models.DirectionLong,
		Taken:         true,
		TakenTimeUTC:  taken,
		SignalTimeUTC: taken,
		Result:        result,
	}
}

func TestRecent_WindowExcludesOldEntries(t *testing.T) {
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	store := &stubStore{entries: []models.LedgerEntry{
		entryAt("EURUSD", models.ResultWin, now.Add(-47*time.Hour)),
		entryAt("GBPUSD", models.ResultWin, now.Add(-49*time.Hour)),
		entryAt("XAUUSD", models.ResultLoss, now.Add(-2*time.Hour)),
		entryAt("BTCUSD", models.ResultOpen, now.Add(-1*time.Hour)),
	}}

	agg := NewAggregator(store, 48)
	agg.now = func() time.Time { return now }

	sum, err := agg.Recent(context.Background())
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if sum.Wins != 1 {
		t.Errorf("wins = %d, want 1 (the 49h-old win must not count)", sum.Wins)
	}
	if sum.Losses != 1 || sum.Open != 1 {
		t.Errorf("losses/open = %d/%d, want 1/1", sum.Losses, sum.Open)
	}
	if sum.Total() != 3 {
		t.Errorf("total = %d, want 3", sum.Total())
	}
}

func TestRecent_OpenEntryUsesSignalTimeWhenNeverTaken(t *testing.T) {
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	e := entryAt("EURUSD", models.ResultOpen, now.Add(-50*time.Hour))
	e.Taken = false
	e.TakenTimeUTC = time.Time{}

	agg := NewAggregator(&stubStore{entries: []models.LedgerEntry{e}}, 48)
	agg.now = func() time.Time { return now }

	sum, err := agg.Recent(context.Background())
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if sum.Total() != 0 {
		t.Errorf("total = %d, want 0", sum.Total())
	}
}

func TestMemory_RecordAndSummarize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.csv")
	mem := NewMemoryRecorder(path)

	closed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	trades := []models.LedgerEntry{
		{Symbol: "EURUSD", Timeframe: "15m", Direction: models.DirectionLong, Result: models.ResultWin, Pips: 100, ClosedTimeUTC: closed},
		{Symbol: "EURUSD", Timeframe: "15m", Direction: models.DirectionShort, Result: models.ResultWin, Pips: 80, ClosedTimeUTC: closed},
		{Symbol: "GBPUSD", Timeframe: "1h", Direction: models.DirectionLong, Result: models.ResultLoss, Pips: 50, ClosedTimeUTC: closed},
	}
	for _, e := range trades {
		if err := mem.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read memory: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want header + 3 rows", len(lines))
	}
	if lines[0] != strings.Join(memoryHeaders, ",") {
		t.Errorf("header = %q", lines[0])
	}

	report := mem.Summarize()
	for _, want := range []string{"Total: 3", "Wins: 2", "Losses: 1", "Winrate: 66.7%", "EURUSD: 2 won"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	idx := strings.Index(report, "EURUSD")
	if gbp := strings.Index(report, "GBPUSD"); gbp >= 0 && gbp < idx {
		t.Errorf("pairs not ranked by wins:\n%s", report)
	}
}

func TestMemory_SummarizeEmpty(t *testing.T) {
	mem := NewMemoryRecorder(filepath.Join(t.TempDir(), "missing.csv"))
	if got := mem.Summarize(); got != "No closed trades recorded yet." {
		t.Errorf("empty summary = %q", got)
	}
}
