package file

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"signal_bot/internal/models"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taken_signals.csv")
	s := NewStore(path, 30)
	return s, path
}

func entryTakenAt(id string, takenAt time.Time) models.LedgerEntry {
	return models.LedgerEntry{
		ID:            id,
		Symbol:        "EURUSD",
		Timeframe:     "15m",
		Direction:     models.DirectionLong,
		Entry:         1.1,
		StopLoss:      1.09,
		TakeProfit1:   1.12,
		TakeProfit2:   1.13,
		RiskReward1:   "1:2",
		RiskReward2:   "1:3",
		SignalTimeUTC: takenAt,
		TZOffset:      "00:00",
		Taken:         true,
		TakenTimeUTC:  takenAt,
		Result:        models.ResultOpen,
	}
}

func TestInsert_IdempotentByID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	e := entryTakenAt("EURUSD-1700000000", time.Now().UTC())
	if err := s.Insert(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}
	e.Entry = 9.99 // a second take must not overwrite the first
	if err := s.Insert(ctx, e); err != nil {
		t.Fatalf("second insert: %v", err)
	}

	entries, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(entries))
	}
	if entries[0].Entry != 1.1 {
		t.Fatalf("duplicate insert overwrote the original: %+v", entries[0])
	}
}

func TestLoad_PurgesPastRetention(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	old := entryTakenAt("EURUSD-1", now.Add(-31*24*time.Hour))
	fresh := entryTakenAt("EURUSD-2", now.Add(-29*24*time.Hour))
	if err := s.Save(ctx, []models.LedgerEntry{old, fresh}); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "EURUSD-2" {
		t.Fatalf("expected only the 29-day entry, got %+v", entries)
	}

	// the purge must be persisted, not just filtered in memory
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if strings.Contains(string(b), "EURUSD-1") {
		t.Fatal("purged entry still present on disk")
	}
}

func TestLoad_MissingAndMalformedFileIsEmpty(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	entries, err := s.Load(ctx)
	if err != nil || len(entries) != 0 {
		t.Fatalf("missing file must load empty, got %v / %v", entries, err)
	}

	if err := os.WriteFile(path, []byte("not,a\nledger"), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err = s.Load(ctx)
	if err != nil || len(entries) != 0 {
		t.Fatalf("malformed file must load empty, got %v / %v", entries, err)
	}
}

func TestLoad_UnparseableTimestampTreatedAsNow(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	rec := encodeRow(entryTakenAt("EURUSD-3", time.Now().UTC()))
	rec[10] = "garbage" // signal_time_utc
	rec[13] = "garbage" // taken_time_utc

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := csv.NewWriter(f)
	_ = w.Write(Headers)
	_ = w.Write(rec)
	w.Flush()
	_ = f.Close()

	entries, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// age zero: the row must survive the purge instead of being dropped
	if len(entries) != 1 {
		t.Fatalf("expected the row kept with timestamps as now, got %d", len(entries))
	}
	if time.Since(entries[0].TakenTimeUTC) > time.Minute {
		t.Fatalf("bad timestamp not replaced with now: %v", entries[0].TakenTimeUTC)
	}
}

func TestSave_StableColumnLayout(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	e := entryTakenAt("USDJPY-9", time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))
	e.Symbol = "USDJPY"
	e.Result = models.ResultWin
	e.ClosedTimeUTC = e.TakenTimeUTC.Add(2 * time.Hour)
	e.Pips = 100.0
	s.now = func() time.Time { return time.Date(2024, 5, 21, 0, 0, 0, 0, time.UTC) }

	if err := s.Save(ctx, []models.LedgerEntry{e}); err != nil {
		t.Fatalf("save: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if lines[0] != strings.Join(Headers, ",") {
		t.Fatalf("header layout changed: %s", lines[0])
	}

	entries, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := entries[0]
	if got.Result != models.ResultWin || got.Pips != 100.0 || got.ClosedTimeUTC.IsZero() {
		t.Fatalf("closed entry did not survive a round trip: %+v", got)
	}
	if got.Direction != models.DirectionLong || got.TZOffset != "00:00" || !got.Taken {
		t.Fatalf("entry fields lost in round trip: %+v", got)
	}
}

func TestSave_FailedRenameLeavesNoTempFile(t *testing.T) {
	// a directory at the store path makes the final rename fail
	dir := t.TempDir()
	path := filepath.Join(dir, "taken_signals.csv")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path, 30)

	err := s.Save(context.Background(), []models.LedgerEntry{
		entryTakenAt("EURUSD-1", time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)),
	})
	if err == nil {
		t.Fatal("expected save onto a directory to fail")
	}
	if _, statErr := os.Stat(path + ".tmp"); !os.IsNotExist(statErr) {
		t.Errorf("temp file left behind after failed save: %v", statErr)
	}
}
