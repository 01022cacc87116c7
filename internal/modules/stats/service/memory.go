package service

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

// MemoryRecorder keeps the long-term trade history the 30-day ledger
// forgets: every closed trade is appended once and never purged, and
// Summarize digests it into winrate and per-pair/per-timeframe rankings.
type MemoryRecorder struct {
	path string
	mu   sync.Mutex
}

var memoryHeaders = []string{"time_utc", "symbol", "timeframe", "direction", "result", "pips"}

func NewMemoryRecorder(path string) *MemoryRecorder {
	return &MemoryRecorder{path: path}
}

// Record appends one closed trade.
func (m *MemoryRecorder) Record(e models.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	_, statErr := os.Stat(m.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open memory %s: %w", m.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(memoryHeaders); err != nil {
			return err
		}
	}
	closedAt := e.ClosedTimeUTC
	if closedAt.IsZero() {
		closedAt = time.Now().UTC()
	}
	if err := w.Write([]string{
		closedAt.UTC().Format(time.RFC3339),
		e.Symbol,
		e.Timeframe,
		string(e.Direction),
		string(e.Result),
		strconv.FormatFloat(e.Pips, 'f', 1, 64),
	}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

type memoryRow struct {
	Symbol    string
	Timeframe string
	Result    models.Result
}

func (m *MemoryRecorder) loadRows() []memoryRow {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.Open(m.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(memoryHeaders)
	records, err := r.ReadAll()
	if err != nil {
		logger.Warn("memory %s malformed, ignoring: %v", m.path, err)
		return nil
	}
	if len(records) <= 1 {
		return nil
	}

	rows := make([]memoryRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, memoryRow{Symbol: rec[1], Timeframe: rec[2], Result: models.Result(rec[4])})
	}
	return rows
}

type rankLine struct {
	key    string
	wins   int
	losses int
}

// Summarize renders the historical digest: totals, winrate, the five best
// pairs and every timeframe ranked by wins.
func (m *MemoryRecorder) Summarize() string {
	rows := m.loadRows()
	if len(rows) == 0 {
		return "No closed trades recorded yet."
	}

	var wins, losses int
	pairs := map[string]*rankLine{}
	tfs := map[string]*rankLine{}
	for _, r := range rows {
		p, ok := pairs[r.Symbol]
		if !ok {
			p = &rankLine{key: r.Symbol}
			pairs[r.Symbol] = p
		}
		tf, ok := tfs[r.Timeframe]
		if !ok {
			tf = &rankLine{key: r.Timeframe}
			tfs[r.Timeframe] = tf
		}
		switch r.Result {
		case models.ResultWin:
			wins++
			p.wins++
			tf.wins++
		case models.ResultLoss:
			losses++
			p.losses++
			tf.losses++
		}
	}

	total := len(rows)
	winrate := 0.0
	if total > 0 {
		winrate = float64(wins) / float64(total) * 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Trade memory\nTotal: %d\nWins: %d\nLosses: %d\nWinrate: %.1f%%\n", total, wins, losses, winrate)

	b.WriteString("\n💱 Best pairs:\n")
	for _, line := range topRanked(pairs, 5) {
		fmt.Fprintf(&b, "• %s: %d won / %d lost\n", line.key, line.wins, line.losses)
	}

	b.WriteString("\n⏱ Timeframes:\n")
	for _, line := range topRanked(tfs, len(tfs)) {
		fmt.Fprintf(&b, "• %s: %d won / %d lost\n", line.key, line.wins, line.losses)
	}
	return b.String()
}

func topRanked(m map[string]*rankLine, n int) []rankLine {
	out := make([]rankLine, 0, len(m))
	for _, v := range m {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].wins != out[j].wins {
			return out[i].wins > out[j].wins
		}
		return out[i].key < out[j].key
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
