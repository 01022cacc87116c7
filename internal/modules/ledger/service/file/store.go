// Package file is the CSV ledger store: one flat file, full rewrite on
// every mutation. Load and save run under one mutex, so a load-mutate-save
// cycle from a single caller never races another writer in this process.
package file

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

type Store struct {
	path          string
	retentionDays int

	mu  sync.Mutex
	now func() time.Time
}

func NewStore(path string, retentionDays int) *Store {
	return &Store{
		path:          path,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// Load reads every retained entry, purging anything older than the
// retention window first. A purge that removed entries is persisted before
// returning. An unreadable or malformed file is treated as empty.
func (s *Store) Load(ctx context.Context) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Insert appends entry unless its id is already present; duplicate takes
// are a silent no-op.
func (s *Store) Insert(ctx context.Context, entry models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadLocked()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ID == entry.ID {
			return nil
		}
	}
	entries = append(entries, entry)
	return s.saveLocked(entries)
}

// Save atomically replaces the persisted set.
func (s *Store) Save(ctx context.Context, entries []models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(entries)
}

func (s *Store) loadLocked() ([]models.LedgerEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("ledger %s unreadable, treating as empty: %v", s.path, err)
		}
		return nil, nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Headers)
	records, err := r.ReadAll()
	if err != nil {
		logger.Warn("ledger %s malformed, treating as empty: %v", s.path, err)
		return nil, nil
	}
	if len(records) <= 1 {
		return nil, nil
	}

	now := s.now().UTC()
	badTimes := 0
	entries := make([]models.LedgerEntry, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		e, bad := decodeRow(rec, now)
		badTimes += bad
		entries = append(entries, e)
	}
	if badTimes > 0 {
		logger.Warn("ledger %s: %d unparseable timestamps treated as now", s.path, badTimes)
	}

	kept := entries[:0]
	for _, e := range entries {
		if !e.Expired(now, s.retentionDays) {
			kept = append(kept, e)
		}
	}
	if len(kept) != len(entries) {
		logger.Info("ledger %s: purged %d entries past %d-day retention", s.path, len(entries)-len(kept), s.retentionDays)
		if err := s.saveLocked(kept); err != nil {
			return nil, err
		}
	}
	return kept, nil
}

func (s *Store) saveLocked(entries []models.LedgerEntry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(Headers); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	for _, e := range entries {
		if err := w.Write(encodeRow(e)); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
