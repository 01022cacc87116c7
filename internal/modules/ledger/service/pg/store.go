// Package pg is the Postgres ledger store. Each Load/Insert/Save runs in
// its own read-committed transaction, which serializes the load-mutate-save
// cycle against concurrent writers.
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"signal_bot/internal/models"
	"signal_bot/pkg/db"
)

type Store struct {
	tm            *db.PgTxManager
	retentionDays int
	now           func() time.Time
}

func NewStore(tm *db.PgTxManager, retentionDays int) *Store {
	return &Store{
		tm:            tm,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS taken_signals (
	id              text PRIMARY KEY,
	symbol          text NOT NULL,
	timeframe       text NOT NULL,
	direction       text NOT NULL,
	entry           double precision NOT NULL,
	sl              double precision NOT NULL,
	tp1             double precision NOT NULL,
	tp2             double precision NOT NULL,
	rr1             text NOT NULL DEFAULT '',
	rr2             text NOT NULL DEFAULT '',
	signal_time_utc timestamptz NOT NULL,
	tz              text NOT NULL DEFAULT '00:00',
	taken           boolean NOT NULL DEFAULT true,
	taken_time_utc  timestamptz,
	result          text NOT NULL DEFAULT 'OPEN',
	closed_time_utc timestamptz,
	pips            double precision
)`

// EnsureSchema creates the ledger table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.tm.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, schema)
		return err
	})
}

func (s *Store) Load(ctx context.Context) (entries []models.LedgerEntry, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Load: %w", err)
		}
	}()

	err = s.tm.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// retention counts whole days; the cutoff mirrors the file store
		cutoff := s.now().UTC().Add(-time.Duration(s.retentionDays+1) * 24 * time.Hour)
		if _, err := tx.Exec(ctx,
			`DELETE FROM taken_signals WHERE COALESCE(taken_time_utc, signal_time_utc) <= $1`, cutoff); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `
			SELECT id, symbol, timeframe, direction, entry, sl, tp1, tp2, rr1, rr2,
			       signal_time_utc, tz, taken, taken_time_utc, result, closed_time_utc, pips
			FROM taken_signals
			ORDER BY COALESCE(taken_time_utc, signal_time_utc)`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				e          models.LedgerEntry
				takenTime  *time.Time
				closedTime *time.Time
				pips       *float64
			)
			if err := rows.Scan(
				&e.ID, &e.Symbol, &e.Timeframe, &e.Direction,
				&e.Entry, &e.StopLoss, &e.TakeProfit1, &e.TakeProfit2,
				&e.RiskReward1, &e.RiskReward2,
				&e.SignalTimeUTC, &e.TZOffset, &e.Taken,
				&takenTime, &e.Result, &closedTime, &pips,
			); err != nil {
				return err
			}
			if takenTime != nil {
				e.TakenTimeUTC = takenTime.UTC()
			}
			if closedTime != nil {
				e.ClosedTimeUTC = closedTime.UTC()
			}
			if pips != nil {
				e.Pips = *pips
			}
			e.SignalTimeUTC = e.SignalTimeUTC.UTC()
			entries = append(entries, e)
		}
		return rows.Err()
	})
	return entries, err
}

func (s *Store) Insert(ctx context.Context, entry models.LedgerEntry) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Insert: %w", err)
		}
	}()

	return s.tm.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// duplicate take of the same card id is a silent no-op
		_, err := tx.Exec(ctx, `
			INSERT INTO taken_signals
				(id, symbol, timeframe, direction, entry, sl, tp1, tp2, rr1, rr2,
				 signal_time_utc, tz, taken, taken_time_utc, result, closed_time_utc, pips)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
			ON CONFLICT (id) DO NOTHING`,
			insertArgs(entry)...)
		return err
	})
}

func (s *Store) Save(ctx context.Context, entries []models.LedgerEntry) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Save: %w", err)
		}
	}()

	return s.tm.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM taken_signals`); err != nil {
			return err
		}
		for _, e := range entries {
			if _, err := tx.Exec(ctx, `
				INSERT INTO taken_signals
					(id, symbol, timeframe, direction, entry, sl, tp1, tp2, rr1, rr2,
					 signal_time_utc, tz, taken, taken_time_utc, result, closed_time_utc, pips)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
				insertArgs(e)...); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertArgs(e models.LedgerEntry) []any {
	var takenTime, closedTime *time.Time
	if !e.TakenTimeUTC.IsZero() {
		t := e.TakenTimeUTC.UTC()
		takenTime = &t
	}
	if !e.ClosedTimeUTC.IsZero() {
		t := e.ClosedTimeUTC.UTC()
		closedTime = &t
	}
	var pips *float64
	if e.Result != models.ResultOpen {
		p := e.Pips
		pips = &p
	}
	return []any{
		e.ID, e.Symbol, e.Timeframe, string(e.Direction),
		e.Entry, e.StopLoss, e.TakeProfit1, e.TakeProfit2,
		e.RiskReward1, e.RiskReward2,
		e.SignalTimeUTC.UTC(), e.TZOffset, e.Taken,
		takenTime, string(e.Result), closedTime, pips,
	}
}
