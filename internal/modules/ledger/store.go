package ledger

import (
	"context"

	"signal_bot/internal/models"
)

// Store is the taken-signal ledger. Load applies retention before returning;
// Insert is idempotent by card id; Save replaces the whole persisted set
// (no partial writes, every mutation rewrites the store).
type Store interface {
	Load(ctx context.Context) ([]models.LedgerEntry, error)
	Insert(ctx context.Context, entry models.LedgerEntry) error
	Save(ctx context.Context, entries []models.LedgerEntry) error
}
