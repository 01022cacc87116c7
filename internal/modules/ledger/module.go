package ledger

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/ledger/service/file"
	"signal_bot/internal/modules/ledger/service/pg"
	"signal_bot/pkg/db"
	"signal_bot/pkg/logger"
)

// Module provides the Store: Postgres when a DSN is configured, the CSV
// file store otherwise.
func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (Store, error) {
				if cfg.DB == "" {
					logger.Info("ledger: file store at %s", cfg.Ledger.Path)
					return file.NewStore(cfg.Ledger.Path, cfg.Ledger.RetentionDays), nil
				}

				pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DB})
				if err != nil {
					return nil, err
				}
				if err := pool.Ping(ctx); err != nil {
					return nil, err
				}
				store := pg.NewStore(db.NewPgTxManager(pool), cfg.Ledger.RetentionDays)
				if err := store.EnsureSchema(ctx); err != nil {
					return nil, err
				}
				logger.Info("ledger: postgres store")
				return store, nil
			},
		),
	)
}
