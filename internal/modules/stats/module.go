package stats

import (
	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/ledger"
	"signal_bot/internal/modules/stats/service"
)

func Module() fx.Option {
	return fx.Module("stats",
		fx.Provide(
			func(store ledger.Store, cfg *config.Config) *service.Aggregator {
				return service.NewAggregator(store, cfg.Ledger.WindowHours)
			},
			func(cfg *config.Config) *service.MemoryRecorder {
				return service.NewMemoryRecorder(cfg.Ledger.MemoryPath)
			},
		),
	)
}
