package runner

import (
	"context"
	"time"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	healthservice "signal_bot/internal/modules/health/service"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewScanner, // *Scanner

			func(state *healthservice.State) Health {
				return state
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, s *Scanner, cfg *config.Config) {
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						s.Scan(runCtx)
						ticker := time.NewTicker(cfg.Scan.Interval)
						defer ticker.Stop()
						for {
							select {
							case <-runCtx.Done():
								return
							case <-ticker.C:
								s.Scan(runCtx)
							}
						}
					}()
					return nil
				},
				OnStop: func(_ context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
