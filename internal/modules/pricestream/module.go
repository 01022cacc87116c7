package pricestream

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	healthservice "signal_bot/internal/modules/health/service"
	"signal_bot/internal/modules/pricestream/service"
	"signal_bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("pricestream",
		fx.Provide(
			service.NewStreamer,

			func(state *healthservice.State) service.Health {
				return state
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, s *service.Streamer) {
			if !cfg.Stream.Enabled {
				logger.Info("pricestream disabled, evaluator will use the HTTP feed only")
				return
			}
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go s.Run(runCtx)
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
