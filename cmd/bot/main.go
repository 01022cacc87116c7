package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/evaluator"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/ledger"
	"signal_bot/internal/modules/marketdata"
	"signal_bot/internal/modules/pricestream"
	"signal_bot/internal/modules/signals"
	"signal_bot/internal/modules/stats"
	telegram "signal_bot/internal/modules/telegram_bot"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"
)

const serviceName = "signal_bot"

func main() {
	logger.SetServiceName(serviceName)
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}

	tracing.SetServiceName(serviceName)

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
			func() chan models.Signal {
				return make(chan models.Signal, 32)
			},
		),
		config.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			_, closeTracer, err := tracing.InitTracer(tracing.Config{Host: cfg.Jaeger.Host, Port: cfg.Jaeger.Port})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
		marketdata.Module(),
		signals.Module(),
		ledger.Module(),
		pricestream.Module(),
		stats.Module(),
		evaluator.Module(),
		runner.Module(),
		telegram.Module(),
		health.Module(),
	)
	app.Run()
}
