package telegram

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/evaluator"
	"signal_bot/internal/modules/telegram_bot/service"
	"signal_bot/internal/runner"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			service.NewTelegram, // *service.Telegram

			// adapters: the scanner's sweep map backs card lookups, and
			// the bot receives the evaluator's close events
			func(s *runner.Scanner) service.CardSource {
				return s
			},
			func(t *service.Telegram) evaluator.CloseNotifier {
				return t
			},
		),

		fx.Invoke(func(lc fx.Lifecycle, t *service.Telegram, cards chan models.Signal) {
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go t.DeliverCards(runCtx, cards)
					go func() {
						_ = t.Start(runCtx)
					}()
					return nil
				},
				OnStop: func(_ context.Context) error {
					cancel()
					t.Stop()
					return nil
				},
			})
		}),
	)
}
