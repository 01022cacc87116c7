package evaluator

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"

	"go.uber.org/fx"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/evaluator/service"
	"signal_bot/internal/modules/ledger"
	marketdata "signal_bot/internal/modules/marketdata/service"
	pricestream "signal_bot/internal/modules/pricestream/service"
	stats "signal_bot/internal/modules/stats/service"
	"signal_bot/pkg/logger"
)

// CloseNotifier receives every entry the evaluator just closed.
type CloseNotifier interface {
	NotifyClose(ctx context.Context, e models.LedgerEntry)
}

// composite asks the stream cache first and falls back to the HTTP feed.
type composite struct {
	stream *pricestream.Streamer
	feed   *marketdata.Client
}

func (c *composite) LatestClose(ctx context.Context, symbol string) (float64, error) {
	if p, ok := c.stream.Price(symbol); ok {
		return p, nil
	}
	return c.feed.LatestClose(ctx, symbol)
}

func Module() fx.Option {
	return fx.Module("evaluator",
		fx.Provide(
			func(cfg *config.Config, store ledger.Store, stream *pricestream.Streamer, feed *marketdata.Client) *service.Evaluator {
				return service.NewEvaluator(store, &composite{stream: stream, feed: feed}, cfg.InstrumentSet())
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, ev *service.Evaluator, notify CloseNotifier, memory *stats.MemoryRecorder) {
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						ticker := time.NewTicker(cfg.Evaluator.Interval)
						defer ticker.Stop()
						for {
							select {
							case <-runCtx.Done():
								return
							case <-ticker.C:
								runOnce(runCtx, ev, notify, memory)
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

func runOnce(ctx context.Context, ev *service.Evaluator, notify CloseNotifier, memory *stats.MemoryRecorder) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "evaluate")
	defer span.Finish()

	closed, err := ev.EvaluateOpen(ctx)
	if err != nil {
		logger.Error("evaluate: %v", err)
		return
	}
	span.SetTag("closed", len(closed))
	for _, e := range closed {
		notify.NotifyClose(ctx, e)
		if err := memory.Record(e); err != nil {
			logger.Error("memory record %s: %v", e.ID, err)
		}
	}
}
