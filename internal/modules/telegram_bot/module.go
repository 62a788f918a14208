package telegram

import (
	"context"

	"go.uber.org/fx"

	"github.com/maxduke/rsi6-monitor-bot/internal/modules/telegram_bot/service"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/telegram_bot/service/pg"
	"github.com/maxduke/rsi6-monitor-bot/internal/runner"
	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			pg.NewRuleRepo,
			pg.NewWhitelistRepo,
			service.NewTelegram,
		),

		// Adapter: *service.Telegram -> runner.Notifier
		fx.Provide(
			func(t *service.Telegram) runner.Notifier {
				return t
			},
		),

		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram) {
				pollCtx, cancel := context.WithCancel(context.Background())
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						go func() {
							if err := t.Start(pollCtx); err != nil && pollCtx.Err() == nil {
								logger.Error("telegram update loop: %v", err)
							}
						}()
						return nil
					},
					OnStop: func(ctx context.Context) error {
						cancel()
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
