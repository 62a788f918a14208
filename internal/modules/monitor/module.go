package monitor

import (
	"go.uber.org/fx"

	calendarsvc "github.com/maxduke/rsi6-monitor-bot/internal/modules/calendar/service"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/config"
	marketsvc "github.com/maxduke/rsi6-monitor-bot/internal/modules/marketdata/service"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/monitor/service"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/telegram_bot/service/pg"
)

// Module provides the rule evaluation engine.
func Module() fx.Option {
	return fx.Module("monitor",
		fx.Provide(
			func(cfg *config.Config, market *marketsvc.Service, rules *pg.RuleRepo, cal *calendarsvc.Calendar) *service.Engine {
				return service.NewEngine(service.Config{
					RSIPeriod:     cfg.RSIPeriod,
					UseAdjust:     cfg.UseAdjust,
					HistFetchDays: cfg.HistFetchDays,
					MaxPerTrigger: cfg.MaxNotificationsPerTrigger,
				}, market, rules, cal)
			},
		),
	)
}
