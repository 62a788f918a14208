package marketdata

import (
	"net/http"

	"go.uber.org/fx"

	calendarsvc "github.com/maxduke/rsi6-monitor-bot/internal/modules/calendar/service"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/config"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/marketdata/service"
)

// Module wires the providers, the health probe and the fused market-data
// service. A single HTTP client with a bounded per-request timeout backs all
// upstream calls so a hung endpoint cannot stall a cycle.
func Module() fx.Option {
	return fx.Module("marketdata",
		fx.Provide(
			func(cfg *config.Config, cal *calendarsvc.Calendar) *service.Service {
				client := &http.Client{Timeout: cfg.HTTPTimeout}

				em := service.NewEastmoney(client)
				sina := service.NewSina(client)
				health := service.NewHealthMonitor(client, "", cfg.BlockCheckInterval)

				return service.New(service.Config{
					Retry: service.RetryPolicy{
						Attempts: cfg.FetchRetryAttempts,
						Delay:    cfg.FetchRetryDelay,
					},
					RequestInterval:  cfg.RequestInterval,
					FailureThreshold: cfg.FetchFailureThreshold,
				}, em, sina, sina, em, health, cal.Location())
			},
		),
	)
}
