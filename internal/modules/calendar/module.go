package calendar

import (
	"go.uber.org/fx"

	"github.com/maxduke/rsi6-monitor-bot/internal/modules/calendar/service"
)

func Module() fx.Option {
	return fx.Module("calendar",
		fx.Provide(
			service.New, // *service.Calendar
		),
	)
}
