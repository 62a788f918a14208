package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"github.com/maxduke/rsi6-monitor-bot/internal/modules/calendar"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/config"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/marketdata"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/monitor"
	"github.com/maxduke/rsi6-monitor-bot/internal/modules/postgres"
	telegram "github.com/maxduke/rsi6-monitor-bot/internal/modules/telegram_bot"
	"github.com/maxduke/rsi6-monitor-bot/internal/runner"
	"github.com/maxduke/rsi6-monitor-bot/pkg/logger"
	"github.com/maxduke/rsi6-monitor-bot/pkg/tracing"
)

const serviceName = "rsi6-monitor-bot"

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		fx.Invoke(setupObservability),
		postgres.Module(),
		calendar.Module(),
		marketdata.Module(),
		monitor.Module(),
		runner.Module(),
		telegram.Module(),
	)
	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	<-app.Done()
	if err := app.Stop(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func setupObservability(lc fx.Lifecycle, cfg *config.Config) error {
	logger.SetServiceName(serviceName)
	if err := logger.Init(cfg.LogLevel); err != nil {
		return err
	}

	tracing.SetServiceName(serviceName)
	_, closer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Tracing.Host,
		Port: cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closer()
			logger.Sync()
			return nil
		},
	})
	return nil
}
