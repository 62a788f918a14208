package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/maxduke/rsi6-monitor-bot/internal/modules/config"
	"github.com/maxduke/rsi6-monitor-bot/pkg/db"
)

// Module provides the master connection pool wrapped in a tx manager.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					return nil, err
				}

				return db.NewPgTxManager(poolMaster), nil
			},
		),
	)
}
