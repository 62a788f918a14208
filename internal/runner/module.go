package runner

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the scheduler and ties it to the application lifecycle.
func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(lc fx.Lifecycle, r *Runner) {
				jobCtx, cancel := context.WithCancel(context.Background())
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return r.Start(jobCtx)
					},
					OnStop: func(ctx context.Context) error {
						cancel()
						return r.Stop(ctx)
					},
				})
			},
		),
	)
}
