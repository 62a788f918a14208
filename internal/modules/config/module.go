package config

import "go.uber.org/fx"

// Module registers the config constructor as an fx provider.
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewConfig,
		),
	)
}
