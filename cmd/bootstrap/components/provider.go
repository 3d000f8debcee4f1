package components

import (
	"keypanel/internal/infra/provider"
	"keypanel/internal/pkg/config"
	"keypanel/internal/usecase/commands"
	"keypanel/internal/worker"

	"go.uber.org/fx"
)

var ProviderModule = fx.Module("provider",
	fx.Provide(
		NewProviderConfig,
		NewStatusCache,
		fx.Annotate(
			provider.NewClient,
			fx.As(new(commands.ProviderGateway)),
			fx.As(new(worker.StatusGateway)),
		),
	),
)

func NewProviderConfig(cfg config.Config) config.ProviderConfig {
	return cfg.Provider
}

func NewStatusCache(cfg config.Config) provider.StatusCache {
	return provider.NewTTLStatusCache(cfg.Provider.StatusCacheTTL)
}
