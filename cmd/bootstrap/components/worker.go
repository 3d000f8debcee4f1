package components

import (
	"context"

	"keypanel/internal/usecase/queries"
	"keypanel/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		fx.Annotate(
			worker.NewPoller,
			fx.As(new(queries.StatusRefresher)),
			fx.As(fx.Self()),
		),
	),
	fx.Invoke(startPoller),
)

func startPoller(lc fx.Lifecycle, poller *worker.Poller) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			poller.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			poller.Stop()
			return nil
		},
	})
}
