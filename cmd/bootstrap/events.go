package bootstrap

import (
	"context"

	"techpoints/internal/infra/events"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/usecase/shared"

	"go.uber.org/fx"
)

var EventsModule = fx.Module("events",
	fx.Provide(
		NewEventBus,
		func(bus *events.Bus) shared.EventPublisher { return bus },
	),
)

func NewEventBus(lc fx.Lifecycle, clk clock.Clock) *events.Bus {
	bus := events.NewBus(clk)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			bus.Close()
			return nil
		},
	})
	return bus
}
