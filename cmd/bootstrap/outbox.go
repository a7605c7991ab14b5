package bootstrap

import (
	"context"
	"log/slog"

	"techpoints/internal/infra/outbox"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/config"
	"techpoints/internal/usecase/shared"

	"go.uber.org/fx"
)

var OutboxModule = fx.Module("outbox",
	fx.Invoke(StartOutboxRelay),
)

// StartOutboxRelay drains queued notification jobs to Kafka. Without brokers
// the jobs stay queued.
func StartOutboxRelay(lc fx.Lifecycle, cfg config.Config, uow shared.UnitOfWork, clk clock.Clock, logger *slog.Logger) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("no kafka brokers configured, outbox relay disabled")
		return
	}

	writer := outbox.NewKafkaWriter(cfg.Kafka)
	relay := outbox.NewRelay(uow, writer, clk, cfg.Kafka)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("starting outbox relay", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
			go func() {
				defer close(done)
				relay.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return writer.Close()
		},
	})
}
