package bootstrap

import (
	"context"
	"log/slog"

	"techpoints/internal/infra/seed"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/config"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/usecase/shared"

	"go.uber.org/fx"
)

var SeedModule = fx.Module("seed",
	fx.Invoke(ApplySeed),
)

func ApplySeed(lc fx.Lifecycle, cfg config.Config, uow shared.UnitOfWork, clk clock.Clock, logger *slog.Logger) {
	if cfg.Seed.File == "" {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			f, err := seed.Load(cfg.Seed.File)
			if err != nil {
				return err
			}
			summary, err := seed.Apply(ctx, uow, clk, f)
			if err != nil {
				return errs.Wrap(err, "failed to apply seed data")
			}
			if summary.Skipped {
				logger.Info("seed skipped, backend already has accounts", "file", cfg.Seed.File)
				return nil
			}
			logger.Info("seed data applied",
				"file", cfg.Seed.File,
				"accounts", summary.Accounts,
				"products", summary.Products,
				"customers", summary.Customers,
			)
			return nil
		},
	})
}
