package components

import (
	"techpoints/internal/domain/ledger"
	"techpoints/internal/infra/objectstore"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/config"
	"techpoints/internal/pkg/jwt"
	"techpoints/internal/usecase"
	"techpoints/internal/usecase/commands"
	"techpoints/internal/usecase/queries"
	"techpoints/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) ledger.RetentionPolicy {
		return ledger.RetentionPolicy{
			MaxEntries: cfg.Ledger.RetentionMaxEntries,
			MaxAge:     cfg.Ledger.RetentionMaxAge,
		}
	},
	fx.Annotate(
		func(cfg config.Config) *objectstore.LocalStore {
			return objectstore.NewLocalStore(cfg.Storage)
		},
		fx.As(new(commands.ImageStore)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		func(
			uow shared.UnitOfWork,
			readStore queries.AccountReadStore,
			jwtService *jwt.Service,
			clk clock.Clock,
			cfg config.Config,
		) commands.AuthCommands {
			return commands.NewAuthCommands(uow, readStore, jwtService, clk, cfg.Ledger.SignupBonusPoints)
		},
		func(
			uow shared.UnitOfWork,
			images commands.ImageStore,
			events shared.EventPublisher,
			clk clock.Clock,
			cfg config.Config,
		) commands.CatalogCommands {
			return commands.NewCatalogCommands(uow, images, events, clk, cfg.Storage)
		},
		commands.NewPointsCommands,
		commands.NewRedemptionCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewAccountQueries,
		queries.NewCatalogQueries,
		func(repo queries.TransactionReadStore, clk clock.Clock, cfg config.Config) queries.TransactionQueries {
			return queries.NewTransactionQueries(repo, clk, cfg.Ledger.StatsWindow)
		},
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
