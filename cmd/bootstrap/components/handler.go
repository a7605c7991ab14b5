package components

import (
	"techpoints/internal/handler"
	"techpoints/internal/handler/api"
	"techpoints/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewCatalogHandler,
		api.NewRedemptionHandler,
		api.NewPointsHandler,
		api.NewTransactionHandler,
		api.NewEventsHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	auth *api.AuthHandler,
	catalog *api.CatalogHandler,
	redemption *api.RedemptionHandler,
	points *api.PointsHandler,
	transactions *api.TransactionHandler,
	events *api.EventsHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:         auth,
		Catalog:      catalog,
		Redemption:   redemption,
		Points:       points,
		Transactions: transactions,
		Events:       events,
	}
}
