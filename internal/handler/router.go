package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"techpoints/internal/domain/account"
	"techpoints/internal/handler/api"
	"techpoints/internal/handler/middleware"
	"techpoints/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth         *api.AuthHandler
	Catalog      *api.CatalogHandler
	Redemption   *api.RedemptionHandler
	Points       *api.PointsHandler
	Transactions *api.TransactionHandler
	Events       *api.EventsHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, cfg, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Uploaded product images
	if cfg.Storage.PublicBaseURL != "" && cfg.Storage.Root != "" {
		engine.Static(cfg.Storage.PublicBaseURL, cfg.Storage.Root)
	}

	requireAuth := authMiddleware.RequireAuth()
	storeOnly := authMiddleware.RequireAnyRole(account.RoleStore)
	customerOnly := authMiddleware.RequireAnyRole(account.RoleCustomer)
	storeOrAdmin := authMiddleware.RequireRoleAtLeast(account.RoleStore)

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/register", Handler: h.Auth.Register},
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: h.Auth.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(requireAuth)
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		products := apiGroup.Group("/products")
		{
			addRoutes(products, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Catalog.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Catalog.Get},
				{Method: http.MethodPost, Path: "", Handler: h.Catalog.Create, Mw: []gin.HandlerFunc{requireAuth, storeOnly}},
				{Method: http.MethodPut, Path: "/:id", Handler: h.Catalog.Update, Mw: []gin.HandlerFunc{requireAuth, storeOnly}},
				{Method: http.MethodPatch, Path: "/:id", Handler: h.Catalog.Patch, Mw: []gin.HandlerFunc{requireAuth, storeOnly}},
				{Method: http.MethodDelete, Path: "/:id", Handler: h.Catalog.Delete, Mw: []gin.HandlerFunc{requireAuth, storeOnly}},
				{Method: http.MethodPut, Path: "/:id/image", Handler: h.Catalog.UploadImage, Mw: []gin.HandlerFunc{requireAuth, storeOnly}},
			})
		}

		redemptions := apiGroup.Group("/redemptions")
		redemptions.Use(requireAuth)
		{
			addRoutes(redemptions, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Redemption.Redeem, Mw: []gin.HandlerFunc{customerOnly}},
			})
		}

		accounts := apiGroup.Group("/accounts")
		accounts.Use(requireAuth)
		{
			addRoutes(accounts, []route{
				{Method: http.MethodPost, Path: "/:id/points", Handler: h.Points.Adjust, Mw: []gin.HandlerFunc{storeOrAdmin}},
				{Method: http.MethodGet, Path: "/:id/balance", Handler: h.Points.Balance},
			})
		}

		transactions := apiGroup.Group("/transactions")
		transactions.Use(requireAuth)
		{
			addRoutes(transactions, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Transactions.List},
				{Method: http.MethodGet, Path: "/stats", Handler: h.Transactions.Stats},
			})
		}

		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/events", Handler: h.Events.Stream, Mw: []gin.HandlerFunc{requireAuth}},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
