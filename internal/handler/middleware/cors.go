package middleware

import (
	"log/slog"
	"net/http"
	"slices"

	"techpoints/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// What the storefront client needs whatever CORS_* says.
var (
	requiredMethods       = []string{http.MethodGet, http.MethodPost, http.MethodPatch}
	requiredAllowHeaders  = []string{"Content-Type", "Authorization", "Idempotency-Key"}
	requiredExposeHeaders = []string{RequestIDHeader}
)

// NewCORSMiddleware lets the storefront origins call the API with the session
// cookie. Redemption needs Idempotency-Key through preflight, and the client
// reads X-Request-ID to quote failed calls.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     withRequired(cfg.AllowMethods, requiredMethods),
		AllowHeaders:     withRequired(cfg.AllowHeaders, requiredAllowHeaders),
		ExposeHeaders:    withRequired(cfg.ExposeHeaders, requiredExposeHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	slog.Info("CORS middleware initialized",
		"allow_origins", corsCfg.AllowOrigins,
		"allow_headers", corsCfg.AllowHeaders,
		"allow_credentials", corsCfg.AllowCredentials,
	)
	return cors.New(corsCfg)
}

func withRequired(configured, required []string) []string {
	out := slices.Clone(configured)
	for _, h := range required {
		if !slices.ContainsFunc(out, func(c string) bool { return http.CanonicalHeaderKey(c) == http.CanonicalHeaderKey(h) }) {
			out = append(out, h)
		}
	}
	return out
}
