//go:build unit

package middleware_test

import (
	"net/http"
	nethttptest "net/http/httptest"
	"testing"
	"time"

	"techpoints/internal/handler/middleware"
	"techpoints/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Operator config that forgot the redemption header.
	cfg := config.CORSConfig{
		AllowOrigins:     []string{"http://shop.example.com"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}
	engine := gin.New()
	engine.Use(middleware.NewCORSMiddleware(cfg))
	engine.POST("/api/redemptions", func(c *gin.Context) { c.Status(http.StatusCreated) })

	t.Run("allowed origin gets the idempotency header", func(t *testing.T) {
		req := nethttptest.NewRequest(http.MethodOptions, "/api/redemptions", nil)
		req.Header.Set("Origin", "http://shop.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
		w := nethttptest.NewRecorder()

		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	})

	t.Run("request id is exposed", func(t *testing.T) {
		req := nethttptest.NewRequest(http.MethodPost, "/api/redemptions", nil)
		req.Header.Set("Origin", "http://shop.example.com")
		w := nethttptest.NewRecorder()

		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), http.CanonicalHeaderKey(middleware.RequestIDHeader))
	})

	t.Run("unknown origin is refused", func(t *testing.T) {
		req := nethttptest.NewRequest(http.MethodOptions, "/api/redemptions", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := nethttptest.NewRecorder()

		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
