//go:build unit

package api_test

import (
	"techpoints/internal/domain/account"
	"techpoints/internal/handler/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	testAccountHeader = "X-Test-Account"
	testRoleHeader    = "X-Test-Role"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.ErrorHandler())
	return engine
}

// fakeAuth stands in for RequireAuth: identity comes from test headers and
// requests without them stay anonymous.
func fakeAuth(c *gin.Context) {
	if id, err := uuid.Parse(c.GetHeader(testAccountHeader)); err == nil {
		c.Set("user_id", id)
		c.Set("user_role", account.Role(c.GetHeader(testRoleHeader)))
	}
	c.Next()
}
