//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	"testing"

	"techpoints/internal/domain/account"
	"techpoints/internal/handler/middleware"
	usecasemock "techpoints/internal/mock/usecase"
	"techpoints/internal/pkg/cookie"
	"techpoints/internal/testutil/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AuthMiddlewareTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockValidator *usecasemock.MockTokenValidator
	auth          *middleware.AuthMiddleware
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mockCtrl = gomock.NewController(s.T())
	s.mockValidator = usecasemock.NewMockTokenValidator(s.mockCtrl)
	s.auth = middleware.NewAuthMiddleware(s.mockValidator)
}

func (s *AuthMiddlewareTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func (s *AuthMiddlewareTestSuite) engine(chain ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	handlers := append(chain, func(c *gin.Context) {
		id, _ := middleware.GetUserID(c)
		role, _ := middleware.GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "role": role.String()})
	})
	r.GET("/protected", handlers...)
	return r
}

func (s *AuthMiddlewareTestSuite) TestRequireAuth() {
	r := s.engine(s.auth.RequireAuth())
	userID := uuid.New()

	s.Run("success: bearer header", func() {
		s.mockValidator.EXPECT().ValidateToken("good").Return(userID, account.RoleCustomer, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), r, http.MethodGet, "/protected", nil, httptest.WithBearer("good"))

		var body map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(userID.String(), body["id"])
		s.Equal("customer", body["role"])
	})

	s.Run("success: cookie wins over header", func() {
		s.mockValidator.EXPECT().ValidateToken("from-cookie").Return(userID, account.RoleStore, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), r, http.MethodGet, "/protected", nil,
			httptest.WithCookies(&http.Cookie{Name: cookie.AccessTokenCookieName, Value: "from-cookie"}),
			httptest.WithBearer("from-header"))
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 401 without a token", func() {
		rec := httptest.PerformRequest(s.T(), r, http.MethodGet, "/protected", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "")
	})

	s.Run("error: 401 for a rejected token", func() {
		s.mockValidator.EXPECT().ValidateToken("bad").Return(uuid.Nil, account.Role(""), errors.New("expired")).Times(1)

		rec := httptest.PerformRequest(s.T(), r, http.MethodGet, "/protected", nil, httptest.WithBearer("bad"))
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "")
	})
}

func (s *AuthMiddlewareTestSuite) TestRoleGuards() {
	cases := []struct {
		name   string
		guard  gin.HandlerFunc
		role   account.Role
		status int
	}{
		{"at least store admits admin", s.auth.RequireRoleAtLeast(account.RoleStore), account.RoleAdmin, http.StatusOK},
		{"at least store admits store", s.auth.RequireRoleAtLeast(account.RoleStore), account.RoleStore, http.StatusOK},
		{"at least store rejects customer", s.auth.RequireRoleAtLeast(account.RoleStore), account.RoleCustomer, http.StatusForbidden},
		{"customer only rejects store", s.auth.RequireAnyRole(account.RoleCustomer), account.RoleStore, http.StatusForbidden},
		{"customer only rejects admin", s.auth.RequireAnyRole(account.RoleCustomer), account.RoleAdmin, http.StatusForbidden},
		{"customer only admits customer", s.auth.RequireAnyRole(account.RoleCustomer), account.RoleCustomer, http.StatusOK},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			r := s.engine(s.auth.RequireAuth(), tc.guard)
			s.mockValidator.EXPECT().ValidateToken("token").Return(uuid.New(), tc.role, nil).Times(1)

			rec := httptest.PerformRequest(s.T(), r, http.MethodGet, "/protected", nil, httptest.WithBearer("token"))
			s.Equal(tc.status, rec.Code, rec.Body.String())
		})
	}

	s.Run("error: 500 when no auth ran first", func() {
		r := s.engine(s.auth.RequireAnyRole(account.RoleCustomer))

		rec := httptest.PerformRequest(s.T(), r, http.MethodGet, "/protected", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "")
	})
}

func (s *AuthMiddlewareTestSuite) TestOptionalAuth() {
	r := s.engine(s.auth.OptionalAuth())

	s.Run("anonymous requests pass through", func() {
		rec := httptest.PerformRequest(s.T(), r, http.MethodGet, "/protected", nil)

		var body map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(uuid.Nil.String(), body["id"])
	})

	s.Run("invalid tokens are ignored", func() {
		s.mockValidator.EXPECT().ValidateToken("bad").Return(uuid.Nil, account.Role(""), errors.New("bad")).Times(1)

		rec := httptest.PerformRequest(s.T(), r, http.MethodGet, "/protected", nil, httptest.WithBearer("bad"))
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})
}
