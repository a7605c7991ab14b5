//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/handler/api"
	reqdto "techpoints/internal/handler/dto/request"
	resdto "techpoints/internal/handler/dto/response"
	commandsmock "techpoints/internal/mock/commands"
	queriesmock "techpoints/internal/mock/queries"
	"techpoints/internal/pkg/config"
	"techpoints/internal/pkg/cookie"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/pkg/jwt"
	"techpoints/internal/testutil"
	"techpoints/internal/testutil/builder"
	"techpoints/internal/testutil/httptest"
	"techpoints/internal/usecase/commands"
	"techpoints/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockAuthCommands
	mockQueries  *queriesmock.MockAccountQueries
	handler      *api.AuthHandler
}

func (s *AuthHandlerTestSuite) SetupTest() {
	s.router = newEngine()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockAuthCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockAccountQueries(s.mockCtrl)
	jwtService := jwt.NewService("test-secret", 15*time.Minute, time.Hour)
	s.handler = api.NewAuthHandler(s.mockCommands, s.mockQueries, jwtService, config.NewTestConfig())

	s.router.POST("/auth/register", s.handler.Register)
	s.router.POST("/auth/login", s.handler.Login)
	s.router.POST("/auth/refresh", s.handler.Refresh)
	s.router.POST("/auth/logout", fakeAuth, s.handler.Logout)
	s.router.GET("/auth/me", fakeAuth, s.handler.Me)
}

func (s *AuthHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

type testCaseAuth struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

func (s *AuthHandlerTestSuite) TestRegister() {
	url := "/auth/register"
	reqBody := reqdto.RegisterRequest{
		Email:       "new@example.com",
		Password:    "password123",
		DisplayName: "New Customer",
	}
	result := &commands.RegisterResult{AccountID: uuid.New(), Role: account.RoleCustomer, PointsBalance: 100}

	s.Run("success: returns 201 with the opening balance", func() {
		s.mockCommands.EXPECT().Register(gomock.Any(), reqBody).Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var body resdto.RegisterResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(result.AccountID, body.AccountID)
		s.Equal("customer", body.Role)
		s.Equal(int64(100), body.PointsBalance)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		cases := []testCaseAuth{
			{name: "invalid email", mutate: testutil.Field("email", "not-an-email"), expectCode: http.StatusBadRequest},
			{name: "short password", mutate: testutil.Field("password", strings.Repeat("a", 7)), expectCode: http.StatusBadRequest},
			{name: "missing display name", mutate: testutil.Field("display_name", nil), expectCode: http.StatusBadRequest},
			{name: "admin role not self-assignable", mutate: testutil.Field("role", "admin"), expectCode: http.StatusBadRequest},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, testutil.DtoMap(s.T(), reqBody, tc.mutate))
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "")
			})
		}
	})

	s.Run("error: 409 Conflict when the email is taken", func() {
		s.mockCommands.EXPECT().Register(gomock.Any(), reqBody).Return(nil, commands.ErrEmailTaken).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "EmailTaken")
	})
}

func (s *AuthHandlerTestSuite) TestLogin() {
	url := "/auth/login"
	reqBody := reqdto.LoginRequest{Email: "customer@example.com", Password: "password123"}
	result := &commands.LoginResult{
		AccountID: uuid.New(),
		Role:      account.RoleCustomer,
		TokenPair: &commands.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
	}

	s.Run("success: returns the access token and sets both cookies", func() {
		s.mockCommands.EXPECT().Login(gomock.Any(), reqBody).Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var body resdto.LoginResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("access", body.AccessToken)
		s.Equal(result.AccountID, body.AccountID)

		access := httptest.ExtractCookie(rec, cookie.AccessTokenCookieName)
		s.Require().NotNil(access)
		s.Equal("access", access.Value)
		s.True(access.HttpOnly)
		refresh := httptest.ExtractCookie(rec, cookie.RefreshTokenCookieName)
		s.Require().NotNil(refresh)
		s.Equal("refresh", refresh.Value)
	})

	s.Run("error: maps use case errors to proper statuses", func() {
		cases := []struct {
			name       string
			err        error
			expectCode int
			expectKind string
		}{
			{"invalid credentials", commands.ErrInvalidCredentials, http.StatusUnauthorized, "InvalidCredentials"},
			{"inactive account", commands.ErrAccountInactive, http.StatusForbidden, "AccountInactive"},
			{"database unavailable", errs.Mark(errors.New("dial tcp"), errs.ErrUpstreamUnavailable), http.StatusServiceUnavailable, "UpstreamUnavailable"},
			{"unexpected", errors.New("boom"), http.StatusInternalServerError, ""},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Login(gomock.Any(), reqBody).Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, tc.expectKind)
			})
		}
	})
}

func (s *AuthHandlerTestSuite) TestRefresh() {
	url := "/auth/refresh"
	pair := &commands.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}

	s.Run("success: reads the refresh cookie first", func() {
		s.mockCommands.EXPECT().RefreshToken(gomock.Any(), "cookie-refresh").Return(pair, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil,
			httptest.WithCookies(&http.Cookie{Name: cookie.RefreshTokenCookieName, Value: "cookie-refresh"}))

		var body resdto.TokenResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("new-access", body.AccessToken)
		s.Equal("new-refresh", httptest.ExtractCookie(rec, cookie.RefreshTokenCookieName).Value)
	})

	s.Run("success: falls back to the request body", func() {
		s.mockCommands.EXPECT().RefreshToken(gomock.Any(), "body-refresh").Return(pair, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqdto.RefreshRequest{RefreshToken: "body-refresh"})
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 401 without any refresh token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "")
	})

	s.Run("error: 401 and cleared cookies on a rejected token", func() {
		s.mockCommands.EXPECT().RefreshToken(gomock.Any(), "stale").Return(nil, commands.ErrTokenValidation).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqdto.RefreshRequest{RefreshToken: "stale"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "InvalidToken")
		s.Equal(-1, httptest.ExtractCookie(rec, cookie.AccessTokenCookieName).MaxAge)
	})
}

func (s *AuthHandlerTestSuite) TestLogout() {
	s.Run("success: returns 204 and expires the cookies", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/logout", nil,
			httptest.WithHeader(testAccountHeader, uuid.NewString()),
			httptest.WithHeader(testRoleHeader, "customer"))

		s.Equal(http.StatusNoContent, rec.Code)
		s.Equal(-1, httptest.ExtractCookie(rec, cookie.AccessTokenCookieName).MaxAge)
		s.Equal(-1, httptest.ExtractCookie(rec, cookie.RefreshTokenCookieName).MaxAge)
	})
}

func (s *AuthHandlerTestSuite) TestMe() {
	url := "/auth/me"
	view := builder.NewAccountBuilder().BuildView()

	s.Run("success: returns the profile with balance", func() {
		s.mockQueries.EXPECT().GetCurrentAccount(gomock.Any(), view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil,
			httptest.WithHeader(testAccountHeader, view.ID.String()),
			httptest.WithHeader(testRoleHeader, view.Role))

		var body resdto.AccountResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.Email, body.Email)
		s.Equal(view.PointsBalance, body.PointsBalance)
	})

	s.Run("error: 401 when no identity is present", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "")
	})

	s.Run("error: maps query errors to proper statuses", func() {
		cases := []struct {
			name       string
			err        error
			expectCode int
		}{
			{"account not found", errs.ErrAccountNotFound, http.StatusNotFound},
			{"account inactive", queries.ErrAccountInactive, http.StatusForbidden},
			{"internal server error", errors.New("database error"), http.StatusInternalServerError},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockQueries.EXPECT().GetCurrentAccount(gomock.Any(), view.ID).Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil,
					httptest.WithHeader(testAccountHeader, view.ID.String()),
					httptest.WithHeader(testRoleHeader, view.Role))
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "")
			})
		}
	})
}
