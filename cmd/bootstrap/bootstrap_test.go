//go:build unit

package bootstrap_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"techpoints/cmd/bootstrap"
	"techpoints/cmd/bootstrap/components"
	reqdto "techpoints/internal/handler/dto/request"
	resdto "techpoints/internal/handler/dto/response"
	"techpoints/internal/pkg/config"
	"techpoints/internal/testutil/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
)

// LocalAppSuite boots the full graph in local persistence mode with the demo seed.
type LocalAppSuite struct {
	suite.Suite
	app    *fx.App
	router *gin.Engine
}

func TestLocalAppSuite(t *testing.T) {
	suite.Run(t, new(LocalAppSuite))
}

func (s *LocalAppSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := config.NewTestConfig()
	cfg.Persistence.Mode = config.PersistenceLocal
	cfg.Storage.Root = s.T().TempDir()
	cfg.Seed.File = "../../seed/demo.yaml"

	s.app = fx.New(
		fx.Provide(func() config.Config { return cfg }),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.LoggerModule,
		bootstrap.DBModule,
		bootstrap.JWTModule,
		bootstrap.EventsModule,
		bootstrap.CacheModule,
		components.PersistenceModule,
		components.UseCaseModule,
		components.HandlerModule,
		bootstrap.OutboxModule,
		bootstrap.SeedModule,
		fx.Populate(&s.router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Require().NoError(s.app.Start(ctx))
}

func (s *LocalAppSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.NoError(s.app.Stop(ctx))
}

func (s *LocalAppSuite) login(email, password string) resdto.LoginResponse {
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/auth/login", reqdto.LoginRequest{
		Email:    email,
		Password: password,
	})
	var body resdto.LoginResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	return body
}

func (s *LocalAppSuite) findProduct(name string) *resdto.ProductResponse {
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/products?limit=50", nil)
	var list resdto.ProductListResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &list)
	for _, p := range list.Products {
		if p.Name == name {
			return p
		}
	}
	s.FailNow("seeded product missing", name)
	return nil
}

func (s *LocalAppSuite) TestSeededRedemptionFlow() {
	alice := s.login("alice@techpoints.local", "customer-password")
	headphones := s.findProduct("Wireless Headphones")
	s.Equal(int64(500), headphones.CostPoints)
	s.Equal(int64(3), headphones.Stock)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/redemptions",
		reqdto.RedeemRequest{ProductID: headphones.ID},
		httptest.WithBearer(alice.AccessToken), httptest.WithHeader("Idempotency-Key", uuid.NewString()))

	var redeemed resdto.RedemptionResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &redeemed)
	s.Equal(int64(0), redeemed.NewBalance)
	s.Equal(int64(2), redeemed.NewStock)
	s.True(redeemed.Degraded, "local mode results are flagged as non-authoritative")

	rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/redemptions",
		reqdto.RedeemRequest{ProductID: headphones.ID},
		httptest.WithBearer(alice.AccessToken), httptest.WithHeader("Idempotency-Key", uuid.NewString()))
	body := httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "InsufficientPoints")
	s.EqualValues(500, body.Detail.Context["shortfall"])

	s.Equal(int64(2), s.findProduct("Wireless Headphones").Stock)
}

func (s *LocalAppSuite) TestAdminDebitAndLedger() {
	admin := s.login("admin@techpoints.local", "admin-password")
	bob := s.login("bob@techpoints.local", "customer-password")

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/accounts/"+bob.AccountID.String()+"/points",
		reqdto.AdjustPointsRequest{Amount: -50, Reason: "Correction"}, httptest.WithBearer(admin.AccessToken))
	var adjusted resdto.AdjustmentResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &adjusted)
	s.Equal(int64(50), adjusted.NewBalance)

	rec = httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/transactions", nil, httptest.WithBearer(bob.AccessToken))
	var txs resdto.TransactionListResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &txs)
	require.NotEmpty(s.T(), txs.Transactions)
	s.Equal(int64(-50), txs.Transactions[0].Amount)
	s.Equal("Correction", txs.Transactions[0].Reason)
}
