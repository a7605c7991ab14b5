//go:build e2e

package e2e

import (
	"net/http"
	nethttptest "net/http/httptest"
	"testing"

	reqdto "techpoints/internal/handler/dto/request"
	resdto "techpoints/internal/handler/dto/response"
	"techpoints/internal/testutil/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testPasswordPlain = "password123"

type session struct {
	accountID uuid.UUID
	token     string
}

func (s session) auth() httptest.Option {
	return httptest.WithBearer(s.token)
}

func signUp(t *testing.T, router *gin.Engine, email, role string) session {
	t.Helper()

	rec := httptest.PerformRequest(t, router, http.MethodPost, "/api/auth/register", reqdto.RegisterRequest{
		Email:       email,
		Password:    testPasswordPlain,
		DisplayName: email,
		Role:        role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.PerformRequest(t, router, http.MethodPost, "/api/auth/login", reqdto.LoginRequest{
		Email:    email,
		Password: testPasswordPlain,
	})
	var login resdto.LoginResponse
	httptest.AssertSuccessResponse(t, rec, http.StatusOK, &login)
	require.NotEmpty(t, login.AccessToken)

	return session{accountID: login.AccountID, token: login.AccessToken}
}

func createProduct(t *testing.T, router *gin.Engine, store session, name string, priceCents, stock int64) resdto.ProductResponse {
	t.Helper()

	rec := httptest.PerformRequest(t, router, http.MethodPost, "/api/products", reqdto.ProductRequest{
		Name:       name,
		Category:   "electronics",
		PriceCents: priceCents,
		Stock:      stock,
	}, store.auth())

	var p resdto.ProductResponse
	httptest.AssertSuccessResponse(t, rec, http.StatusCreated, &p)
	return p
}

func patchProduct(t *testing.T, router *gin.Engine, store session, id uuid.UUID, req reqdto.ProductPatchRequest) *nethttptest.ResponseRecorder {
	t.Helper()
	return httptest.PerformRequest(t, router, http.MethodPatch, "/api/products/"+id.String(), req, store.auth())
}

func adjustPoints(t *testing.T, router *gin.Engine, actor session, customerID uuid.UUID, amount int64) *nethttptest.ResponseRecorder {
	t.Helper()
	return httptest.PerformRequest(t, router, http.MethodPost, "/api/accounts/"+customerID.String()+"/points",
		reqdto.AdjustPointsRequest{Amount: amount, Reason: "test"}, actor.auth())
}

func redeem(t *testing.T, router *gin.Engine, customer session, productID uuid.UUID, key string) *nethttptest.ResponseRecorder {
	t.Helper()
	return httptest.PerformRequest(t, router, http.MethodPost, "/api/redemptions",
		reqdto.RedeemRequest{ProductID: productID},
		customer.auth(), httptest.WithHeader("Idempotency-Key", key))
}

func balance(t *testing.T, router *gin.Engine, customer session) int64 {
	t.Helper()

	rec := httptest.PerformRequest(t, router, http.MethodGet, "/api/accounts/"+customer.accountID.String()+"/balance", nil, customer.auth())
	var b resdto.BalanceResponse
	httptest.AssertSuccessResponse(t, rec, http.StatusOK, &b)
	return b.PointsBalance
}

func getProduct(t *testing.T, router *gin.Engine, id uuid.UUID) resdto.ProductResponse {
	t.Helper()

	rec := httptest.PerformRequest(t, router, http.MethodGet, "/api/products/"+id.String(), nil)
	var p resdto.ProductResponse
	httptest.AssertSuccessResponse(t, rec, http.StatusOK, &p)
	return p
}
