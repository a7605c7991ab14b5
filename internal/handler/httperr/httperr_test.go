//go:build unit

package httperr_test

import (
	"net/http"
	nethttptest "net/http/httptest"
	"testing"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/redemption"
	"techpoints/internal/handler/httperr"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/testutil/httptest"
	"techpoints/internal/usecase/commands"
	"techpoints/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abortWith(err error) *nethttptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := nethttptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = nethttptest.NewRequest(http.MethodGet, "/", nil)
	httperr.AbortWithDomainError(c, err)
	return rec
}

func TestAbortWithDomainError_Mapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"product not found", errs.ErrProductNotFound, http.StatusNotFound, "ProductNotFound"},
		{"customer not found", errs.ErrCustomerNotFound, http.StatusNotFound, "CustomerNotFound"},
		{"out of stock", errs.ErrOutOfStock, http.StatusConflict, "OutOfStock"},
		{"invalid amount", errs.ErrInvalidAmount, http.StatusBadRequest, "InvalidAmount"},
		{"invalid stock", errs.ErrInvalidStock, http.StatusUnprocessableEntity, "InvalidStock"},
		{"invalid price", errs.ErrInvalidPrice, http.StatusUnprocessableEntity, "InvalidPrice"},
		{"not authorized", errs.ErrNotAuthorized, http.StatusForbidden, "NotAuthorized"},
		{"timeout", errs.ErrTimeout, http.StatusGatewayTimeout, "Timeout"},
		{"unavailable", errs.ErrUpstreamUnavailable, http.StatusServiceUnavailable, "UpstreamUnavailable"},
		{"key reused", errs.ErrIdempotencyKeyReused, http.StatusConflict, "IdempotencyKeyReused"},
		{"email taken", commands.ErrEmailTaken, http.StatusConflict, "EmailTaken"},
		{"auth failure reads as bad credentials", commands.ErrAuthenticationFailed, http.StatusUnauthorized, "InvalidCredentials"},
		{"inactive account", queries.ErrAccountInactive, http.StatusForbidden, "AccountInactive"},
		{"image too large", commands.ErrImageTooLarge, http.StatusRequestEntityTooLarge, "ImageTooLarge"},
		{"bad cursor", queries.ErrInvalidCursor, http.StatusBadRequest, "InvalidCursor"},
		{"wrapped sentinel", errs.Wrap(errs.ErrOutOfStock, "redeem"), http.StatusConflict, "OutOfStock"},
		{"marked sentinel", errs.Mark(errs.New("name empty"), errs.ErrDomainValidation), http.StatusUnprocessableEntity, "ValidationFailed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := abortWith(tc.err)
			httptest.AssertErrorResponse(t, rec, tc.status, tc.kind)
		})
	}
}

func TestAbortWithDomainError_InsufficientPointsContext(t *testing.T) {
	err := errs.Mark(&redemption.InsufficientPointsError{Balance: 120, Cost: 500}, errs.ErrInsufficientPoints)
	require.ErrorIs(t, err, account.ErrInsufficientPoints)

	rec := abortWith(err)

	body := httptest.AssertErrorResponse(t, rec, http.StatusConflict, "InsufficientPoints")
	assert.EqualValues(t, 120, body.Detail.Context["balance"])
	assert.EqualValues(t, 500, body.Detail.Context["cost"])
	assert.EqualValues(t, 380, body.Detail.Context["shortfall"])
}

func TestAbortWithDomainError_OutOfStockContext(t *testing.T) {
	productID := uuid.New()
	err := errs.Mark(&redemption.OutOfStockError{ProductID: productID, Stock: 0}, errs.ErrOutOfStock)

	rec := abortWith(err)

	body := httptest.AssertErrorResponse(t, rec, http.StatusConflict, "OutOfStock")
	assert.Equal(t, productID.String(), body.Detail.Context["product_id"])
	assert.EqualValues(t, 0, body.Detail.Context["stock"])
}

func TestAbortWithDomainError_UnknownErrorIsOpaque(t *testing.T) {
	rec := abortWith(errs.New("pq: connection reset by peer"))

	body := httptest.AssertErrorResponse(t, rec, http.StatusInternalServerError, "")
	assert.Equal(t, "Internal server error", body.Error.Message)
	assert.Empty(t, body.Detail.Kind)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}
