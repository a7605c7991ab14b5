//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/ledger"
	"techpoints/internal/handler/api"
	reqdto "techpoints/internal/handler/dto/request"
	resdto "techpoints/internal/handler/dto/response"
	commandsmock "techpoints/internal/mock/commands"
	queriesmock "techpoints/internal/mock/queries"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/testutil/httptest"
	"techpoints/internal/usecase/commands"
	"techpoints/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PointsHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockPointsCommands
	mockQueries  *queriesmock.MockAccountQueries
	actorID      uuid.UUID
	customerID   uuid.UUID
}

func (s *PointsHandlerTestSuite) SetupTest() {
	s.router = newEngine()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockPointsCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockAccountQueries(s.mockCtrl)
	s.actorID = uuid.New()
	s.customerID = uuid.New()

	h := api.NewPointsHandler(s.mockCommands, s.mockQueries)
	s.router.POST("/accounts/:id/points", fakeAuth, h.Adjust)
	s.router.GET("/accounts/:id/balance", fakeAuth, h.Balance)
}

func (s *PointsHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPointsHandlerSuite(t *testing.T) {
	suite.Run(t, new(PointsHandlerTestSuite))
}

func (s *PointsHandlerTestSuite) as(id uuid.UUID, role account.Role) []httptest.Option {
	return []httptest.Option{
		httptest.WithHeader(testAccountHeader, id.String()),
		httptest.WithHeader(testRoleHeader, role.String()),
	}
}

func (s *PointsHandlerTestSuite) TestAdjust() {
	url := "/accounts/" + s.customerID.String() + "/points"
	credit := reqdto.AdjustPointsRequest{Amount: 1000, Reason: "Welcome"}

	s.Run("success: a store credit returns the new balance", func() {
		s.mockCommands.EXPECT().AdjustPoints(gomock.Any(), credit, s.actorID, account.RoleStore, s.customerID).
			Return(&commands.AdjustmentResult{
				TransactionID: uuid.New(),
				CustomerID:    s.customerID,
				Type:          ledger.TypeAdjustment,
				Amount:        1000,
				NewBalance:    1000,
			}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, credit, s.as(s.actorID, account.RoleStore)...)

		var body resdto.AdjustmentResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(int64(1000), body.NewBalance)
		s.Equal("adjustment", body.Type)
	})

	s.Run("error: maps use case errors to proper statuses", func() {
		cases := []struct {
			name       string
			err        error
			expectCode int
			expectKind string
		}{
			{"zero amount", errs.ErrInvalidAmount, http.StatusBadRequest, "InvalidAmount"},
			{"store debit", errs.ErrNotAuthorized, http.StatusForbidden, "NotAuthorized"},
			{"unknown customer", errs.ErrCustomerNotFound, http.StatusNotFound, "CustomerNotFound"},
			{"over-debit", errs.ErrInsufficientPoints, http.StatusConflict, "InsufficientPoints"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().AdjustPoints(gomock.Any(), credit, s.actorID, account.RoleStore, s.customerID).
					Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, credit, s.as(s.actorID, account.RoleStore)...)
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, tc.expectKind)
			})
		}
	})

	s.Run("error: 400 for a malformed account id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/accounts/x/points", credit, s.as(s.actorID, account.RoleStore)...)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: 400 for a non-numeric amount", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"amount": "lots"}, s.as(s.actorID, account.RoleStore)...)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

func (s *PointsHandlerTestSuite) TestBalance() {
	url := "/accounts/" + s.customerID.String() + "/balance"

	s.Run("success: a customer reads their own balance", func() {
		s.mockQueries.EXPECT().GetBalance(gomock.Any(), s.customerID, account.RoleCustomer, s.customerID).
			Return(&queries.BalanceView{AccountID: s.customerID, PointsBalance: 250}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, s.as(s.customerID, account.RoleCustomer)...)

		var body resdto.BalanceResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(int64(250), body.PointsBalance)
	})

	s.Run("error: 403 for another customer's balance", func() {
		s.mockQueries.EXPECT().GetBalance(gomock.Any(), s.actorID, account.RoleCustomer, s.customerID).
			Return(nil, errs.ErrNotAuthorized).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, s.as(s.actorID, account.RoleCustomer)...)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "NotAuthorized")
	})
}
