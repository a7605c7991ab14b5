package api

import (
	"net/http"

	reqdto "techpoints/internal/handler/dto/request"
	resdto "techpoints/internal/handler/dto/response"
	"techpoints/internal/handler/httperr"
	"techpoints/internal/usecase/commands"
	"techpoints/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type PointsHandler struct {
	cmds commands.PointsCommands
	q    queries.AccountQueries
}

func NewPointsHandler(cmds commands.PointsCommands, q queries.AccountQueries) *PointsHandler {
	return &PointsHandler{cmds: cmds, q: q}
}

// @Summary Adjust points
// @Description Credit (positive amount) or debit (negative amount) a customer's balance. Stores may only credit.
// @Tags points
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer account ID"
// @Param request body reqdto.AdjustPointsRequest true "Adjustment"
// @Success 200 {object} resdto.AdjustmentResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/accounts/{id}/points [post]
func (h *PointsHandler) Adjust(c *gin.Context) {
	customerID, ok := pathUUID(c, "id", "Invalid account id")
	if !ok {
		return
	}
	actorID, role, ok := actor(c)
	if !ok {
		return
	}
	var req reqdto.AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.AdjustPoints(c.Request.Context(), req, actorID, role, customerID)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAdjustmentResult(result))
}

// @Summary Get balance
// @Description Points balance of an account. Callers see their own balance; admins see any.
// @Tags points
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} resdto.BalanceResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/accounts/{id}/balance [get]
func (h *PointsHandler) Balance(c *gin.Context) {
	accountID, ok := pathUUID(c, "id", "Invalid account id")
	if !ok {
		return
	}
	actorID, role, ok := actor(c)
	if !ok {
		return
	}

	view, err := h.q.GetBalance(c.Request.Context(), actorID, role, accountID)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBalanceView(view))
}
