package api

import (
	"net/http"

	reqdto "techpoints/internal/handler/dto/request"
	resdto "techpoints/internal/handler/dto/response"
	"techpoints/internal/handler/httperr"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
)

type RedemptionHandler struct {
	cmds commands.RedemptionCommands
}

func NewRedemptionHandler(cmds commands.RedemptionCommands) *RedemptionHandler {
	return &RedemptionHandler{cmds: cmds}
}

// @Summary Redeem product
// @Description Spend points on one unit of a product. Debit, stock decrement and log entry commit together.
// @Tags redemptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.RedeemRequest true "Redemption request"
// @Success 201 {object} resdto.RedemptionResponse
// @Success 200 {object} resdto.RedemptionResponse "Replayed result"
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Failure 504 {object} httperr.Response
// @Router /api/redemptions [post]
func (h *RedemptionHandler) Redeem(c *gin.Context) {
	customerID, _, ok := actor(c)
	if !ok {
		return
	}

	idempotencyKey, err := getIdempotencyKey(c)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}

	var req reqdto.RedeemRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Redeem(c.Request.Context(), req, customerID, idempotencyKey)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
		c.Header(replayedHeader, "true")
	}
	c.JSON(status, resdto.FromRedemptionResult(result))
}

func getIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	keyStr := c.GetHeader(idempotencyKeyHeader)
	if keyStr == "" {
		return uuid.Nil, errs.ErrIdempotencyKeyRequired
	}

	key, err := uuid.Parse(keyStr)
	if err != nil {
		return uuid.Nil, errs.Mark(err, errs.ErrIdempotencyKeyRequired)
	}

	return key, nil
}
