package api

import (
	"net/http"

	resdto "techpoints/internal/handler/dto/response"
	"techpoints/internal/handler/httperr"
	"techpoints/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	q queries.TransactionQueries
}

func NewTransactionHandler(q queries.TransactionQueries) *TransactionHandler {
	return &TransactionHandler{q: q}
}

// @Summary List transactions
// @Description Newest-first transaction log. Customers only see their own entries.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param actor query string false "Account ID"
// @Param type query string false "Entry type (redemption, credit, debit, adjustment)"
// @Param from query string false "Inclusive start (RFC 3339)"
// @Param to query string false "Exclusive end (RFC 3339)"
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} resdto.TransactionListResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	actorID, role, ok := actor(c)
	if !ok {
		return
	}
	target, ok := queryUUID(c, "actor")
	if !ok {
		return
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}
	filters := queries.TransactionFilters{
		ActorID: target,
		Type:    queryString(c, "type"),
		From:    from,
		To:      to,
	}
	cursor, limit := pagination(c)

	items, next, err := h.q.List(c.Request.Context(), actorID, role, filters, cursor, limit)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTransactionList(items, next))
}

// @Summary Transaction statistics
// @Description Counts per entry type plus earned and redeemed totals
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param actor query string false "Account ID"
// @Param since query string false "Window start (RFC 3339), defaults to the configured window"
// @Success 200 {object} resdto.TransactionStatsResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/transactions/stats [get]
func (h *TransactionHandler) Stats(c *gin.Context) {
	actorID, role, ok := actor(c)
	if !ok {
		return
	}
	target, ok := queryUUID(c, "actor")
	if !ok {
		return
	}
	since, ok := queryTime(c, "since")
	if !ok {
		return
	}

	stats, err := h.q.Stats(c.Request.Context(), actorID, role, target, since)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTransactionStats(stats))
}
