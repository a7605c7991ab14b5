package response

import (
	"techpoints/internal/usecase/commands"

	"github.com/google/uuid"
)

type RedemptionResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	CostPoints    int64     `json:"cost_points"`
	NewBalance    int64     `json:"new_balance"`
	NewStock      int64     `json:"new_stock"`
	Message       string    `json:"message"`
	Degraded      bool      `json:"degraded"`
}

func FromRedemptionResult(r *commands.RedemptionResult) *RedemptionResponse {
	return copyInto[RedemptionResponse](r)
}
