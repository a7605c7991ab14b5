package response

import (
	"techpoints/internal/usecase/commands"
	"techpoints/internal/usecase/queries"

	"github.com/google/uuid"
)

type AdjustmentResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	NewBalance    int64     `json:"new_balance"`
	Degraded      bool      `json:"degraded"`
}

type BalanceResponse struct {
	AccountID     uuid.UUID `json:"account_id"`
	PointsBalance int64     `json:"points_balance"`
	Degraded      bool      `json:"degraded"`
}

func FromAdjustmentResult(r *commands.AdjustmentResult) *AdjustmentResponse {
	return &AdjustmentResponse{
		TransactionID: r.TransactionID,
		CustomerID:    r.CustomerID,
		Type:          string(r.Type),
		Amount:        r.Amount,
		NewBalance:    r.NewBalance,
		Degraded:      r.Degraded,
	}
}

func FromBalanceView(v *queries.BalanceView) *BalanceResponse {
	return copyInto[BalanceResponse](v)
}
