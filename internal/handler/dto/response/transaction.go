package response

import (
	"time"

	"techpoints/internal/usecase/queries"

	"github.com/google/uuid"
)

type TransactionResponse struct {
	ID            uuid.UUID  `json:"id"`
	ActorID       uuid.UUID  `json:"actor_id"`
	Type          string     `json:"type"`
	Amount        int64      `json:"amount"`
	BalanceBefore int64      `json:"balance_before"`
	BalanceAfter  int64      `json:"balance_after"`
	Reason        string     `json:"reason"`
	ProductID     *uuid.UUID `json:"product_id,omitempty"`
	ProductName   *string    `json:"product_name,omitempty"`
	ProductCost   *int64     `json:"product_cost,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	NextCursor   string                 `json:"next_cursor,omitempty"`
}

type TransactionStatsResponse struct {
	CountsByType  map[string]int64 `json:"counts_by_type"`
	TotalEarned   int64            `json:"total_earned"`
	TotalRedeemed int64            `json:"total_redeemed"`
	RecentCount   int64            `json:"recent_count"`
	Since         time.Time        `json:"since"`
}

func FromTransactionList(items []*queries.TransactionView, next *queries.Cursor) *TransactionListResponse {
	resp := &TransactionListResponse{Transactions: copyList[TransactionResponse](items)}
	if next != nil {
		resp.NextCursor = next.After
	}
	return resp
}

func FromTransactionStats(s *queries.TransactionStats) *TransactionStatsResponse {
	counts := make(map[string]int64, len(s.CountsByType))
	for k, v := range s.CountsByType {
		counts[k] = v
	}
	return &TransactionStatsResponse{
		CountsByType:  counts,
		TotalEarned:   s.TotalEarned,
		TotalRedeemed: s.TotalRedeemed,
		RecentCount:   s.RecentCount,
		Since:         s.Since,
	}
}
