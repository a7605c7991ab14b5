package queries

//go:generate mockgen -destination=../../mock/queries/queries.go -package=queriesmock techpoints/internal/usecase/queries AccountQueries,CatalogQueries,TransactionQueries

import (
	"time"

	"github.com/google/uuid"
)

// AccountView is the profile returned to the signed-in account
type AccountView struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	DisplayName   string     `json:"display_name"`
	PointsBalance int64      `json:"points_balance"`
	IsActive      bool       `json:"is_active"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	Degraded      bool       `json:"degraded,omitempty"`
}

type BalanceView struct {
	AccountID     uuid.UUID `json:"account_id"`
	PointsBalance int64     `json:"points_balance"`
	Degraded      bool      `json:"degraded"`
}

// ProductView represents read-optimized catalog data
type ProductView struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	CostPoints  int64     `json:"cost_points"`
	Stock       int64     `json:"stock"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductFilters struct {
	StoreID  *uuid.UUID
	Category *string
	InStock  *bool
	Query    *string
}

// TransactionView is one transaction log entry. Product fields are the
// snapshot taken at redemption time.
type TransactionView struct {
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

type TransactionFilters struct {
	ActorID *uuid.UUID
	Type    *string
	From    *time.Time
	To      *time.Time
}

type TransactionStats struct {
	CountsByType  map[string]int64 `json:"counts_by_type"`
	TotalEarned   int64            `json:"total_earned"`
	TotalRedeemed int64            `json:"total_redeemed"`
	RecentCount   int64            `json:"recent_count"`
	Since         time.Time        `json:"since"`
}
