package shared

import (
	"time"

	"github.com/google/uuid"
)

// Event bus topics.
const (
	TopicProductRedeemed = "product-redeemed"
	TopicPointsAdjusted  = "points-adjusted"
	TopicCatalogChanged  = "catalog-changed"
)

// EventPublisher fans an event out to in-process subscribers after commit.
type EventPublisher interface {
	Publish(topic string, payload any)
}

type ProductRedeemedEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	CostPoints    int64     `json:"cost_points"`
	NewBalance    int64     `json:"new_balance"`
	NewStock      int64     `json:"new_stock"`
	Timestamp     time.Time `json:"timestamp"`
}

type PointsAdjustedEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ActorID       uuid.UUID `json:"actor_id"`
	Amount        int64     `json:"amount"`
	NewBalance    int64     `json:"new_balance"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}

type CatalogChangedEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	StoreID   uuid.UUID `json:"store_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}
