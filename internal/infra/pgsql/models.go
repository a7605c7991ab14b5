package pgsql

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	Role          string
	DisplayName   string
	PointsBalance int64
	IsActive      bool
	LastLogin     pgtype.Timestamptz
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

type Product struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	Name        string
	Description string
	Category    string
	PriceCents  int64
	CostPoints  int64
	Stock       int64
	ImageUrl    string
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type PointTransaction struct {
	ID            uuid.UUID
	ActorID       uuid.UUID
	Type          string
	Amount        int64
	BalanceBefore int64
	BalanceAfter  int64
	Reason        string
	ProductID     pgtype.UUID
	ProductName   pgtype.Text
	ProductCost   pgtype.Int8
	CreatedAt     pgtype.Timestamptz
}

type IdempotencyKey struct {
	Key          uuid.UUID
	AccountID    uuid.UUID
	Endpoint     string
	RequestHash  string
	Status       string
	ResultID     pgtype.UUID
	ResponseBody []byte
	ExpiresAt    pgtype.Timestamptz
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type NotificationJob struct {
	ID        uuid.UUID
	Kind      string
	Topic     string
	Payload   []byte
	RunAt     pgtype.Timestamptz
	Attempts  int32
	Status    string
	LastError pgtype.Text
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}
