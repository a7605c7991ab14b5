package pgsql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const pointTransactionColumns = `id, actor_id, type, amount, balance_before, balance_after, reason, product_id, product_name, product_cost, created_at`

func scanPointTransaction(row interface{ Scan(...any) error }) (PointTransaction, error) {
	var i PointTransaction
	err := row.Scan(
		&i.ID,
		&i.ActorID,
		&i.Type,
		&i.Amount,
		&i.BalanceBefore,
		&i.BalanceAfter,
		&i.Reason,
		&i.ProductID,
		&i.ProductName,
		&i.ProductCost,
		&i.CreatedAt,
	)
	return i, err
}

const insertPointTransaction = `-- name: InsertPointTransaction :exec
INSERT INTO point_transactions (id, actor_id, type, amount, balance_before, balance_after, reason, product_id, product_name, product_cost, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type InsertPointTransactionParams struct {
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

func (q *Queries) InsertPointTransaction(ctx context.Context, db DBTX, arg InsertPointTransactionParams) error {
	_, err := db.Exec(ctx, insertPointTransaction,
		arg.ID,
		arg.ActorID,
		arg.Type,
		arg.Amount,
		arg.BalanceBefore,
		arg.BalanceAfter,
		arg.Reason,
		arg.ProductID,
		arg.ProductName,
		arg.ProductCost,
		arg.CreatedAt,
	)
	return err
}

const listPointTransactionsFirstPage = `-- name: ListPointTransactionsFirstPage :many
SELECT ` + pointTransactionColumns + ` FROM point_transactions
WHERE ($1::uuid IS NULL OR actor_id = $1)
  AND ($2::text IS NULL OR type = $2)
  AND ($3::timestamptz IS NULL OR created_at >= $3)
  AND ($4::timestamptz IS NULL OR created_at < $4)
ORDER BY created_at DESC, id DESC
LIMIT $5
`

type ListPointTransactionsFirstPageParams struct {
	ActorID pgtype.UUID
	Type    pgtype.Text
	From    pgtype.Timestamptz
	To      pgtype.Timestamptz
	Limit   int32
}

func (q *Queries) ListPointTransactionsFirstPage(ctx context.Context, db DBTX, arg ListPointTransactionsFirstPageParams) ([]PointTransaction, error) {
	rows, err := db.Query(ctx, listPointTransactionsFirstPage,
		arg.ActorID,
		arg.Type,
		arg.From,
		arg.To,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PointTransaction{}
	for rows.Next() {
		i, err := scanPointTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPointTransactionsKeyset = `-- name: ListPointTransactionsKeyset :many
SELECT ` + pointTransactionColumns + ` FROM point_transactions
WHERE ($1::uuid IS NULL OR actor_id = $1)
  AND ($2::text IS NULL OR type = $2)
  AND ($3::timestamptz IS NULL OR created_at >= $3)
  AND ($4::timestamptz IS NULL OR created_at < $4)
  AND (created_at, id) < ($5, $6)
ORDER BY created_at DESC, id DESC
LIMIT $7
`

type ListPointTransactionsKeysetParams struct {
	ActorID       pgtype.UUID
	Type          pgtype.Text
	From          pgtype.Timestamptz
	To            pgtype.Timestamptz
	LastCreatedAt pgtype.Timestamptz
	LastID        uuid.UUID
	Limit         int32
}

func (q *Queries) ListPointTransactionsKeyset(ctx context.Context, db DBTX, arg ListPointTransactionsKeysetParams) ([]PointTransaction, error) {
	rows, err := db.Query(ctx, listPointTransactionsKeyset,
		arg.ActorID,
		arg.Type,
		arg.From,
		arg.To,
		arg.LastCreatedAt,
		arg.LastID,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PointTransaction{}
	for rows.Next() {
		i, err := scanPointTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const pointTransactionStats = `-- name: PointTransactionStats :one
SELECT
    count(*) FILTER (WHERE type = 'redemption')                           AS redemption_count,
    count(*) FILTER (WHERE type = 'credit')                               AS credit_count,
    count(*) FILTER (WHERE type = 'debit')                                AS debit_count,
    count(*) FILTER (WHERE type = 'adjustment')                           AS adjustment_count,
    COALESCE(sum(amount) FILTER (WHERE amount > 0), 0)::bigint            AS total_earned,
    COALESCE(-sum(amount) FILTER (WHERE type = 'redemption'), 0)::bigint  AS total_redeemed,
    count(*) FILTER (WHERE created_at >= $2)                              AS recent_count
FROM point_transactions
WHERE ($1::uuid IS NULL OR actor_id = $1)
`

type PointTransactionStatsRow struct {
	RedemptionCount int64
	CreditCount     int64
	DebitCount      int64
	AdjustmentCount int64
	TotalEarned     int64
	TotalRedeemed   int64
	RecentCount     int64
}

func (q *Queries) PointTransactionStats(ctx context.Context, db DBTX, actorID pgtype.UUID, since pgtype.Timestamptz) (PointTransactionStatsRow, error) {
	var i PointTransactionStatsRow
	err := db.QueryRow(ctx, pointTransactionStats, actorID, since).Scan(
		&i.RedemptionCount,
		&i.CreditCount,
		&i.DebitCount,
		&i.AdjustmentCount,
		&i.TotalEarned,
		&i.TotalRedeemed,
		&i.RecentCount,
	)
	return i, err
}

const prunePointTransactionsBefore = `-- name: PrunePointTransactionsBefore :execrows
DELETE FROM point_transactions WHERE created_at < $1
`

func (q *Queries) PrunePointTransactionsBefore(ctx context.Context, db DBTX, cutoff pgtype.Timestamptz) (int64, error) {
	tag, err := db.Exec(ctx, prunePointTransactionsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const prunePointTransactionsOverflow = `-- name: PrunePointTransactionsOverflow :execrows
DELETE FROM point_transactions
WHERE id IN (
    SELECT id FROM point_transactions
    ORDER BY created_at DESC, id DESC
    OFFSET $1
)
`

// PrunePointTransactionsOverflow keeps only the newest keep entries.
func (q *Queries) PrunePointTransactionsOverflow(ctx context.Context, db DBTX, keep int64) (int64, error) {
	tag, err := db.Exec(ctx, prunePointTransactionsOverflow, keep)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
