package readstore

import (
	"context"
	"time"

	"techpoints/internal/domain/ledger"
	"techpoints/internal/infra"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/pkg/pgconv"
	"techpoints/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type TransactionViewQueries interface {
	ListPointTransactionsFirstPage(ctx context.Context, db pgsql.DBTX, arg pgsql.ListPointTransactionsFirstPageParams) ([]pgsql.PointTransaction, error)
	ListPointTransactionsKeyset(ctx context.Context, db pgsql.DBTX, arg pgsql.ListPointTransactionsKeysetParams) ([]pgsql.PointTransaction, error)
	PointTransactionStats(ctx context.Context, db pgsql.DBTX, actorID pgtype.UUID, since pgtype.Timestamptz) (pgsql.PointTransactionStatsRow, error)
}

type TransactionReadStore struct {
	queries TransactionViewQueries
	db      pgsql.DBTX
	timeout time.Duration
}

func NewTransactionReadStore(queries TransactionViewQueries, db pgsql.DBTX, timeout time.Duration) *TransactionReadStore {
	return &TransactionReadStore{
		queries: queries,
		db:      db,
		timeout: timeout,
	}
}

func (r *TransactionReadStore) FindFirstPage(ctx context.Context, filters queries.TransactionFilters, limit int32) ([]*queries.TransactionView, error) {
	ctx, cancel := infra.WithCallTimeout(ctx, r.timeout)
	defer cancel()

	params := pgsql.ListPointTransactionsFirstPageParams{
		ActorID: pgconv.UUIDPtrToPgtype(filters.ActorID),
		Type:    pgconv.StringPtrToPgtype(filters.Type),
		From:    pgconv.TimePtrToPgtype(filters.From),
		To:      pgconv.TimePtrToPgtype(filters.To),
		Limit:   limit,
	}
	rows, err := r.queries.ListPointTransactionsFirstPage(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list point transactions", err)
	}
	return toTransactionViews(rows), nil
}

func (r *TransactionReadStore) FindKeyset(ctx context.Context, filters queries.TransactionFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.TransactionView, error) {
	ctx, cancel := infra.WithCallTimeout(ctx, r.timeout)
	defer cancel()

	params := pgsql.ListPointTransactionsKeysetParams{
		ActorID:       pgconv.UUIDPtrToPgtype(filters.ActorID),
		Type:          pgconv.StringPtrToPgtype(filters.Type),
		From:          pgconv.TimePtrToPgtype(filters.From),
		To:            pgconv.TimePtrToPgtype(filters.To),
		LastCreatedAt: pgconv.TimeToPgtype(lastCreatedAt),
		LastID:        lastID,
		Limit:         limit,
	}
	rows, err := r.queries.ListPointTransactionsKeyset(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list point transactions by keyset", err)
	}
	return toTransactionViews(rows), nil
}

func (r *TransactionReadStore) Stats(ctx context.Context, actorID *uuid.UUID, since time.Time) (*queries.TransactionStats, error) {
	ctx, cancel := infra.WithCallTimeout(ctx, r.timeout)
	defer cancel()

	row, err := r.queries.PointTransactionStats(ctx, r.db, pgconv.UUIDPtrToPgtype(actorID), pgconv.TimeToPgtype(since))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to compute point transaction stats", err)
	}

	return &queries.TransactionStats{
		CountsByType: map[string]int64{
			ledger.TypeRedemption.String(): row.RedemptionCount,
			ledger.TypeCredit.String():     row.CreditCount,
			ledger.TypeDebit.String():      row.DebitCount,
			ledger.TypeAdjustment.String(): row.AdjustmentCount,
		},
		TotalEarned:   row.TotalEarned,
		TotalRedeemed: row.TotalRedeemed,
		RecentCount:   row.RecentCount,
		Since:         since,
	}, nil
}

func toTransactionViews(rows []pgsql.PointTransaction) []*queries.TransactionView {
	out := make([]*queries.TransactionView, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTransactionView(row))
	}
	return out
}

func toTransactionView(row pgsql.PointTransaction) *queries.TransactionView {
	v := &queries.TransactionView{
		ID:            row.ID,
		ActorID:       row.ActorID,
		Type:          row.Type,
		Amount:        row.Amount,
		BalanceBefore: row.BalanceBefore,
		BalanceAfter:  row.BalanceAfter,
		Reason:        row.Reason,
		ProductID:     pgconv.UUIDPtrFromPgtype(row.ProductID),
		ProductName:   pgconv.StringPtrFromPgtype(row.ProductName),
		CreatedAt:     pgconv.TimeFromPgtype(row.CreatedAt),
	}
	if row.ProductCost.Valid {
		cost := row.ProductCost.Int64
		v.ProductCost = &cost
	}
	return v
}
