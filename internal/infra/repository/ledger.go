package repository

import (
	"context"
	"time"

	"techpoints/internal/domain/ledger"
	"techpoints/internal/infra"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/infra/repository/converter"
	"techpoints/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type LedgerWriteQueries interface {
	InsertPointTransaction(ctx context.Context, db pgsql.DBTX, arg pgsql.InsertPointTransactionParams) error
	PrunePointTransactionsBefore(ctx context.Context, db pgsql.DBTX, cutoff pgtype.Timestamptz) (int64, error)
	PrunePointTransactionsOverflow(ctx context.Context, db pgsql.DBTX, keep int64) (int64, error)
}

type LedgerRepository struct {
	queries LedgerWriteQueries
	db      pgsql.DBTX
}

func NewLedgerRepository(queries LedgerWriteQueries, db pgsql.DBTX) *LedgerRepository {
	return &LedgerRepository{
		queries: queries,
		db:      db,
	}
}

func (r *LedgerRepository) Append(ctx context.Context, e *ledger.Entry) error {
	if err := e.Consistent(); err != nil {
		return err
	}
	if err := r.queries.InsertPointTransaction(ctx, r.db, converter.EntryToInsertParams(e)); err != nil {
		return infra.WrapRepoErr("failed to append point transaction", err)
	}
	return nil
}

// Prune drops entries older than the age bound, then the oldest entries past the count bound.
func (r *LedgerRepository) Prune(ctx context.Context, policy ledger.RetentionPolicy, now time.Time) (int64, error) {
	var removed int64

	if cutoff, ok := policy.Cutoff(now); ok {
		n, err := r.queries.PrunePointTransactionsBefore(ctx, r.db, pgconv.TimeToPgtype(cutoff))
		if err != nil {
			return removed, infra.WrapRepoErr("failed to prune expired point transactions", err)
		}
		removed += n
	}

	if policy.MaxEntries > 0 {
		n, err := r.queries.PrunePointTransactionsOverflow(ctx, r.db, int64(policy.MaxEntries))
		if err != nil {
			return removed, infra.WrapRepoErr("failed to prune overflowing point transactions", err)
		}
		removed += n
	}

	return removed, nil
}
