package converter

import (
	"techpoints/internal/domain/ledger"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func EntryToInsertParams(e *ledger.Entry) pgsql.InsertPointTransactionParams {
	params := pgsql.InsertPointTransactionParams{
		ID:            e.ID(),
		ActorID:       e.ActorID(),
		Type:          e.Type().String(),
		Amount:        e.Amount(),
		BalanceBefore: e.BalanceBefore(),
		BalanceAfter:  e.BalanceAfter(),
		Reason:        e.Reason(),
		CreatedAt:     pgconv.TimeToPgtype(e.CreatedAt()),
	}
	if snap := e.Product(); snap != nil {
		params.ProductID = pgconv.UUIDToPgtype(snap.ID)
		params.ProductName = pgconv.StringToPgtype(snap.Name)
		params.ProductCost = pgtype.Int8{Int64: snap.CostPoints, Valid: true}
	}
	return params
}

func EntryFromRow(row pgsql.PointTransaction) *ledger.Entry {
	var snap *ledger.ProductSnapshot
	if row.ProductID.Valid {
		snap = &ledger.ProductSnapshot{
			ID:         uuid.UUID(row.ProductID.Bytes),
			Name:       row.ProductName.String,
			CostPoints: row.ProductCost.Int64,
		}
	}
	return ledger.ReconstructEntry(
		row.ID,
		row.ActorID,
		ledger.EntryType(row.Type),
		row.Amount,
		row.BalanceBefore,
		row.BalanceAfter,
		row.Reason,
		snap,
		pgconv.TimeFromPgtype(row.CreatedAt),
	)
}
