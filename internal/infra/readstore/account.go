package readstore

import (
	"context"
	"time"

	"techpoints/internal/infra"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/pkg/pgconv"
	"techpoints/internal/usecase/queries"

	"github.com/google/uuid"
)

type AccountReadQueries interface {
	FindAccountByID(ctx context.Context, db pgsql.DBTX, id uuid.UUID) (pgsql.Account, error)
}

type AccountReadStore struct {
	queries AccountReadQueries
	db      pgsql.DBTX
	timeout time.Duration
}

func NewAccountReadStore(queries AccountReadQueries, db pgsql.DBTX, timeout time.Duration) *AccountReadStore {
	return &AccountReadStore{
		queries: queries,
		db:      db,
		timeout: timeout,
	}
}

func (r *AccountReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AccountView, error) {
	ctx, cancel := infra.WithCallTimeout(ctx, r.timeout)
	defer cancel()

	row, err := r.queries.FindAccountByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("account not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find account by ID", err)
	}

	return toAccountView(row), nil
}

func toAccountView(row pgsql.Account) *queries.AccountView {
	return &queries.AccountView{
		ID:            row.ID,
		Email:         row.Email,
		Role:          row.Role,
		DisplayName:   row.DisplayName,
		PointsBalance: row.PointsBalance,
		IsActive:      row.IsActive,
		LastLogin:     pgconv.TimePtrFromPgtype(row.LastLogin),
		CreatedAt:     pgconv.TimeFromPgtype(row.CreatedAt),
	}
}
