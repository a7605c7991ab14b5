package repository

import (
	"context"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/infra"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/infra/repository/converter"
	"techpoints/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type AccountWriteQueries interface {
	CreateAccount(ctx context.Context, db pgsql.DBTX, arg pgsql.CreateAccountParams) error
	FindAccountByID(ctx context.Context, db pgsql.DBTX, id uuid.UUID) (pgsql.Account, error)
	FindAccountByEmail(ctx context.Context, db pgsql.DBTX, email string) (pgsql.Account, error)
	DebitAccountPoints(ctx context.Context, db pgsql.DBTX, id uuid.UUID, amount int64) (int64, error)
	FindAccountBalance(ctx context.Context, db pgsql.DBTX, id uuid.UUID) (int64, error)
	CreditAccountPoints(ctx context.Context, db pgsql.DBTX, id uuid.UUID, amount int64) (int64, error)
	UpdateAccountLastLogin(ctx context.Context, db pgsql.DBTX, id uuid.UUID, at pgtype.Timestamptz) error
	CountAccounts(ctx context.Context, db pgsql.DBTX) (int64, error)
}

type AccountRepository struct {
	queries AccountWriteQueries
	db      pgsql.DBTX
}

func NewAccountRepository(queries AccountWriteQueries, db pgsql.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: queries,
		db:      db,
	}
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	row, err := r.queries.FindAccountByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("account not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find account by ID", err)
	}
	return converter.AccountFromRow(row), nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	row, err := r.queries.FindAccountByEmail(ctx, r.db, email)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("account not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find account by email", err)
	}
	return converter.AccountFromRow(row), nil
}

func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	if err := r.queries.CreateAccount(ctx, r.db, converter.AccountToCreateParams(acc)); err != nil {
		return infra.WrapRepoErr("failed to create account", err)
	}
	return nil
}

// DebitPoints reports the balance that refused the debit when ok is false. It
// is read in a fresh statement so it reflects whatever commit beat this one.
func (r *AccountRepository) DebitPoints(ctx context.Context, id uuid.UUID, amount int64) (int64, bool, error) {
	balance, err := r.queries.DebitAccountPoints(ctx, r.db, id, amount)
	if err == nil {
		return balance, true, nil
	}
	if !pgconv.IsNoRows(err) {
		return 0, false, infra.WrapRepoErr("failed to debit points", err)
	}

	current, err := r.queries.FindAccountBalance(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, false, nil
		}
		return 0, false, infra.WrapRepoErr("failed to read balance after refused debit", err)
	}
	return current, false, nil
}

func (r *AccountRepository) CreditPoints(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	balance, err := r.queries.CreditAccountPoints(ctx, r.db, id, amount)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, infra.WrapRepoErr("account not found", err, infra.KindNotFound)
		}
		return 0, infra.WrapRepoErr("failed to credit points", err)
	}
	return balance, nil
}

func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := r.queries.UpdateAccountLastLogin(ctx, r.db, id, pgconv.TimeToPgtype(at)); err != nil {
		return infra.WrapRepoErr("failed to update account last login", err)
	}
	return nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountAccounts(ctx, r.db)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count accounts", err)
	}
	return n, nil
}
