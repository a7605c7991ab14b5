package queries

import (
	"context"

	"techpoints/internal/domain/account"
	"techpoints/internal/infra"
	"techpoints/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrAccountInactive = errs.New("account inactive")

type AccountQueries interface {
	GetCurrentAccount(ctx context.Context, accountID uuid.UUID) (*AccountView, error)
	GetBalance(ctx context.Context, actorID uuid.UUID, actorRole account.Role, accountID uuid.UUID) (*BalanceView, error)
}

type AccountReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AccountView, error)
}

type accountQueriesImpl struct {
	readStore AccountReadStore
}

func NewAccountQueries(readStore AccountReadStore) AccountQueries {
	return &accountQueriesImpl{
		readStore: readStore,
	}
}

func (q *accountQueriesImpl) GetCurrentAccount(ctx context.Context, accountID uuid.UUID) (*AccountView, error) {
	acc, err := q.readStore.FindByID(ctx, accountID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrAccountNotFound
		}
		return nil, err
	}

	if !acc.IsActive {
		return nil, ErrAccountInactive
	}

	return acc, nil
}

func (q *accountQueriesImpl) GetBalance(ctx context.Context, actorID uuid.UUID, actorRole account.Role, accountID uuid.UUID) (*BalanceView, error) {
	if actorID != accountID && actorRole != account.RoleAdmin {
		return nil, errs.ErrNotAuthorized
	}

	acc, err := q.readStore.FindByID(ctx, accountID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrAccountNotFound
		}
		return nil, err
	}

	return &BalanceView{
		AccountID:     acc.ID,
		PointsBalance: acc.PointsBalance,
		Degraded:      acc.Degraded,
	}, nil
}
