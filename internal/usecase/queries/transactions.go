package queries

import (
	"context"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/errs"

	"github.com/google/uuid"
)

type TransactionReadStore interface {
	FindFirstPage(ctx context.Context, filters TransactionFilters, limit int32) ([]*TransactionView, error)
	FindKeyset(ctx context.Context, filters TransactionFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*TransactionView, error)
	Stats(ctx context.Context, actorID *uuid.UUID, since time.Time) (*TransactionStats, error)
}

type TransactionQueries interface {
	List(ctx context.Context, actorID uuid.UUID, actorRole account.Role, filters TransactionFilters, cursor *Cursor, limit int) ([]*TransactionView, *Cursor, error)
	Stats(ctx context.Context, actorID uuid.UUID, actorRole account.Role, target *uuid.UUID, since *time.Time) (*TransactionStats, error)
}

type transactionQueriesImpl struct {
	repo   TransactionReadStore
	clock  clock.Clock
	window time.Duration
}

// NewTransactionQueries builds the log queries. window is the default recency
// window for Stats when the caller gives no explicit start.
func NewTransactionQueries(repo TransactionReadStore, clk clock.Clock, window time.Duration) TransactionQueries {
	return &transactionQueriesImpl{repo: repo, clock: clk, window: window}
}

func (q *transactionQueriesImpl) List(ctx context.Context, actorID uuid.UUID, actorRole account.Role, filters TransactionFilters, cursor *Cursor, limit int) ([]*TransactionView, *Cursor, error) {
	scoped, err := scopeActor(actorID, actorRole, filters.ActorID)
	if err != nil {
		return nil, nil, err
	}
	filters.ActorID = scoped

	if filters.From != nil && filters.To != nil && !filters.From.Before(*filters.To) {
		return nil, nil, ErrInvalidTimeRange
	}

	limit = ValidateLimit(limit)
	var rows []*TransactionView
	if cursor == nil || cursor.After == "" {
		rows, err = q.repo.FindFirstPage(ctx, filters, int32(limit+1))
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, derr
		}
		rows, err = q.repo.FindKeyset(ctx, filters, lastCreatedAt, lastID, int32(limit+1))
	}
	if err != nil {
		return nil, nil, err
	}
	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
		rows = rows[:limit]
	}
	return rows, next, nil
}

func (q *transactionQueriesImpl) Stats(ctx context.Context, actorID uuid.UUID, actorRole account.Role, target *uuid.UUID, since *time.Time) (*TransactionStats, error) {
	scoped, err := scopeActor(actorID, actorRole, target)
	if err != nil {
		return nil, err
	}

	from := q.clock.Now().Add(-q.window)
	if since != nil {
		from = *since
	}

	return q.repo.Stats(ctx, scoped, from)
}

// Customers only ever see their own log; stores and admins may filter freely.
func scopeActor(actorID uuid.UUID, actorRole account.Role, requested *uuid.UUID) (*uuid.UUID, error) {
	switch actorRole {
	case account.RoleAdmin, account.RoleStore:
		return requested, nil
	case account.RoleCustomer:
		if requested != nil && *requested != actorID {
			return nil, errs.ErrNotAuthorized
		}
		own := actorID
		return &own, nil
	default:
		return nil, errs.ErrNotAuthorized
	}
}
