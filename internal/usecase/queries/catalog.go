package queries

import (
	"context"
	"time"

	"techpoints/internal/infra"
	"techpoints/internal/pkg/errs"

	"github.com/google/uuid"
)

type ProductReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
	FindFirstPage(ctx context.Context, filters ProductFilters, limit int32) ([]*ProductView, error)
	FindKeyset(ctx context.Context, filters ProductFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*ProductView, error)
}

type CatalogQueries interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error)
	ListProducts(ctx context.Context, filters ProductFilters, cursor *Cursor, limit int) ([]*ProductView, *Cursor, error)
}

type catalogQueriesImpl struct {
	repo ProductReadStore
}

func NewCatalogQueries(repo ProductReadStore) CatalogQueries {
	return &catalogQueriesImpl{repo: repo}
}

func (q *catalogQueriesImpl) GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	p, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (q *catalogQueriesImpl) ListProducts(ctx context.Context, filters ProductFilters, cursor *Cursor, limit int) ([]*ProductView, *Cursor, error) {
	limit = ValidateLimit(limit)
	var rows []*ProductView
	var err error
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
