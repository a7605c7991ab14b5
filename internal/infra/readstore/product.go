package readstore

import (
	"context"
	"time"

	"techpoints/internal/infra"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/pkg/pgconv"
	"techpoints/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ProductViewQueries interface {
	FindProductByID(ctx context.Context, db pgsql.DBTX, id uuid.UUID) (pgsql.Product, error)
	ListProductsFirstPage(ctx context.Context, db pgsql.DBTX, arg pgsql.ListProductsFirstPageParams) ([]pgsql.Product, error)
	ListProductsKeyset(ctx context.Context, db pgsql.DBTX, arg pgsql.ListProductsKeysetParams) ([]pgsql.Product, error)
}

type ProductReadStore struct {
	queries ProductViewQueries
	db      pgsql.DBTX
	timeout time.Duration
}

func NewProductReadStore(queries ProductViewQueries, db pgsql.DBTX, timeout time.Duration) *ProductReadStore {
	return &ProductReadStore{
		queries: queries,
		db:      db,
		timeout: timeout,
	}
}

func (r *ProductReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ProductView, error) {
	ctx, cancel := infra.WithCallTimeout(ctx, r.timeout)
	defer cancel()

	row, err := r.queries.FindProductByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get product view by id", err)
	}
	return toProductView(row), nil
}

func (r *ProductReadStore) FindFirstPage(ctx context.Context, filters queries.ProductFilters, limit int32) ([]*queries.ProductView, error) {
	ctx, cancel := infra.WithCallTimeout(ctx, r.timeout)
	defer cancel()

	params := pgsql.ListProductsFirstPageParams{
		StoreID:  pgconv.UUIDPtrToPgtype(filters.StoreID),
		Category: pgconv.StringPtrToPgtype(filters.Category),
		InStock:  boolPtrToPgtype(filters.InStock),
		Query:    pgconv.StringPtrToPgtype(filters.Query),
		Limit:    limit,
	}
	rows, err := r.queries.ListProductsFirstPage(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list products", err)
	}
	return toProductViews(rows), nil
}

func (r *ProductReadStore) FindKeyset(ctx context.Context, filters queries.ProductFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ProductView, error) {
	ctx, cancel := infra.WithCallTimeout(ctx, r.timeout)
	defer cancel()

	params := pgsql.ListProductsKeysetParams{
		StoreID:       pgconv.UUIDPtrToPgtype(filters.StoreID),
		Category:      pgconv.StringPtrToPgtype(filters.Category),
		InStock:       boolPtrToPgtype(filters.InStock),
		Query:         pgconv.StringPtrToPgtype(filters.Query),
		LastCreatedAt: pgconv.TimeToPgtype(lastCreatedAt),
		LastID:        lastID,
		Limit:         limit,
	}
	rows, err := r.queries.ListProductsKeyset(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list products by keyset", err)
	}
	return toProductViews(rows), nil
}

func toProductViews(rows []pgsql.Product) []*queries.ProductView {
	out := make([]*queries.ProductView, 0, len(rows))
	for _, row := range rows {
		out = append(out, toProductView(row))
	}
	return out
}

func toProductView(row pgsql.Product) *queries.ProductView {
	return &queries.ProductView{
		ID:          row.ID,
		StoreID:     row.StoreID,
		Name:        row.Name,
		Description: row.Description,
		Category:    row.Category,
		PriceCents:  row.PriceCents,
		CostPoints:  row.CostPoints,
		Stock:       row.Stock,
		ImageURL:    row.ImageUrl,
		CreatedAt:   pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:   pgconv.TimeFromPgtype(row.UpdatedAt),
	}
}

func boolPtrToPgtype(b *bool) pgtype.Bool {
	if b == nil {
		return pgtype.Bool{Valid: false}
	}
	return pgtype.Bool{Bool: *b, Valid: true}
}
