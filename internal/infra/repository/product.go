package repository

import (
	"context"

	"techpoints/internal/domain/product"
	"techpoints/internal/infra"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/infra/repository/converter"
	"techpoints/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductWriteQueries interface {
	CreateProduct(ctx context.Context, db pgsql.DBTX, arg pgsql.CreateProductParams) error
	FindProductByID(ctx context.Context, db pgsql.DBTX, id uuid.UUID) (pgsql.Product, error)
	FindProductByIDForUpdate(ctx context.Context, db pgsql.DBTX, id uuid.UUID) (pgsql.Product, error)
	UpdateProduct(ctx context.Context, db pgsql.DBTX, arg pgsql.UpdateProductParams) (int64, error)
	DeleteProduct(ctx context.Context, db pgsql.DBTX, id uuid.UUID) (int64, error)
	DecrementProductStock(ctx context.Context, db pgsql.DBTX, id uuid.UUID) (int64, error)
}

type ProductRepository struct {
	queries ProductWriteQueries
	db      pgsql.DBTX
}

func NewProductRepository(queries ProductWriteQueries, db pgsql.DBTX) *ProductRepository {
	return &ProductRepository{
		queries: queries,
		db:      db,
	}
}

func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	row, err := r.queries.FindProductByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find product by ID", err)
	}
	return converter.ProductFromRow(row), nil
}

func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	row, err := r.queries.FindProductByIDForUpdate(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock product", err)
	}
	return converter.ProductFromRow(row), nil
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	if err := r.queries.CreateProduct(ctx, r.db, converter.ProductToCreateParams(p)); err != nil {
		return infra.WrapRepoErr("failed to create product", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	n, err := r.queries.UpdateProduct(ctx, r.db, converter.ProductToUpdateParams(p))
	if err != nil {
		return infra.WrapRepoErr("failed to update product", err)
	}
	if n == 0 {
		return infra.WrapRepoErr("product not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.queries.DeleteProduct(ctx, r.db, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete product", err)
	}
	if n == 0 {
		return infra.WrapRepoErr("product not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *ProductRepository) DecrementStock(ctx context.Context, id uuid.UUID) (int64, bool, error) {
	stock, err := r.queries.DecrementProductStock(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, false, nil
		}
		return 0, false, infra.WrapRepoErr("failed to decrement stock", err)
	}
	return stock, true, nil
}
