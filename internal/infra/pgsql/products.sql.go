package pgsql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, store_id, name, description, category, price_cents, cost_points, stock, image_url, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.StoreID,
		&i.Name,
		&i.Description,
		&i.Category,
		&i.PriceCents,
		&i.CostPoints,
		&i.Stock,
		&i.ImageUrl,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createProduct = `-- name: CreateProduct :exec
INSERT INTO products (id, store_id, name, description, category, price_cents, cost_points, stock, image_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreateProductParams struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	Name        string
	Description string
	Category    string
	PriceCents  int64
	CostPoints  int64
	Stock       int64
	ImageUrl    string
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

func (q *Queries) CreateProduct(ctx context.Context, db DBTX, arg CreateProductParams) error {
	_, err := db.Exec(ctx, createProduct,
		arg.ID,
		arg.StoreID,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.PriceCents,
		arg.CostPoints,
		arg.Stock,
		arg.ImageUrl,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const findProductByID = `-- name: FindProductByID :one
SELECT ` + productColumns + ` FROM products WHERE id = $1
`

func (q *Queries) FindProductByID(ctx context.Context, db DBTX, id uuid.UUID) (Product, error) {
	return scanProduct(db.QueryRow(ctx, findProductByID, id))
}

const findProductByIDForUpdate = `-- name: FindProductByIDForUpdate :one
SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE
`

// FindProductByIDForUpdate holds the row lock until the transaction ends.
func (q *Queries) FindProductByIDForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (Product, error) {
	return scanProduct(db.QueryRow(ctx, findProductByIDForUpdate, id))
}

const updateProduct = `-- name: UpdateProduct :execrows
UPDATE products
SET name = $2, description = $3, category = $4, price_cents = $5, cost_points = $6,
    stock = $7, image_url = $8, updated_at = $9
WHERE id = $1
`

type UpdateProductParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	Category    string
	PriceCents  int64
	CostPoints  int64
	Stock       int64
	ImageUrl    string
	UpdatedAt   pgtype.Timestamptz
}

func (q *Queries) UpdateProduct(ctx context.Context, db DBTX, arg UpdateProductParams) (int64, error) {
	tag, err := db.Exec(ctx, updateProduct,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.PriceCents,
		arg.CostPoints,
		arg.Stock,
		arg.ImageUrl,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteProduct = `-- name: DeleteProduct :execrows
DELETE FROM products WHERE id = $1
`

func (q *Queries) DeleteProduct(ctx context.Context, db DBTX, id uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const decrementProductStock = `-- name: DecrementProductStock :one
UPDATE products
SET stock = stock - 1, updated_at = now()
WHERE id = $1 AND stock > 0
RETURNING stock
`

// DecrementProductStock returns pgx.ErrNoRows when the product has no stock left.
func (q *Queries) DecrementProductStock(ctx context.Context, db DBTX, id uuid.UUID) (int64, error) {
	var stock int64
	err := db.QueryRow(ctx, decrementProductStock, id).Scan(&stock)
	return stock, err
}

const listProductsFirstPage = `-- name: ListProductsFirstPage :many
SELECT ` + productColumns + ` FROM products
WHERE ($1::uuid IS NULL OR store_id = $1)
  AND ($2::text IS NULL OR category = $2)
  AND ($3::boolean IS NULL OR NOT $3 OR stock > 0)
  AND ($4::text IS NULL OR name ILIKE '%' || $4 || '%')
ORDER BY created_at DESC, id DESC
LIMIT $5
`

type ListProductsFirstPageParams struct {
	StoreID  pgtype.UUID
	Category pgtype.Text
	InStock  pgtype.Bool
	Query    pgtype.Text
	Limit    int32
}

func (q *Queries) ListProductsFirstPage(ctx context.Context, db DBTX, arg ListProductsFirstPageParams) ([]Product, error) {
	rows, err := db.Query(ctx, listProductsFirstPage,
		arg.StoreID,
		arg.Category,
		arg.InStock,
		arg.Query,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		i, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listProductsKeyset = `-- name: ListProductsKeyset :many
SELECT ` + productColumns + ` FROM products
WHERE ($1::uuid IS NULL OR store_id = $1)
  AND ($2::text IS NULL OR category = $2)
  AND ($3::boolean IS NULL OR NOT $3 OR stock > 0)
  AND ($4::text IS NULL OR name ILIKE '%' || $4 || '%')
  AND (created_at, id) < ($5, $6)
ORDER BY created_at DESC, id DESC
LIMIT $7
`

type ListProductsKeysetParams struct {
	StoreID       pgtype.UUID
	Category      pgtype.Text
	InStock       pgtype.Bool
	Query         pgtype.Text
	LastCreatedAt pgtype.Timestamptz
	LastID        uuid.UUID
	Limit         int32
}

func (q *Queries) ListProductsKeyset(ctx context.Context, db DBTX, arg ListProductsKeysetParams) ([]Product, error) {
	rows, err := db.Query(ctx, listProductsKeyset,
		arg.StoreID,
		arg.Category,
		arg.InStock,
		arg.Query,
		arg.LastCreatedAt,
		arg.LastID,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		i, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
