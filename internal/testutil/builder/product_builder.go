//go:build unit || e2e

package builder

import (
	"time"

	"techpoints/internal/domain/product"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ProductBuilder struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	Name        string
	Description string
	Category    string
	PriceCents  int64
	Stock       int64
	ImageURL    string
	CreatedAt   time.Time
}

func NewProductBuilder() *ProductBuilder {
	return &ProductBuilder{
		ID:          uuid.New(),
		StoreID:     uuid.New(),
		Name:        "Wireless Headphones",
		Description: "Over-ear, noise cancelling",
		Category:    "audio",
		PriceCents:  500,
		Stock:       3,
		CreatedAt:   time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
	}
}

func (b *ProductBuilder) With(mutate func(*ProductBuilder)) *ProductBuilder {
	mutate(b)
	return b
}

func (b *ProductBuilder) costPoints() int64 {
	cost, err := product.CostForPrice(b.PriceCents)
	if err != nil {
		return 0
	}
	return cost
}

// Build methods
func (b *ProductBuilder) BuildDomain() *product.Product {
	return product.ReconstructProduct(
		b.ID, b.StoreID,
		b.Name, b.Description, b.Category,
		b.PriceCents, b.costPoints(), b.Stock,
		b.ImageURL,
		b.CreatedAt, b.CreatedAt,
	)
}

func (b *ProductBuilder) BuildInfra() pgsql.Product {
	return pgsql.Product{
		ID:          b.ID,
		StoreID:     b.StoreID,
		Name:        b.Name,
		Description: b.Description,
		Category:    b.Category,
		PriceCents:  b.PriceCents,
		CostPoints:  b.costPoints(),
		Stock:       b.Stock,
		ImageUrl:    b.ImageURL,
		CreatedAt:   pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
		UpdatedAt:   pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
	}
}

func (b *ProductBuilder) BuildView() *queries.ProductView {
	return &queries.ProductView{
		ID:          b.ID,
		StoreID:     b.StoreID,
		Name:        b.Name,
		Description: b.Description,
		Category:    b.Category,
		PriceCents:  b.PriceCents,
		CostPoints:  b.costPoints(),
		Stock:       b.Stock,
		ImageURL:    b.ImageURL,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.CreatedAt,
	}
}

// Fluent builder methods
func (b *ProductBuilder) WithStore(storeID uuid.UUID) *ProductBuilder {
	b.StoreID = storeID
	return b
}

func (b *ProductBuilder) WithName(name string) *ProductBuilder {
	b.Name = name
	return b
}

func (b *ProductBuilder) WithPrice(priceCents int64) *ProductBuilder {
	b.PriceCents = priceCents
	return b
}

func (b *ProductBuilder) WithStock(stock int64) *ProductBuilder {
	b.Stock = stock
	return b
}

func (b *ProductBuilder) WithCreatedAt(t time.Time) *ProductBuilder {
	b.CreatedAt = t
	return b
}
