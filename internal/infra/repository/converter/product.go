package converter

import (
	"techpoints/internal/domain/product"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/pkg/pgconv"
)

func ProductToCreateParams(p *product.Product) pgsql.CreateProductParams {
	return pgsql.CreateProductParams{
		ID:          p.ID(),
		StoreID:     p.StoreID(),
		Name:        p.Name(),
		Description: p.Description(),
		Category:    p.Category(),
		PriceCents:  p.PriceCents(),
		CostPoints:  p.CostPoints(),
		Stock:       p.Stock(),
		ImageUrl:    p.ImageURL(),
		CreatedAt:   pgconv.TimeToPgtype(p.CreatedAt()),
		UpdatedAt:   pgconv.TimeToPgtype(p.UpdatedAt()),
	}
}

func ProductToUpdateParams(p *product.Product) pgsql.UpdateProductParams {
	return pgsql.UpdateProductParams{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Category:    p.Category(),
		PriceCents:  p.PriceCents(),
		CostPoints:  p.CostPoints(),
		Stock:       p.Stock(),
		ImageUrl:    p.ImageURL(),
		UpdatedAt:   pgconv.TimeToPgtype(p.UpdatedAt()),
	}
}

func ProductFromRow(row pgsql.Product) *product.Product {
	return product.ReconstructProduct(
		row.ID,
		row.StoreID,
		row.Name,
		row.Description,
		row.Category,
		row.PriceCents,
		row.CostPoints,
		row.Stock,
		row.ImageUrl,
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	)
}
