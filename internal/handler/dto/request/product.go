package request

import (
	"strings"

	"techpoints/internal/domain/product"
	"techpoints/internal/pkg/patch"
)

type ProductRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
	Category    string `json:"category" binding:"max=50"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int64  `json:"stock"`
}

func (r ProductRequest) ToDomain() product.Attributes {
	return product.Attributes{
		Name:        r.Name,
		Description: strings.TrimSpace(r.Description),
		Category:    r.Category,
		PriceCents:  r.PriceCents,
		Stock:       r.Stock,
	}
}

// ProductPatchRequest carries only the fields the caller wants changed.
type ProductPatchRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Category    *string `json:"category" binding:"omitempty,max=50"`
	PriceCents  *int64  `json:"price_cents"`
	Stock       *int64  `json:"stock"`
}

func (r ProductPatchRequest) ApplyTo(current product.Attributes) product.Attributes {
	description := current.Description
	if r.Description != nil {
		description = strings.TrimSpace(*r.Description)
	}
	return product.Attributes{
		Name:        patch.Coalesce(r.Name, current.Name),
		Description: description,
		Category:    patch.Coalesce(r.Category, current.Category),
		PriceCents:  patch.Coalesce(r.PriceCents, current.PriceCents),
		Stock:       patch.Coalesce(r.Stock, current.Stock),
		ImageURL:    current.ImageURL,
	}
}

// Changes reports whether applying the patch would alter current.
func (r ProductPatchRequest) Changes(current product.Attributes) bool {
	return patch.Changed(r.Name, current.Name) ||
		patch.Changed(r.Description, current.Description) ||
		patch.Changed(r.Category, current.Category) ||
		patch.Changed(r.PriceCents, current.PriceCents) ||
		patch.Changed(r.Stock, current.Stock)
}
