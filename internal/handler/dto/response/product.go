package response

import (
	"time"

	"techpoints/internal/usecase/commands"
	"techpoints/internal/usecase/queries"

	"github.com/google/uuid"
)

type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	CostPoints  int64     `json:"cost_points"`
	Stock       int64     `json:"stock"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Degraded    bool      `json:"degraded,omitempty"`
}

type ProductListResponse struct {
	Products   []*ProductResponse `json:"products"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

func FromProductView(v *queries.ProductView) *ProductResponse {
	return copyInto[ProductResponse](v)
}

func FromProductResult(r *commands.ProductResult) *ProductResponse {
	resp := FromProductView(r.Product)
	resp.Degraded = r.Degraded
	return resp
}

func FromProductList(items []*queries.ProductView, next *queries.Cursor) *ProductListResponse {
	resp := &ProductListResponse{Products: copyList[ProductResponse](items)}
	if next != nil {
		resp.NextCursor = next.After
	}
	return resp
}
