package request

import "github.com/google/uuid"

type RedeemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}
