package redemption

import (
	"errors"
	"fmt"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/product"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrOutOfStock       = product.ErrOutOfStock
)

// InsufficientPointsError reports how far the customer is from affording the product.
type InsufficientPointsError struct {
	Balance int64
	Cost    int64
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: balance %d, cost %d, short by %d", e.Balance, e.Cost, e.Shortfall())
}

func (e *InsufficientPointsError) Shortfall() int64 {
	return e.Cost - e.Balance
}

func (e *InsufficientPointsError) Unwrap() error {
	return account.ErrInsufficientPoints
}

// OutOfStockError names the product that ran out and the stock it was found with.
type OutOfStockError struct {
	ProductID uuid.UUID
	Stock     int64
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s is out of stock (stock %d)", e.ProductID, e.Stock)
}

func (e *OutOfStockError) Unwrap() error {
	return product.ErrOutOfStock
}

// CheckEligibility runs every precondition of a redemption in a fixed order:
// product exists, customer exists, customer can afford it, product is in stock.
// A nil pointer means the lookup found nothing.
func CheckEligibility(customer *account.Account, p *product.Product) error {
	if p == nil {
		return ErrProductNotFound
	}
	if customer == nil || !customer.IsCustomer() || !customer.IsActive() {
		return ErrCustomerNotFound
	}
	if !customer.CanAfford(p.CostPoints()) {
		return &InsufficientPointsError{Balance: customer.PointsBalance(), Cost: p.CostPoints()}
	}
	if !p.InStock() {
		return &OutOfStockError{ProductID: p.ID(), Stock: p.Stock()}
	}
	return nil
}
