//go:build unit

package redemption_test

import (
	"errors"
	"testing"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/product"
	"techpoints/internal/domain/redemption"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func customerWith(t *testing.T, balance int64) *account.Account {
	t.Helper()
	email, err := account.NewEmail("customer@example.com")
	require.NoError(t, err)
	acc, err := account.NewAccount(email, "hash", account.RoleCustomer, "Customer", balance, now)
	require.NoError(t, err)
	return acc
}

func productWith(t *testing.T, priceCents, stock int64) *product.Product {
	t.Helper()
	p, err := product.NewProduct(uuid.New(), product.Attributes{Name: "Headphones", PriceCents: priceCents, Stock: stock}, now)
	require.NoError(t, err)
	return p
}

func TestCheckEligibility(t *testing.T) {
	testCases := []struct {
		name     string
		customer func(t *testing.T) *account.Account
		product  func(t *testing.T) *product.Product
		errIs    error
	}{
		{
			name:     "eligible",
			customer: func(t *testing.T) *account.Account { return customerWith(t, 500) },
			product:  func(t *testing.T) *product.Product { return productWith(t, 500, 3) },
		},
		{
			name:     "missing product is reported first",
			customer: func(*testing.T) *account.Account { return nil },
			product:  func(*testing.T) *product.Product { return nil },
			errIs:    redemption.ErrProductNotFound,
		},
		{
			name:     "missing customer",
			customer: func(*testing.T) *account.Account { return nil },
			product:  func(t *testing.T) *product.Product { return productWith(t, 500, 3) },
			errIs:    redemption.ErrCustomerNotFound,
		},
		{
			name: "store account cannot redeem",
			customer: func(t *testing.T) *account.Account {
				email, _ := account.NewEmail("store@example.com")
				acc, err := account.NewAccount(email, "hash", account.RoleStore, "Store", 0, now)
				require.NoError(t, err)
				return acc
			},
			product: func(t *testing.T) *product.Product { return productWith(t, 500, 3) },
			errIs:   redemption.ErrCustomerNotFound,
		},
		{
			name:     "balance checked before stock",
			customer: func(t *testing.T) *account.Account { return customerWith(t, 100) },
			product:  func(t *testing.T) *product.Product { return productWith(t, 500, 0) },
			errIs:    account.ErrInsufficientPoints,
		},
		{
			name:     "out of stock",
			customer: func(t *testing.T) *account.Account { return customerWith(t, 500) },
			product:  func(t *testing.T) *product.Product { return productWith(t, 500, 0) },
			errIs:    redemption.ErrOutOfStock,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := redemption.CheckEligibility(tc.customer(t), tc.product(t))
			if tc.errIs == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.errIs)
		})
	}
}

func TestInsufficientPointsShortfall(t *testing.T) {
	err := redemption.CheckEligibility(customerWith(t, 100), productWith(t, 500, 3))

	var ipe *redemption.InsufficientPointsError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, int64(400), ipe.Shortfall())
	assert.Equal(t, int64(100), ipe.Balance)
	assert.Equal(t, int64(500), ipe.Cost)
}

func TestOutOfStockCarriesProduct(t *testing.T) {
	p := productWith(t, 500, 0)
	err := redemption.CheckEligibility(customerWith(t, 500), p)

	var oos *redemption.OutOfStockError
	require.True(t, errors.As(err, &oos))
	assert.Equal(t, p.ID(), oos.ProductID)
	assert.Equal(t, int64(0), oos.Stock)
	assert.ErrorIs(t, err, product.ErrOutOfStock)
}
