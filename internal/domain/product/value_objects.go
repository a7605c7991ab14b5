package product

import (
	"errors"
	"strings"
)

// PointsPerDollar is the single conversion rate between list price and points cost.
const PointsPerDollar int64 = 100

var (
	ErrEmptyName       = errors.New("product name is required")
	ErrNameTooLong     = errors.New("product name must be at most 200 characters")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidStock    = errors.New("stock cannot be negative")
	ErrInvalidCategory = errors.New("category must be at most 50 characters")
)

// CostForPrice converts a price in cents to points, rounding up partial points.
func CostForPrice(priceCents int64) (int64, error) {
	if priceCents <= 0 {
		return 0, ErrInvalidPrice
	}
	cost := (priceCents*PointsPerDollar + 99) / 100
	return cost, nil
}

func normalizeName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyName
	}
	if len([]rune(s)) > 200 {
		return "", ErrNameTooLong
	}
	return s, nil
}

func normalizeCategory(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len([]rune(s)) > 50 {
		return "", ErrInvalidCategory
	}
	return s, nil
}

func validateStock(stock int64) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	return nil
}
