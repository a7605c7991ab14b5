// Package seed loads demo stores, customers and products from a YAML file
// into an empty persistence backend.
package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/ledger"
	"techpoints/internal/domain/product"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/pkg/password"
	"techpoints/internal/usecase/shared"

	"gopkg.in/yaml.v3"
)

type File struct {
	Admins    []Account `yaml:"admins"`
	Stores    []Store   `yaml:"stores"`
	Customers []Account `yaml:"customers"`
}

type Account struct {
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	DisplayName string `yaml:"display_name"`
	Points      int64  `yaml:"points"`
}

type Store struct {
	Account  `yaml:",inline"`
	Products []Product `yaml:"products"`
}

type Product struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	PriceCents  int64  `yaml:"price_cents"`
	Stock       int64  `yaml:"stock"`
}

type Summary struct {
	Skipped   bool
	Accounts  int
	Products  int
	Customers int
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	if len(f.Admins)+len(f.Stores)+len(f.Customers) == 0 {
		return nil, fmt.Errorf("seed file lists no accounts")
	}
	return &f, nil
}

// Apply writes the file in one unit of work. A backend that already has
// accounts is left untouched.
func Apply(ctx context.Context, uow shared.UnitOfWork, clk clock.Clock, f *File) (Summary, error) {
	var summary Summary
	err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		summary = Summary{}

		count, err := tx.Accounts().Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			summary.Skipped = true
			return nil
		}

		now := clk.Now()
		for _, a := range f.Admins {
			if _, err := createAccount(ctx, tx, a, account.RoleAdmin, now); err != nil {
				return err
			}
			summary.Accounts++
		}
		for _, s := range f.Stores {
			store, err := createAccount(ctx, tx, s.Account, account.RoleStore, now)
			if err != nil {
				return err
			}
			summary.Accounts++
			for _, sp := range s.Products {
				p, err := product.NewProduct(store.ID(), product.Attributes{
					Name:        sp.Name,
					Description: sp.Description,
					Category:    sp.Category,
					PriceCents:  sp.PriceCents,
					Stock:       sp.Stock,
				}, now)
				if err != nil {
					return fmt.Errorf("product %q: %w", sp.Name, err)
				}
				if err := tx.Products().Create(ctx, p); err != nil {
					return err
				}
				summary.Products++
			}
		}
		for _, c := range f.Customers {
			if _, err := createAccount(ctx, tx, c, account.RoleCustomer, now); err != nil {
				return err
			}
			summary.Accounts++
			summary.Customers++
		}
		return nil
	})
	if err != nil {
		return Summary{}, errs.Wrap(err, "apply seed")
	}

	return summary, nil
}

// createAccount opens a customer's starting balance with a credit entry so the log explains it.
func createAccount(ctx context.Context, tx shared.Tx, a Account, role account.Role, now time.Time) (*account.Account, error) {
	creds, err := account.NewCredentials(a.Email, a.Password)
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", a.Email, err)
	}
	hash, err := password.HashPassword(creds.Password().Value())
	if err != nil {
		return nil, err
	}

	var balance int64
	if role == account.RoleCustomer {
		balance = a.Points
	}
	acc, err := account.NewAccount(creds.Email(), hash, role, a.DisplayName, balance, now)
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", a.Email, err)
	}
	if err := tx.Accounts().Create(ctx, acc); err != nil {
		return nil, err
	}

	if balance > 0 {
		entry, err := ledger.NewAdjustment(acc.ID(), balance, 0, "Opening balance", now)
		if err != nil {
			return nil, err
		}
		if err := tx.Ledger().Append(ctx, entry); err != nil {
			return nil, err
		}
	}
	return acc, nil
}
