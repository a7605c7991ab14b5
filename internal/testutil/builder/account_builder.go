//go:build unit || e2e

package builder

import (
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type AccountBuilder struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	Role          string
	DisplayName   string
	PointsBalance int64
	IsActive      bool
}

func NewAccountBuilder() *AccountBuilder {
	return &AccountBuilder{
		ID:            uuid.New(),
		Email:         "customer@example.com",
		PasswordHash:  "hashed_password",
		Role:          account.RoleCustomer.String(),
		DisplayName:   "Test Customer",
		PointsBalance: 500,
		IsActive:      true,
	}
}

func (b *AccountBuilder) With(mutate func(*AccountBuilder)) *AccountBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *AccountBuilder) BuildDomain() *account.Account {
	now := time.Now().UTC()
	return account.ReconstructAccount(
		b.ID,
		account.ReconstructEmail(b.Email),
		b.PasswordHash,
		account.Role(b.Role),
		b.DisplayName,
		b.PointsBalance,
		b.IsActive,
		nil,
		now, now,
	)
}

func (b *AccountBuilder) BuildInfra() pgsql.Account {
	now := time.Now()
	return pgsql.Account{
		ID:            b.ID,
		Email:         b.Email,
		PasswordHash:  b.PasswordHash,
		Role:          b.Role,
		DisplayName:   b.DisplayName,
		PointsBalance: b.PointsBalance,
		IsActive:      b.IsActive,
		LastLogin:     pgtype.Timestamptz{},
		CreatedAt:     pgtype.Timestamptz{Time: now, Valid: true},
		UpdatedAt:     pgtype.Timestamptz{Time: now, Valid: true},
	}
}

func (b *AccountBuilder) BuildView() *queries.AccountView {
	return &queries.AccountView{
		ID:            b.ID,
		Email:         b.Email,
		Role:          b.Role,
		DisplayName:   b.DisplayName,
		PointsBalance: b.PointsBalance,
		IsActive:      b.IsActive,
		CreatedAt:     time.Now(),
	}
}

// Fluent builder methods
func (b *AccountBuilder) WithEmail(email string) *AccountBuilder {
	b.Email = email
	return b
}

func (b *AccountBuilder) WithRole(role account.Role) *AccountBuilder {
	b.Role = role.String()
	return b
}

func (b *AccountBuilder) WithBalance(balance int64) *AccountBuilder {
	b.PointsBalance = balance
	return b
}

func (b *AccountBuilder) WithPasswordHash(hash string) *AccountBuilder {
	b.PasswordHash = hash
	return b
}

func (b *AccountBuilder) AsStore() *AccountBuilder {
	b.Role = account.RoleStore.String()
	b.PointsBalance = 0
	return b
}

func (b *AccountBuilder) AsAdmin() *AccountBuilder {
	b.Role = account.RoleAdmin.String()
	b.PointsBalance = 0
	return b
}

func (b *AccountBuilder) AsInactive() *AccountBuilder {
	b.IsActive = false
	return b
}
