package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNegativeBalance    = errors.New("points balance cannot be negative")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrNonPositiveAmount  = errors.New("amount must be positive")
)

// Account is a registered user. Only customers carry a meaningful balance;
// store accounts own catalog products.
type Account struct {
	id            uuid.UUID
	email         Email
	passwordHash  string
	role          Role
	displayName   string
	pointsBalance int64
	isActive      bool
	lastLogin     *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func NewAccount(email Email, passwordHash string, role Role, displayName string, startingBalance int64, now time.Time) (*Account, error) {
	if startingBalance < 0 {
		return nil, ErrNegativeBalance
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	name, err := NewDisplayName(displayName)
	if err != nil {
		return nil, err
	}
	if role != RoleCustomer {
		startingBalance = 0
	}
	return &Account{
		id:            uuid.New(),
		email:         email,
		passwordHash:  passwordHash,
		role:          role,
		displayName:   name,
		pointsBalance: startingBalance,
		isActive:      true,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructAccount(
	id uuid.UUID,
	email Email,
	passwordHash string,
	role Role,
	displayName string,
	pointsBalance int64,
	isActive bool,
	lastLogin *time.Time,
	createdAt, updatedAt time.Time,
) *Account {
	return &Account{
		id:            id,
		email:         email,
		passwordHash:  passwordHash,
		role:          role,
		displayName:   displayName,
		pointsBalance: pointsBalance,
		isActive:      isActive,
		lastLogin:     lastLogin,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (a *Account) ID() uuid.UUID         { return a.id }
func (a *Account) Email() Email          { return a.email }
func (a *Account) PasswordHash() string  { return a.passwordHash }
func (a *Account) Role() Role            { return a.role }
func (a *Account) DisplayName() string   { return a.displayName }
func (a *Account) PointsBalance() int64  { return a.pointsBalance }
func (a *Account) IsActive() bool        { return a.isActive }
func (a *Account) LastLogin() *time.Time { return a.lastLogin }
func (a *Account) CreatedAt() time.Time  { return a.createdAt }
func (a *Account) UpdatedAt() time.Time  { return a.updatedAt }

func (a *Account) IsCustomer() bool { return a.role == RoleCustomer }

func (a *Account) CanAfford(cost int64) bool {
	return a.pointsBalance >= cost
}

// Debit removes points and never leaves the balance negative.
func (a *Account) Debit(amount int64, now time.Time) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	if !a.CanAfford(amount) {
		return ErrInsufficientPoints
	}
	a.pointsBalance -= amount
	a.updatedAt = now
	return nil
}

func (a *Account) Credit(amount int64, now time.Time) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	a.pointsBalance += amount
	a.updatedAt = now
	return nil
}

func (a *Account) TouchLogin(now time.Time) {
	a.lastLogin = &now
}
