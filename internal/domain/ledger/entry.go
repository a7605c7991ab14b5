package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrZeroAmount         = errors.New("ledger amount cannot be zero")
	ErrBalanceMismatch    = errors.New("balance_after must equal balance_before plus amount")
	ErrNegativeBalance    = errors.New("ledger balance cannot be negative")
	ErrMissingProduct     = errors.New("redemption entry requires a product snapshot")
	ErrReasonTooLong      = errors.New("reason must be at most 500 characters")
	ErrRedemptionPositive = errors.New("redemption amount must be negative")
)

// ProductSnapshot freezes the product as it was at redemption time so the
// log stays readable after the catalog changes.
type ProductSnapshot struct {
	ID         uuid.UUID
	Name       string
	CostPoints int64
}

// Entry is one immutable balance-changing event.
type Entry struct {
	id            uuid.UUID
	actorID       uuid.UUID
	entryType     EntryType
	amount        int64
	balanceBefore int64
	balanceAfter  int64
	reason        string
	product       *ProductSnapshot
	createdAt     time.Time
}

func NewRedemption(actorID uuid.UUID, product ProductSnapshot, balanceBefore int64, now time.Time) (*Entry, error) {
	if product.ID == uuid.Nil {
		return nil, ErrMissingProduct
	}
	snap := product
	return newEntry(actorID, TypeRedemption, -product.CostPoints, balanceBefore, "Redeemed "+product.Name, &snap, now)
}

func NewAdjustment(actorID uuid.UUID, amount, balanceBefore int64, reason string, now time.Time) (*Entry, error) {
	return newEntry(actorID, TypeForAmount(amount), amount, balanceBefore, reason, nil, now)
}

func NewSignupBonus(actorID uuid.UUID, amount int64, now time.Time) (*Entry, error) {
	return newEntry(actorID, TypeCredit, amount, 0, "Signup bonus", nil, now)
}

func newEntry(actorID uuid.UUID, t EntryType, amount, balanceBefore int64, reason string, product *ProductSnapshot, now time.Time) (*Entry, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	if t == TypeRedemption && amount > 0 {
		return nil, ErrRedemptionPositive
	}
	if len([]rune(reason)) > 500 {
		return nil, ErrReasonTooLong
	}
	after := balanceBefore + amount
	if balanceBefore < 0 || after < 0 {
		return nil, ErrNegativeBalance
	}
	return &Entry{
		id:            uuid.New(),
		actorID:       actorID,
		entryType:     t,
		amount:        amount,
		balanceBefore: balanceBefore,
		balanceAfter:  after,
		reason:        reason,
		product:       product,
		createdAt:     now,
	}, nil
}

func ReconstructEntry(
	id, actorID uuid.UUID,
	t EntryType,
	amount, balanceBefore, balanceAfter int64,
	reason string,
	product *ProductSnapshot,
	createdAt time.Time,
) *Entry {
	return &Entry{
		id:            id,
		actorID:       actorID,
		entryType:     t,
		amount:        amount,
		balanceBefore: balanceBefore,
		balanceAfter:  balanceAfter,
		reason:        reason,
		product:       product,
		createdAt:     createdAt,
	}
}

func (e *Entry) ID() uuid.UUID             { return e.id }
func (e *Entry) ActorID() uuid.UUID        { return e.actorID }
func (e *Entry) Type() EntryType           { return e.entryType }
func (e *Entry) Amount() int64             { return e.amount }
func (e *Entry) BalanceBefore() int64      { return e.balanceBefore }
func (e *Entry) BalanceAfter() int64       { return e.balanceAfter }
func (e *Entry) Reason() string            { return e.reason }
func (e *Entry) Product() *ProductSnapshot { return e.product }
func (e *Entry) CreatedAt() time.Time      { return e.createdAt }

// Consistent checks the before/after arithmetic of a stored entry.
func (e *Entry) Consistent() error {
	if e.balanceBefore+e.amount != e.balanceAfter {
		return ErrBalanceMismatch
	}
	if e.balanceAfter < 0 {
		return ErrNegativeBalance
	}
	return nil
}
