package ledger

import "errors"

type EntryType string

const (
	TypeRedemption EntryType = "redemption"
	TypeCredit     EntryType = "credit"
	TypeDebit      EntryType = "debit"
	TypeAdjustment EntryType = "adjustment"
)

var ErrInvalidEntryType = errors.New("invalid ledger entry type")

func (t EntryType) String() string { return string(t) }

func (t EntryType) IsValid() bool {
	switch t {
	case TypeRedemption, TypeCredit, TypeDebit, TypeAdjustment:
		return true
	default:
		return false
	}
}

func NewEntryType(s string) (EntryType, error) {
	t := EntryType(s)
	if !t.IsValid() {
		return "", ErrInvalidEntryType
	}
	return t, nil
}

// TypeForAmount tags a manual ledger change by its sign.
func TypeForAmount(amount int64) EntryType {
	if amount < 0 {
		return TypeDebit
	}
	return TypeCredit
}
