//go:build unit

package ledger_test

import (
	"testing"
	"time"

	"techpoints/internal/domain/ledger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func TestNewRedemption(t *testing.T) {
	snap := ledger.ProductSnapshot{ID: uuid.New(), Name: "Keyboard", CostPoints: 500}
	e, err := ledger.NewRedemption(uuid.New(), snap, 500, now)
	require.NoError(t, err)

	assert.Equal(t, ledger.TypeRedemption, e.Type())
	assert.Equal(t, int64(-500), e.Amount())
	assert.Equal(t, int64(500), e.BalanceBefore())
	assert.Equal(t, int64(0), e.BalanceAfter())
	assert.Equal(t, "Keyboard", e.Product().Name)
	assert.NoError(t, e.Consistent())

	_, err = ledger.NewRedemption(uuid.New(), snap, 100, now)
	assert.ErrorIs(t, err, ledger.ErrNegativeBalance)

	_, err = ledger.NewRedemption(uuid.New(), ledger.ProductSnapshot{}, 100, now)
	assert.ErrorIs(t, err, ledger.ErrMissingProduct)
}

func TestNewAdjustment(t *testing.T) {
	testCases := []struct {
		name     string
		amount   int64
		before   int64
		wantType ledger.EntryType
		errIs    error
	}{
		{name: "credit", amount: 1000, before: 0, wantType: ledger.TypeCredit},
		{name: "debit", amount: -200, before: 300, wantType: ledger.TypeDebit},
		{name: "zero", amount: 0, before: 300, errIs: ledger.ErrZeroAmount},
		{name: "overdraw", amount: -400, before: 300, errIs: ledger.ErrNegativeBalance},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := ledger.NewAdjustment(uuid.New(), tc.amount, tc.before, "manual", now)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantType, e.Type())
			assert.Equal(t, tc.before+tc.amount, e.BalanceAfter())
		})
	}
}

func TestRetentionPolicy(t *testing.T) {
	p := ledger.RetentionPolicy{MaxEntries: 3, MaxAge: 24 * time.Hour}
	assert.True(t, p.Enabled())
	assert.Equal(t, 2, p.Overflow(5))
	assert.Equal(t, 0, p.Overflow(3))
	assert.True(t, p.Expired(now.Add(-25*time.Hour), now))
	assert.False(t, p.Expired(now.Add(-23*time.Hour), now))

	off := ledger.RetentionPolicy{}
	assert.False(t, off.Enabled())
	assert.Equal(t, 0, off.Overflow(100))
	assert.False(t, off.Expired(time.Time{}, now))
}
