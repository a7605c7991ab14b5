//go:build unit

package commands_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/ledger"
	"techpoints/internal/domain/redemption"
	reqdto "techpoints/internal/handler/dto/request"
	"techpoints/internal/infra"
	"techpoints/internal/infra/fallback"
	"techpoints/internal/infra/localcache"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/usecase/commands"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// switchableUoW behaves like a primary store that can lose its connection.
type switchableUoW struct {
	shared.UnitOfWork
	down atomic.Bool
}

func (u *switchableUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if u.down.Load() {
		return infra.WrapRepoErr("begin transaction", errors.New("dial tcp: connection refused"), infra.KindUnavailable)
	}
	return u.UnitOfWork.Within(ctx, fn)
}

func (u *switchableUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if u.down.Load() {
		return infra.WrapRepoErr("begin transaction", errors.New("dial tcp: connection refused"), infra.KindUnavailable)
	}
	return u.UnitOfWork.WithinReadOnly(ctx, fn)
}

func TestRedeemAfterPrimaryGoesDown(t *testing.T) {
	primaryEnv := newEnv()
	store := primaryEnv.createAccount(t, account.RoleStore, "store@example.com", 0)
	customer := primaryEnv.createAccount(t, account.RoleCustomer, "buyer@example.com", 500)
	p := primaryEnv.createProduct(t, store.ID(), "Headphones", 200, 2)

	primary := &switchableUoW{UnitOfWork: primaryEnv.uow}
	local := fallback.NewUoW(localcache.NewMemoryCache(primaryEnv.clock), primaryEnv.clock, 0)
	uow := fallback.NewDegradingUoW(primary, local)
	cmds := commands.NewRedemptionCommands(uow, primaryEnv.events, primaryEnv.clock, ledger.RetentionPolicy{})

	// Served by the primary, which copies the rows it touched into local.
	first, err := cmds.RedeemProduct(context.Background(), customer.ID(), p.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(300), first.NewBalance)
	assert.Equal(t, int64(1), first.NewStock)

	primary.down.Store(true)

	second, err := cmds.RedeemProduct(context.Background(), customer.ID(), p.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(100), second.NewBalance)
	assert.Equal(t, int64(0), second.NewStock)
	assert.True(t, second.Degraded)

	fallbackEnv := &env{clock: primaryEnv.clock, uow: local}
	assert.Equal(t, int64(100), fallbackEnv.balance(t, customer.ID()))
	assert.Equal(t, int64(0), fallbackEnv.stock(t, p.ID()))
	// The primary never saw the degraded redemption.
	assert.Equal(t, int64(300), primaryEnv.balance(t, customer.ID()))
}

func TestRedeemOnFallbackNeedsProductSeenBefore(t *testing.T) {
	primaryEnv := newEnv()
	store := primaryEnv.createAccount(t, account.RoleStore, "store@example.com", 0)
	customer := primaryEnv.createAccount(t, account.RoleCustomer, "buyer@example.com", 500)
	p := primaryEnv.createProduct(t, store.ID(), "Headphones", 200, 2)

	primary := &switchableUoW{UnitOfWork: primaryEnv.uow}
	primary.down.Store(true)
	local := fallback.NewUoW(localcache.NewMemoryCache(primaryEnv.clock), primaryEnv.clock, 0)
	cmds := commands.NewRedemptionCommands(fallback.NewDegradingUoW(primary, local), primaryEnv.events, primaryEnv.clock, ledger.RetentionPolicy{})

	_, err := cmds.RedeemProduct(context.Background(), customer.ID(), p.ID())

	assert.True(t, errs.Is(err, redemption.ErrProductNotFound))
}

// staleUoW hands out accounts whose balance is higher than the stored one,
// as if another transaction debited the account after the read.
type staleUoW struct {
	shared.UnitOfWork
	extra int64
}

func (u *staleUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.UnitOfWork.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return fn(ctx, &staleTx{Tx: tx, extra: u.extra})
	})
}

type staleTx struct {
	shared.Tx
	extra int64
}

func (t *staleTx) Accounts() shared.AccountRepository {
	return &staleAccounts{AccountRepository: t.Tx.Accounts(), extra: t.extra}
}

type staleAccounts struct {
	shared.AccountRepository
	extra int64
}

func (r *staleAccounts) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	acc, err := r.AccountRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := acc.Credit(r.extra, baseTime); err != nil {
		return nil, err
	}
	return acc, nil
}

func TestRefusedDebitReportsCurrentBalance(t *testing.T) {
	t.Run("redemption", func(t *testing.T) {
		e := newEnv()
		store := e.createAccount(t, account.RoleStore, "store@example.com", 0)
		customer := e.createAccount(t, account.RoleCustomer, "buyer@example.com", 100)
		p := e.createProduct(t, store.ID(), "Keyboard", 500, 3)
		cmds := commands.NewRedemptionCommands(&staleUoW{UnitOfWork: e.uow, extra: 900}, e.events, e.clock, ledger.RetentionPolicy{})

		_, err := cmds.RedeemProduct(context.Background(), customer.ID(), p.ID())

		var insufficient *redemption.InsufficientPointsError
		require.True(t, errs.As(err, &insufficient))
		assert.Equal(t, int64(100), insufficient.Balance)
		assert.Equal(t, int64(400), insufficient.Shortfall())
		assert.Equal(t, int64(3), e.stock(t, p.ID()))
	})

	t.Run("adjustment", func(t *testing.T) {
		e := newEnv()
		admin := e.createAccount(t, account.RoleAdmin, "admin@example.com", 0)
		customer := e.createAccount(t, account.RoleCustomer, "buyer@example.com", 100)
		cmds := commands.NewPointsCommands(&staleUoW{UnitOfWork: e.uow, extra: 900}, e.events, e.clock, ledger.RetentionPolicy{})

		_, err := cmds.AdjustPoints(context.Background(), reqdto.AdjustPointsRequest{Amount: -500}, admin.ID(), admin.Role(), customer.ID())

		var insufficient *redemption.InsufficientPointsError
		require.True(t, errs.As(err, &insufficient))
		assert.Equal(t, int64(100), insufficient.Balance)
		assert.Equal(t, int64(400), insufficient.Shortfall())
	})
}
