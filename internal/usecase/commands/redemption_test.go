//go:build unit

package commands_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/ledger"
	"techpoints/internal/domain/redemption"
	reqdto "techpoints/internal/handler/dto/request"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/usecase/commands"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedemptionCommandsTestSuite struct {
	suite.Suite
	env      *env
	commands commands.RedemptionCommands
	store    *account.Account
}

func (s *RedemptionCommandsTestSuite) SetupTest() {
	s.env = newEnv()
	s.commands = commands.NewRedemptionCommands(s.env.uow, s.env.events, s.env.clock, ledger.RetentionPolicy{})
	s.store = s.env.createAccount(s.T(), account.RoleStore, "store@example.com", 0)
}

func (s *RedemptionCommandsTestSuite) TestRedeemSuccess() {
	customer := s.env.createAccount(s.T(), account.RoleCustomer, "buyer@example.com", 500)
	p := s.env.createProduct(s.T(), s.store.ID(), "Headphones", 500, 3)

	result, err := s.commands.RedeemProduct(context.Background(), customer.ID(), p.ID())

	s.Require().NoError(err)
	s.Equal(int64(0), result.NewBalance)
	s.Equal(int64(2), result.NewStock)
	s.Equal(int64(500), result.CostPoints)
	s.Contains(result.Message, "Headphones")
	s.True(result.Degraded)
	s.False(result.IsReplayed)

	s.Equal(int64(0), s.env.balance(s.T(), customer.ID()))
	s.Equal(int64(2), s.env.stock(s.T(), p.ID()))

	entries := s.env.transactions(s.T(), customer.ID())
	s.Require().Len(entries, 1)
	entry := entries[0]
	s.Equal(result.TransactionID, entry.ID)
	s.Equal("redemption", entry.Type)
	s.Equal(int64(-500), entry.Amount)
	s.Equal(int64(500), entry.BalanceBefore)
	s.Equal(int64(0), entry.BalanceAfter)
	s.Require().NotNil(entry.ProductName)
	s.Equal("Headphones", *entry.ProductName)

	s.Equal([]string{shared.TopicProductRedeemed}, s.env.events.Topics())
}

func (s *RedemptionCommandsTestSuite) TestInsufficientPoints() {
	customer := s.env.createAccount(s.T(), account.RoleCustomer, "buyer@example.com", 100)
	p := s.env.createProduct(s.T(), s.store.ID(), "Keyboard", 500, 3)

	_, err := s.commands.RedeemProduct(context.Background(), customer.ID(), p.ID())

	s.Require().Error(err)
	s.True(errs.Is(err, errs.ErrInsufficientPoints))
	var insufficient *redemption.InsufficientPointsError
	s.Require().True(errs.As(err, &insufficient))
	s.Equal(int64(400), insufficient.Shortfall())
	s.Equal(int64(100), insufficient.Balance)

	s.Equal(int64(100), s.env.balance(s.T(), customer.ID()))
	s.Equal(int64(3), s.env.stock(s.T(), p.ID()))
	s.Empty(s.env.transactions(s.T(), customer.ID()))
	s.Empty(s.env.events.Topics())
}

func (s *RedemptionCommandsTestSuite) TestOutOfStock() {
	customer := s.env.createAccount(s.T(), account.RoleCustomer, "buyer@example.com", 1000)
	p := s.env.createProduct(s.T(), s.store.ID(), "Mouse", 200, 0)

	_, err := s.commands.RedeemProduct(context.Background(), customer.ID(), p.ID())

	s.True(errs.Is(err, errs.ErrOutOfStock))
	s.Equal(int64(1000), s.env.balance(s.T(), customer.ID()))
	s.Empty(s.env.transactions(s.T(), customer.ID()))
}

func (s *RedemptionCommandsTestSuite) TestLookupFailures() {
	customer := s.env.createAccount(s.T(), account.RoleCustomer, "buyer@example.com", 1000)
	p := s.env.createProduct(s.T(), s.store.ID(), "Mouse", 200, 1)

	_, err := s.commands.RedeemProduct(context.Background(), customer.ID(), uuid.New())
	s.True(errs.Is(err, errs.ErrProductNotFound))

	_, err = s.commands.RedeemProduct(context.Background(), uuid.New(), p.ID())
	s.True(errs.Is(err, errs.ErrCustomerNotFound))

	// store accounts cannot redeem
	_, err = s.commands.RedeemProduct(context.Background(), s.store.ID(), p.ID())
	s.True(errs.Is(err, errs.ErrCustomerNotFound))

	// product lookup wins over a missing customer
	_, err = s.commands.RedeemProduct(context.Background(), uuid.New(), uuid.New())
	s.True(errs.Is(err, errs.ErrProductNotFound))
}

func (s *RedemptionCommandsTestSuite) TestIdempotentReplay() {
	customer := s.env.createAccount(s.T(), account.RoleCustomer, "buyer@example.com", 1000)
	p := s.env.createProduct(s.T(), s.store.ID(), "Mouse", 200, 5)
	key := uuid.New()
	req := reqdto.RedeemRequest{ProductID: p.ID()}

	first, err := s.commands.Redeem(context.Background(), req, customer.ID(), key)
	s.Require().NoError(err)
	s.False(first.IsReplayed)

	second, err := s.commands.Redeem(context.Background(), req, customer.ID(), key)
	s.Require().NoError(err)
	s.True(second.IsReplayed)
	s.Equal(first.TransactionID, second.TransactionID)
	s.Equal(first.NewBalance, second.NewBalance)

	s.Equal(int64(800), s.env.balance(s.T(), customer.ID()))
	s.Equal(int64(4), s.env.stock(s.T(), p.ID()))
	s.Len(s.env.transactions(s.T(), customer.ID()), 1)
}

func (s *RedemptionCommandsTestSuite) TestIdempotencyKeyReuseAndRelease() {
	customer := s.env.createAccount(s.T(), account.RoleCustomer, "buyer@example.com", 300)
	cheap := s.env.createProduct(s.T(), s.store.ID(), "Sticker", 100, 5)
	pricey := s.env.createProduct(s.T(), s.store.ID(), "Monitor", 900, 5)

	_, err := s.commands.Redeem(context.Background(), reqdto.RedeemRequest{ProductID: cheap.ID()}, customer.ID(), uuid.Nil)
	s.True(errs.Is(err, errs.ErrIdempotencyKeyRequired))

	key := uuid.New()
	_, err = s.commands.Redeem(context.Background(), reqdto.RedeemRequest{ProductID: pricey.ID()}, customer.ID(), key)
	s.Require().True(errs.Is(err, errs.ErrInsufficientPoints))

	// the failed attempt released the key, so it can be used again
	result, err := s.commands.Redeem(context.Background(), reqdto.RedeemRequest{ProductID: cheap.ID()}, customer.ID(), key)
	s.Require().NoError(err)
	s.False(result.IsReplayed)

	_, err = s.commands.Redeem(context.Background(), reqdto.RedeemRequest{ProductID: pricey.ID()}, customer.ID(), key)
	s.True(errs.Is(err, errs.ErrIdempotencyKeyReused))
}

func (s *RedemptionCommandsTestSuite) TestIdempotencyInProgress() {
	customer := s.env.createAccount(s.T(), account.RoleCustomer, "buyer@example.com", 300)
	p := s.env.createProduct(s.T(), s.store.ID(), "Sticker", 100, 5)
	req := reqdto.RedeemRequest{ProductID: p.ID()}
	key := uuid.New()

	// simulate a concurrent request holding the claim
	err := s.env.uow.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Idempotency().TryInsert(ctx, key, customer.ID(), "POST /api/redemptions", commands.RequestHashOf(req), s.env.clock.Now().Add(time.Hour))
		return err
	})
	s.Require().NoError(err)

	_, err = s.commands.Redeem(context.Background(), req, customer.ID(), key)
	s.True(errs.Is(err, errs.ErrIdempotencyInProgress))
	s.Equal(int64(300), s.env.balance(s.T(), customer.ID()))
}

func TestRedemptionCommandsTestSuite(t *testing.T) {
	suite.Run(t, new(RedemptionCommandsTestSuite))
}

func TestConcurrentRedemptionLastUnit(t *testing.T) {
	e := newEnv()
	cmds := commands.NewRedemptionCommands(e.uow, e.events, e.clock, ledger.RetentionPolicy{})
	store := e.createAccount(t, account.RoleStore, "store@example.com", 0)
	p := e.createProduct(t, store.ID(), "Limited Edition", 100, 1)

	const buyers = 8
	customers := make([]*account.Account, buyers)
	for i := range customers {
		customers[i] = e.createAccount(t, account.RoleCustomer, uuid.NewString()+"@example.com", 1000)
	}

	var (
		wg         sync.WaitGroup
		successes  atomic.Int32
		outOfStock atomic.Int32
	)
	for _, c := range customers {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := cmds.RedeemProduct(context.Background(), id, p.ID())
			switch {
			case err == nil:
				successes.Add(1)
			case errs.Is(err, errs.ErrOutOfStock):
				outOfStock.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(c.ID())
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(buyers-1), outOfStock.Load())
	assert.Equal(t, int64(0), e.stock(t, p.ID()))

	var total int64
	for _, c := range customers {
		total += e.balance(t, c.ID())
	}
	require.Equal(t, int64(buyers*1000-100), total)
}
