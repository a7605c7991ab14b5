//go:build unit

package fallback

import (
	"context"
	"testing"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/ledger"
	"techpoints/internal/domain/product"
	"techpoints/internal/infra"
	"techpoints/internal/infra/localcache"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/testutil/builder"
	"techpoints/internal/usecase/queries"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type FallbackUoWTestSuite struct {
	suite.Suite
	clock *clock.MockClock
	cache *localcache.MemoryCache
	uow   *UoW
	ctx   context.Context
}

func (s *FallbackUoWTestSuite) SetupTest() {
	s.clock = clock.NewMockClock(time.Date(2026, 4, 1, 12, 0, 0, 123456789, time.UTC))
	s.cache = localcache.NewMemoryCache(s.clock)
	s.uow = NewUoW(s.cache, s.clock, 0)
	s.ctx = context.Background()
}

func (s *FallbackUoWTestSuite) seed(accs ...*account.Account) {
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		for _, acc := range accs {
			if err := tx.Accounts().Create(ctx, acc); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)
}

func (s *FallbackUoWTestSuite) TestFailedUnitLeavesNoTrace() {
	acc := builder.NewAccountBuilder().WithBalance(300).BuildDomain()
	s.seed(acc)

	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, _, err := tx.Accounts().DebitPoints(ctx, acc.ID(), 100); err != nil {
			return err
		}
		return assert.AnError
	})
	s.ErrorIs(err, assert.AnError)

	var balance int64
	err = s.uow.WithinReadOnly(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		s.True(tx.Degraded())
		got, err := tx.Accounts().FindByID(ctx, acc.ID())
		if err != nil {
			return err
		}
		balance = got.PointsBalance()
		return nil
	})
	s.Require().NoError(err)
	s.Equal(int64(300), balance)
}

func (s *FallbackUoWTestSuite) TestConditionalUpdates() {
	acc := builder.NewAccountBuilder().WithBalance(100).BuildDomain()
	store := builder.NewAccountBuilder().WithEmail("store@example.com").AsStore().BuildDomain()
	s.seed(acc, store)
	p := builder.NewProductBuilder().WithStore(store.ID()).WithStock(1).BuildDomain()

	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		s.Require().NoError(tx.Products().Create(ctx, p))

		_, ok, err := tx.Accounts().DebitPoints(ctx, acc.ID(), 101)
		s.Require().NoError(err)
		s.False(ok)

		balance, ok, err := tx.Accounts().DebitPoints(ctx, acc.ID(), 100)
		s.Require().NoError(err)
		s.True(ok)
		s.Zero(balance)

		stock, ok, err := tx.Products().DecrementStock(ctx, p.ID())
		s.Require().NoError(err)
		s.True(ok)
		s.Zero(stock)

		_, ok, err = tx.Products().DecrementStock(ctx, p.ID())
		s.Require().NoError(err)
		s.False(ok)
		return nil
	})
	s.Require().NoError(err)
}

func (s *FallbackUoWTestSuite) TestReferentialChecks() {
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Products().Create(ctx, builder.NewProductBuilder().BuildDomain())
	})
	s.True(infra.IsKind(err, infra.KindForeignKeyViolated))

	acc := builder.NewAccountBuilder().BuildDomain()
	s.seed(acc)
	err = s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Accounts().Create(ctx, builder.NewAccountBuilder().WithEmail("CUSTOMER@example.com").BuildDomain())
	})
	s.True(infra.IsKind(err, infra.KindDuplicateKey))

	err = s.uow.WithinReadOnly(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Products().FindByID(ctx, uuid.New())
		return err
	})
	s.True(infra.IsKind(err, infra.KindNotFound))
}

func (s *FallbackUoWTestSuite) TestTransactionPaginationAndStats() {
	acc := builder.NewAccountBuilder().WithBalance(0).BuildDomain()
	other := builder.NewAccountBuilder().WithEmail("other@example.com").BuildDomain()
	s.seed(acc, other)

	balance := int64(0)
	for i := 0; i < 5; i++ {
		s.clock.Add(time.Minute)
		entry, err := ledger.NewAdjustment(acc.ID(), 100, balance, "topup", s.clock.Now())
		s.Require().NoError(err)
		balance += 100
		s.Require().NoError(s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.Ledger().Append(ctx, entry)
		}))
	}
	redeem, err := ledger.NewRedemption(acc.ID(), ledger.ProductSnapshot{ID: uuid.New(), Name: "Cap", CostPoints: 200}, balance, s.clock.Now().Add(time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Ledger().Append(ctx, redeem)
	}))

	store := TransactionReadStore{ReadStore: NewReadStore(s.cache)}
	filters := queries.TransactionFilters{ActorID: ptr(acc.ID())}

	page1, err := store.FindFirstPage(s.ctx, filters, 4)
	s.Require().NoError(err)
	s.Require().Len(page1, 4)
	s.Equal(redeem.ID(), page1[0].ID)

	last := page1[len(page1)-1]
	cursorAt := last.CreatedAt.Truncate(time.Microsecond)
	page2, err := store.FindKeyset(s.ctx, filters, cursorAt, last.ID, 4)
	s.Require().NoError(err)
	s.Len(page2, 2)
	for _, v := range page2 {
		s.True(v.CreatedAt.Before(last.CreatedAt))
	}

	stats, err := store.Stats(s.ctx, ptr(acc.ID()), s.clock.Now().Add(-2*time.Minute))
	s.Require().NoError(err)
	s.Equal(int64(5), stats.CountsByType["credit"])
	s.Equal(int64(1), stats.CountsByType["redemption"])
	s.Equal(int64(500), stats.TotalEarned)
	s.Equal(int64(200), stats.TotalRedeemed)
	s.Equal(int64(4), stats.RecentCount)

	empty, err := store.Stats(s.ctx, ptr(other.ID()), time.Time{})
	s.Require().NoError(err)
	s.Zero(empty.TotalEarned)
}

func (s *FallbackUoWTestSuite) TestProductFilters() {
	store := builder.NewAccountBuilder().AsStore().BuildDomain()
	s.seed(store)
	products := []*product.Product{
		builder.NewProductBuilder().WithStore(store.ID()).WithName("Blue Cap").WithStock(0).BuildDomain(),
		builder.NewProductBuilder().WithStore(store.ID()).WithName("Red Cap").BuildDomain(),
		builder.NewProductBuilder().WithStore(store.ID()).WithName("Mug").BuildDomain(),
	}
	s.Require().NoError(s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		for _, p := range products {
			if err := tx.Products().Create(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}))

	readStore := ProductReadStore{ReadStore: NewReadStore(s.cache)}
	inStock := true
	query := "cap"

	views, err := readStore.FindFirstPage(s.ctx, queries.ProductFilters{InStock: &inStock, Query: &query}, 10)
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Equal("Red Cap", views[0].Name)
}

func TestFallbackUoWTestSuite(t *testing.T) {
	suite.Run(t, new(FallbackUoWTestSuite))
}

func TestStoredTimeMatchesCursorPrecision(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 999_999_999, time.UTC)
	require.Equal(t, at.Truncate(time.Microsecond), storedTime(at))
}

func ptr[T any](v T) *T { return &v }
