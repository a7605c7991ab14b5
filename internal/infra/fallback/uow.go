package fallback

import (
	"context"
	"time"

	"techpoints/internal/infra/localcache"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/usecase/shared"
)

type UoW struct {
	cache localcache.Cache
	clock clock.Clock
	ttl   time.Duration
}

// NewUoW stores the dataset with ttl; zero keeps it until overwritten.
func NewUoW(cache localcache.Cache, clk clock.Clock, ttl time.Duration) *UoW {
	return &UoW{
		cache: cache,
		clock: clk,
		ttl:   ttl,
	}
}

func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.cache.Atomic(ctx, datasetKeys, func(view localcache.AtomicView) error {
		ds, err := loadDataset(viewReader(view))
		if err != nil {
			return err
		}
		if err := fn(ctx, newLocalTx(ds, u.clock)); err != nil {
			return err
		}
		return ds.save(view, u.ttl)
	})
}

func (u *UoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.cache.Atomic(ctx, datasetKeys, func(view localcache.AtomicView) error {
		ds, err := loadDataset(viewReader(view))
		if err != nil {
			return err
		}
		return fn(ctx, newLocalTx(ds, u.clock))
	})
}

type localTx struct {
	accounts      *accountRepository
	products      *productRepository
	ledger        *ledgerRepository
	idempotency   *idempotencyRepository
	notifications *notificationRepository
}

func newLocalTx(ds *dataset, clk clock.Clock) *localTx {
	return &localTx{
		accounts:      &accountRepository{ds: ds, clock: clk},
		products:      &productRepository{ds: ds, clock: clk},
		ledger:        &ledgerRepository{ds: ds},
		idempotency:   &idempotencyRepository{ds: ds, clock: clk},
		notifications: &notificationRepository{ds: ds, clock: clk},
	}
}

func (t *localTx) Accounts() shared.AccountRepository           { return t.accounts }
func (t *localTx) Products() shared.ProductRepository           { return t.products }
func (t *localTx) Ledger() shared.LedgerRepository              { return t.ledger }
func (t *localTx) Idempotency() shared.IdempotencyRepository    { return t.idempotency }
func (t *localTx) Notifications() shared.NotificationRepository { return t.notifications }
func (t *localTx) Degraded() bool                               { return true }
