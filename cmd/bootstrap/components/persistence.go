package components

import (
	"context"
	"log/slog"

	"techpoints/internal/infra/events"
	"techpoints/internal/infra/fallback"
	"techpoints/internal/infra/localcache"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/infra/readstore"
	"techpoints/internal/infra/uow"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/config"
	"techpoints/internal/usecase/queries"
	"techpoints/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewSQLQueries,
		NewLocalUnitOfWork,
		NewUnitOfWork,
		NewAccountReadStore,
		NewProductReadStore,
		NewTransactionReadStore,
	),
)

// store reports which backends are live. Local mode has no pool.
type store struct {
	pool     *pgxpool.Pool
	q        *pgsql.Queries
	fallback *fallback.ReadStore
	cfg      config.Config
}

func newStore(cfg config.Config, pool *pgxpool.Pool, q *pgsql.Queries, cache localcache.Cache) store {
	return store{pool: pool, q: q, fallback: fallback.NewReadStore(cache), cfg: cfg}
}

func (s store) remote() bool {
	return s.cfg.Persistence.Mode == config.PersistenceRemote && s.pool != nil
}

func (s store) degrading() bool {
	return s.remote() && s.cfg.Persistence.FallbackEnabled
}

func NewSQLQueries() *pgsql.Queries {
	return pgsql.New()
}

// NewLocalUnitOfWork is the cache-backed store. It serves local mode and
// receives rows the primary confirms in degrading mode.
func NewLocalUnitOfWork(cfg config.Config, cache localcache.Cache, clk clock.Clock) *fallback.UoW {
	return fallback.NewUoW(cache, clk, cfg.Cache.FallbackDataTTL)
}

func NewUnitOfWork(cfg config.Config, pool *pgxpool.Pool, q *pgsql.Queries, cache localcache.Cache, local *fallback.UoW, logger *slog.Logger) shared.UnitOfWork {
	s := newStore(cfg, pool, q, cache)

	switch {
	case s.degrading():
		logger.Info("persistence: postgres with cache fallback")
		return fallback.NewDegradingUoW(uow.NewPostgresUoW(pool, q, cfg.DB.CallTimeout), local)
	case s.remote():
		logger.Info("persistence: postgres")
		return uow.NewPostgresUoW(pool, q, cfg.DB.CallTimeout)
	default:
		logger.Warn("persistence: local cache only, data is not authoritative")
		return local
	}
}

func NewAccountReadStore(cfg config.Config, pool *pgxpool.Pool, q *pgsql.Queries, cache localcache.Cache, mirror *fallback.UoW) queries.AccountReadStore {
	s := newStore(cfg, pool, q, cache)
	local := fallback.AccountReadStore{ReadStore: s.fallback}
	if !s.remote() {
		return local
	}
	pg := readstore.NewAccountReadStore(q, pool, cfg.DB.CallTimeout)
	if s.degrading() {
		return fallback.DegradingAccountReads{Primary: pg, Secondary: local, Mirror: mirror}
	}
	return pg
}

// NewProductReadStore fronts the catalog with the view cache and keeps it
// coherent through the event bus.
func NewProductReadStore(
	lc fx.Lifecycle,
	cfg config.Config,
	pool *pgxpool.Pool,
	q *pgsql.Queries,
	cache localcache.Cache,
	mirror *fallback.UoW,
	bus *events.Bus,
) queries.ProductReadStore {
	s := newStore(cfg, pool, q, cache)
	local := fallback.ProductReadStore{ReadStore: s.fallback}
	if !s.remote() {
		return local
	}

	var next queries.ProductReadStore = readstore.NewProductReadStore(q, pool, cfg.DB.CallTimeout)
	if s.degrading() {
		next = fallback.DegradingProductReads{Primary: next, Secondary: local, Mirror: mirror}
	}
	if cfg.Cache.CatalogTTL <= 0 {
		return next
	}

	cached := readstore.NewCachedProductReadStore(next, cache, cfg.Cache.CatalogTTL)
	var stop func()
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			stop = cached.Listen(bus)
			return nil
		},
		OnStop: func(_ context.Context) error {
			if stop != nil {
				stop()
			}
			return nil
		},
	})
	return cached
}

func NewTransactionReadStore(cfg config.Config, pool *pgxpool.Pool, q *pgsql.Queries, cache localcache.Cache, mirror *fallback.UoW) queries.TransactionReadStore {
	s := newStore(cfg, pool, q, cache)
	local := fallback.TransactionReadStore{ReadStore: s.fallback}
	if !s.remote() {
		return local
	}
	pg := readstore.NewTransactionReadStore(q, pool, cfg.DB.CallTimeout)
	if s.degrading() {
		return fallback.DegradingTransactionReads{Primary: pg, Secondary: local, Mirror: mirror}
	}
	return pg
}
