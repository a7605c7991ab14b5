package readstore

import (
	"context"
	"log/slog"
	"time"

	"techpoints/internal/infra/events"
	"techpoints/internal/infra/localcache"
	"techpoints/internal/usecase/queries"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
)

// CachedProductReadStore serves product detail through the local cache.
// Cache failures fall through to the underlying store; lists are never cached.
type CachedProductReadStore struct {
	next  queries.ProductReadStore
	cache localcache.Cache
	ttl   time.Duration
}

func NewCachedProductReadStore(next queries.ProductReadStore, cache localcache.Cache, ttl time.Duration) *CachedProductReadStore {
	return &CachedProductReadStore{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func (r *CachedProductReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ProductView, error) {
	key := localcache.ProductViewKey(id)

	entry, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("catalog cache read failed", "product_id", id, "error", err.Error())
	}
	if ok {
		var view queries.ProductView
		if err := entry.Decode(&view); err == nil {
			return &view, nil
		}
		slog.Warn("catalog cache entry undecodable, dropping", "product_id", id)
		_ = r.cache.Remove(ctx, key)
	}

	view, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, view, r.ttl); err != nil {
		slog.Warn("catalog cache write failed", "product_id", id, "error", err.Error())
	}
	return view, nil
}

func (r *CachedProductReadStore) FindFirstPage(ctx context.Context, filters queries.ProductFilters, limit int32) ([]*queries.ProductView, error) {
	return r.next.FindFirstPage(ctx, filters, limit)
}

func (r *CachedProductReadStore) FindKeyset(ctx context.Context, filters queries.ProductFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ProductView, error) {
	return r.next.FindKeyset(ctx, filters, lastCreatedAt, lastID, limit)
}

func (r *CachedProductReadStore) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Remove(ctx, localcache.ProductViewKey(id)); err != nil {
		slog.Warn("catalog cache invalidation failed", "product_id", id, "error", err.Error())
	}
}

// Listen drops cached views whenever the catalog or a product's stock changes.
// The returned function stops listening.
func (r *CachedProductReadStore) Listen(bus *events.Bus) func() {
	return bus.SubscribeFunc(func(ev events.Event) {
		if id, ok := changedProductID(ev.Payload); ok {
			r.Invalidate(context.Background(), id)
		}
	}, shared.TopicCatalogChanged, shared.TopicProductRedeemed)
}

func changedProductID(payload any) (uuid.UUID, bool) {
	switch p := payload.(type) {
	case shared.CatalogChangedEvent:
		return p.ProductID, true
	case shared.ProductRedeemedEvent:
		return p.ProductID, true
	default:
		return uuid.Nil, false
	}
}
