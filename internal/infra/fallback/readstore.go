package fallback

import (
	"context"
	"slices"
	"strings"
	"time"

	"techpoints/internal/domain/ledger"
	"techpoints/internal/infra"
	"techpoints/internal/infra/localcache"
	"techpoints/internal/usecase/queries"

	"github.com/google/uuid"
)

// ReadStore serves the query side from the fallback dataset.
type ReadStore struct {
	cache localcache.Cache
}

func NewReadStore(cache localcache.Cache) *ReadStore {
	return &ReadStore{cache: cache}
}

func (s *ReadStore) snapshot(ctx context.Context) (*dataset, error) {
	return loadDataset(func(key string) (localcache.Entry, bool, error) {
		return s.cache.Get(ctx, key)
	})
}

type AccountReadStore struct{ *ReadStore }

func (s AccountReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AccountView, error) {
	ds, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	rec := ds.account(id)
	if rec == nil {
		return nil, infra.WrapRepoErr("account not found", nil, infra.KindNotFound)
	}
	return &queries.AccountView{
		ID:            rec.ID,
		Email:         rec.Email,
		Role:          rec.Role,
		DisplayName:   rec.DisplayName,
		PointsBalance: rec.PointsBalance,
		IsActive:      rec.IsActive,
		LastLogin:     rec.LastLogin,
		CreatedAt:     rec.CreatedAt,
		Degraded:      true,
	}, nil
}

type ProductReadStore struct{ *ReadStore }

func (s ProductReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ProductView, error) {
	ds, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	rec := ds.product(id)
	if rec == nil {
		return nil, infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return toProductView(*rec), nil
}

func (s ProductReadStore) FindFirstPage(ctx context.Context, filters queries.ProductFilters, limit int32) ([]*queries.ProductView, error) {
	return s.list(ctx, filters, nil, uuid.Nil, limit)
}

func (s ProductReadStore) FindKeyset(ctx context.Context, filters queries.ProductFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ProductView, error) {
	return s.list(ctx, filters, &lastCreatedAt, lastID, limit)
}

func (s ProductReadStore) list(ctx context.Context, filters queries.ProductFilters, lastCreatedAt *time.Time, lastID uuid.UUID, limit int32) ([]*queries.ProductView, error) {
	ds, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	recs := slices.Clone(ds.products)
	slices.SortFunc(recs, func(a, b productRecord) int {
		return compareKeyDesc(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})

	out := make([]*queries.ProductView, 0, limit)
	for _, rec := range recs {
		if int32(len(out)) >= limit {
			break
		}
		if lastCreatedAt != nil && !afterCursor(rec.CreatedAt, rec.ID, *lastCreatedAt, lastID) {
			continue
		}
		if !matchesProduct(rec, filters) {
			continue
		}
		out = append(out, toProductView(rec))
	}
	return out, nil
}

func matchesProduct(rec productRecord, f queries.ProductFilters) bool {
	if f.StoreID != nil && rec.StoreID != *f.StoreID {
		return false
	}
	if f.Category != nil && rec.Category != *f.Category {
		return false
	}
	if f.InStock != nil && *f.InStock && rec.Stock <= 0 {
		return false
	}
	if f.Query != nil && !strings.Contains(strings.ToLower(rec.Name), strings.ToLower(*f.Query)) {
		return false
	}
	return true
}

func toProductView(rec productRecord) *queries.ProductView {
	return &queries.ProductView{
		ID:          rec.ID,
		StoreID:     rec.StoreID,
		Name:        rec.Name,
		Description: rec.Description,
		Category:    rec.Category,
		PriceCents:  rec.PriceCents,
		CostPoints:  rec.CostPoints,
		Stock:       rec.Stock,
		ImageURL:    rec.ImageURL,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

type TransactionReadStore struct{ *ReadStore }

func (s TransactionReadStore) FindFirstPage(ctx context.Context, filters queries.TransactionFilters, limit int32) ([]*queries.TransactionView, error) {
	return s.list(ctx, filters, nil, uuid.Nil, limit)
}

func (s TransactionReadStore) FindKeyset(ctx context.Context, filters queries.TransactionFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.TransactionView, error) {
	return s.list(ctx, filters, &lastCreatedAt, lastID, limit)
}

func (s TransactionReadStore) list(ctx context.Context, filters queries.TransactionFilters, lastCreatedAt *time.Time, lastID uuid.UUID, limit int32) ([]*queries.TransactionView, error) {
	ds, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	recs := slices.Clone(ds.transactions)
	sortTransactionsDesc(recs)

	out := make([]*queries.TransactionView, 0, limit)
	for _, rec := range recs {
		if int32(len(out)) >= limit {
			break
		}
		if lastCreatedAt != nil && !afterCursor(rec.CreatedAt, rec.ID, *lastCreatedAt, lastID) {
			continue
		}
		if !matchesTransaction(rec, filters) {
			continue
		}
		out = append(out, toTransactionView(rec))
	}
	return out, nil
}

func (s TransactionReadStore) Stats(ctx context.Context, actorID *uuid.UUID, since time.Time) (*queries.TransactionStats, error) {
	ds, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	stats := &queries.TransactionStats{
		CountsByType: map[string]int64{
			ledger.TypeRedemption.String(): 0,
			ledger.TypeCredit.String():     0,
			ledger.TypeDebit.String():      0,
			ledger.TypeAdjustment.String(): 0,
		},
		Since: since,
	}
	for _, rec := range ds.transactions {
		if actorID != nil && rec.ActorID != *actorID {
			continue
		}
		stats.CountsByType[rec.Type]++
		if rec.Amount > 0 {
			stats.TotalEarned += rec.Amount
		}
		if rec.Type == ledger.TypeRedemption.String() {
			stats.TotalRedeemed -= rec.Amount
		}
		if !rec.CreatedAt.Before(since) {
			stats.RecentCount++
		}
	}
	return stats, nil
}

func matchesTransaction(rec transactionRecord, f queries.TransactionFilters) bool {
	if f.ActorID != nil && rec.ActorID != *f.ActorID {
		return false
	}
	if f.Type != nil && rec.Type != *f.Type {
		return false
	}
	if f.From != nil && rec.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !rec.CreatedAt.Before(*f.To) {
		return false
	}
	return true
}

func toTransactionView(rec transactionRecord) *queries.TransactionView {
	return &queries.TransactionView{
		ID:            rec.ID,
		ActorID:       rec.ActorID,
		Type:          rec.Type,
		Amount:        rec.Amount,
		BalanceBefore: rec.BalanceBefore,
		BalanceAfter:  rec.BalanceAfter,
		Reason:        rec.Reason,
		ProductID:     rec.ProductID,
		ProductName:   rec.ProductName,
		ProductCost:   rec.ProductCost,
		CreatedAt:     rec.CreatedAt,
	}
}

func compareKeyDesc(aAt time.Time, aID uuid.UUID, bAt time.Time, bID uuid.UUID) int {
	if c := bAt.Compare(aAt); c != 0 {
		return c
	}
	return strings.Compare(bID.String(), aID.String())
}

// afterCursor reports whether (at, id) sorts strictly after the cursor in descending order.
func afterCursor(at time.Time, id uuid.UUID, cursorAt time.Time, cursorID uuid.UUID) bool {
	return compareKeyDesc(cursorAt, cursorID, at, id) < 0
}
