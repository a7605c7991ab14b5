//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/product"
	"techpoints/internal/infra/fallback"
	"techpoints/internal/infra/localcache"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/usecase/queries"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type published struct {
	Topic   string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(topic string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Topic: topic, Payload: payload})
}

func (p *recordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}

type env struct {
	clock  *clock.MockClock
	cache  localcache.Cache
	uow    *fallback.UoW
	events *recordingPublisher
}

func newEnv() *env {
	clk := clock.NewMockClock(baseTime)
	cache := localcache.NewMemoryCache(clk)
	return &env{
		clock:  clk,
		cache:  cache,
		uow:    fallback.NewUoW(cache, clk, 0),
		events: &recordingPublisher{},
	}
}

func (e *env) createAccount(t *testing.T, role account.Role, emailAddr string, balance int64) *account.Account {
	t.Helper()
	email, err := account.NewEmail(emailAddr)
	require.NoError(t, err)
	acc, err := account.NewAccount(email, "$2a$04$unused", role, "Test "+role.String(), balance, e.clock.Now())
	require.NoError(t, err)
	err = e.uow.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Accounts().Create(ctx, acc)
	})
	require.NoError(t, err)
	return acc
}

func (e *env) createProduct(t *testing.T, storeID uuid.UUID, name string, priceCents, stock int64) *product.Product {
	t.Helper()
	p, err := product.NewProduct(storeID, product.Attributes{Name: name, Category: "gear", PriceCents: priceCents, Stock: stock}, e.clock.Now())
	require.NoError(t, err)
	err = e.uow.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Products().Create(ctx, p)
	})
	require.NoError(t, err)
	return p
}

func (e *env) balance(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	var acc *account.Account
	err := e.uow.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		acc, err = tx.Accounts().FindByID(ctx, id)
		return err
	})
	require.NoError(t, err)
	return acc.PointsBalance()
}

func (e *env) stock(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	var p *product.Product
	err := e.uow.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		p, err = tx.Products().FindByID(ctx, id)
		return err
	})
	require.NoError(t, err)
	return p.Stock()
}

func (e *env) transactions(t *testing.T, actorID uuid.UUID) []*queries.TransactionView {
	t.Helper()
	store := fallback.TransactionReadStore{ReadStore: fallback.NewReadStore(e.cache)}
	views, err := store.FindFirstPage(context.Background(), queries.TransactionFilters{ActorID: &actorID}, 100)
	require.NoError(t, err)
	return views
}
