package fallback

import (
	"context"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/ledger"
	"techpoints/internal/domain/product"
	"techpoints/internal/infra/localcache"
	"techpoints/internal/usecase/queries"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
)

// confirmed collects the rows a primary unit of work read or wrote. It is
// merged into the fallback dataset only after the primary has committed.
type confirmed struct {
	accounts map[uuid.UUID]accountRecord
	products map[uuid.UUID]productRecord
	removed  map[uuid.UUID]struct{}
	entries  []transactionRecord

	// Updates to rows this unit never read. They apply only to rows the
	// fallback already holds.
	balances map[uuid.UUID]counter
	stocks   map[uuid.UUID]counter
	logins   map[uuid.UUID]time.Time
}

type counter struct {
	value int64
	at    time.Time
}

func newConfirmed() *confirmed {
	c := &confirmed{}
	c.reset()
	return c
}

// reset drops what an aborted attempt recorded before the primary retries.
func (c *confirmed) reset() {
	c.accounts = make(map[uuid.UUID]accountRecord)
	c.products = make(map[uuid.UUID]productRecord)
	c.removed = make(map[uuid.UUID]struct{})
	c.entries = nil
	c.balances = make(map[uuid.UUID]counter)
	c.stocks = make(map[uuid.UUID]counter)
	c.logins = make(map[uuid.UUID]time.Time)
}

func (c *confirmed) empty() bool {
	return len(c.accounts) == 0 && len(c.products) == 0 && len(c.removed) == 0 && len(c.entries) == 0 &&
		len(c.balances) == 0 && len(c.stocks) == 0 && len(c.logins) == 0
}

func (c *confirmed) account(acc *account.Account) {
	if acc == nil {
		return
	}
	c.accounts[acc.ID()] = accountToRecord(acc)
}

func (c *confirmed) accountView(v *queries.AccountView) {
	if v == nil {
		return
	}
	c.accounts[v.ID] = accountRecord{
		ID:            v.ID,
		Email:         v.Email,
		Role:          v.Role,
		DisplayName:   v.DisplayName,
		PointsBalance: v.PointsBalance,
		IsActive:      v.IsActive,
		LastLogin:     v.LastLogin,
		CreatedAt:     storedTime(v.CreatedAt),
	}
}

func (c *confirmed) balance(id uuid.UUID, balance int64, at time.Time) {
	rec, ok := c.accounts[id]
	if !ok {
		c.balances[id] = counter{value: balance, at: at}
		return
	}
	rec.PointsBalance = balance
	rec.UpdatedAt = storedTime(at)
	c.accounts[id] = rec
}

func (c *confirmed) lastLogin(id uuid.UUID, at time.Time) {
	rec, ok := c.accounts[id]
	if !ok {
		c.logins[id] = at
		return
	}
	rec.LastLogin = &at
	c.accounts[id] = rec
}

func (c *confirmed) product(p *product.Product) {
	if p == nil {
		return
	}
	delete(c.removed, p.ID())
	c.products[p.ID()] = productToRecord(p)
}

func (c *confirmed) productView(v *queries.ProductView) {
	if v == nil {
		return
	}
	c.products[v.ID] = productRecord{
		ID:          v.ID,
		StoreID:     v.StoreID,
		Name:        v.Name,
		Description: v.Description,
		Category:    v.Category,
		PriceCents:  v.PriceCents,
		CostPoints:  v.CostPoints,
		Stock:       v.Stock,
		ImageURL:    v.ImageURL,
		CreatedAt:   storedTime(v.CreatedAt),
		UpdatedAt:   storedTime(v.UpdatedAt),
	}
}

func (c *confirmed) stock(id uuid.UUID, stock int64, at time.Time) {
	rec, ok := c.products[id]
	if !ok {
		c.stocks[id] = counter{value: stock, at: at}
		return
	}
	rec.Stock = stock
	rec.UpdatedAt = storedTime(at)
	c.products[id] = rec
}

func (c *confirmed) removeProduct(id uuid.UUID) {
	delete(c.products, id)
	c.removed[id] = struct{}{}
}

func (c *confirmed) entry(e *ledger.Entry) {
	c.entries = append(c.entries, entryToRecord(e))
}

func (c *confirmed) transactionView(v *queries.TransactionView) {
	if v == nil {
		return
	}
	c.entries = append(c.entries, transactionRecord{
		ID:            v.ID,
		ActorID:       v.ActorID,
		Type:          v.Type,
		Amount:        v.Amount,
		BalanceBefore: v.BalanceBefore,
		BalanceAfter:  v.BalanceAfter,
		Reason:        v.Reason,
		ProductID:     v.ProductID,
		ProductName:   v.ProductName,
		ProductCost:   v.ProductCost,
		CreatedAt:     storedTime(v.CreatedAt),
	})
}

// merge upserts confirmed rows, then applies counters to rows already stored.
// An account known only from a view keeps the password hash and update time
// already stored for it.
func (d *dataset) merge(c *confirmed) {
	for id, in := range c.accounts {
		existing := d.account(id)
		if existing == nil {
			d.accounts = append(d.accounts, in)
			d.touch(localcache.KeyUsers)
			continue
		}
		if in.PasswordHash == "" {
			in.PasswordHash = existing.PasswordHash
		}
		if in.UpdatedAt.IsZero() {
			in.UpdatedAt = existing.UpdatedAt
		}
		*existing = in
		d.touch(localcache.KeyUsers)
	}

	for id, b := range c.balances {
		if rec := d.account(id); rec != nil {
			rec.PointsBalance = b.value
			rec.UpdatedAt = storedTime(b.at)
			d.touch(localcache.KeyUsers)
		}
	}
	for id, at := range c.logins {
		if rec := d.account(id); rec != nil {
			rec.LastLogin = &at
			d.touch(localcache.KeyUsers)
		}
	}

	for id := range c.removed {
		kept := d.products[:0]
		for _, rec := range d.products {
			if rec.ID != id {
				kept = append(kept, rec)
			}
		}
		if len(kept) != len(d.products) {
			d.products = kept
			d.touch(localcache.KeyProducts)
		}
	}
	for id, in := range c.products {
		if existing := d.product(id); existing != nil {
			*existing = in
		} else {
			d.products = append(d.products, in)
		}
		d.touch(localcache.KeyProducts)
	}
	for id, st := range c.stocks {
		if rec := d.product(id); rec != nil {
			rec.Stock = st.value
			rec.UpdatedAt = storedTime(st.at)
			d.touch(localcache.KeyProducts)
		}
	}

	known := make(map[uuid.UUID]struct{}, len(d.transactions))
	for _, rec := range d.transactions {
		known[rec.ID] = struct{}{}
	}
	for _, in := range c.entries {
		if _, ok := known[in.ID]; ok {
			continue
		}
		known[in.ID] = struct{}{}
		d.transactions = append(d.transactions, in)
		d.touch(localcache.KeyTransactions)
	}
}

// refresh writes rows confirmed by the primary store into the fallback dataset.
func (u *UoW) refresh(ctx context.Context, c *confirmed) error {
	if c.empty() {
		return nil
	}
	return u.cache.Atomic(ctx, datasetKeys, func(view localcache.AtomicView) error {
		ds, err := loadDataset(viewReader(view))
		if err != nil {
			return err
		}
		ds.merge(c)
		return ds.save(view, u.ttl)
	})
}

// mirrorTx records what fn reads and writes through the primary transaction.
type mirrorTx struct {
	shared.Tx
	seen *confirmed
	now  func() time.Time
}

func (t *mirrorTx) Accounts() shared.AccountRepository {
	return &mirrorAccounts{AccountRepository: t.Tx.Accounts(), seen: t.seen, now: t.now}
}

func (t *mirrorTx) Products() shared.ProductRepository {
	return &mirrorProducts{ProductRepository: t.Tx.Products(), seen: t.seen, now: t.now}
}

func (t *mirrorTx) Ledger() shared.LedgerRepository {
	return &mirrorLedger{LedgerRepository: t.Tx.Ledger(), seen: t.seen}
}

type mirrorAccounts struct {
	shared.AccountRepository
	seen *confirmed
	now  func() time.Time
}

func (r *mirrorAccounts) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	acc, err := r.AccountRepository.FindByID(ctx, id)
	if err == nil {
		r.seen.account(acc)
	}
	return acc, err
}

func (r *mirrorAccounts) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	acc, err := r.AccountRepository.FindByEmail(ctx, email)
	if err == nil {
		r.seen.account(acc)
	}
	return acc, err
}

func (r *mirrorAccounts) Create(ctx context.Context, acc *account.Account) error {
	if err := r.AccountRepository.Create(ctx, acc); err != nil {
		return err
	}
	r.seen.account(acc)
	return nil
}

func (r *mirrorAccounts) DebitPoints(ctx context.Context, id uuid.UUID, amount int64) (int64, bool, error) {
	balance, ok, err := r.AccountRepository.DebitPoints(ctx, id, amount)
	if err == nil {
		r.seen.balance(id, balance, r.now())
	}
	return balance, ok, err
}

func (r *mirrorAccounts) CreditPoints(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	balance, err := r.AccountRepository.CreditPoints(ctx, id, amount)
	if err == nil {
		r.seen.balance(id, balance, r.now())
	}
	return balance, err
}

func (r *mirrorAccounts) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := r.AccountRepository.UpdateLastLogin(ctx, id, at); err != nil {
		return err
	}
	r.seen.lastLogin(id, at)
	return nil
}

type mirrorProducts struct {
	shared.ProductRepository
	seen *confirmed
	now  func() time.Time
}

func (r *mirrorProducts) FindByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	p, err := r.ProductRepository.FindByID(ctx, id)
	if err == nil {
		r.seen.product(p)
	}
	return p, err
}

func (r *mirrorProducts) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	p, err := r.ProductRepository.FindByIDForUpdate(ctx, id)
	if err == nil {
		r.seen.product(p)
	}
	return p, err
}

func (r *mirrorProducts) Create(ctx context.Context, p *product.Product) error {
	if err := r.ProductRepository.Create(ctx, p); err != nil {
		return err
	}
	r.seen.product(p)
	return nil
}

func (r *mirrorProducts) Update(ctx context.Context, p *product.Product) error {
	if err := r.ProductRepository.Update(ctx, p); err != nil {
		return err
	}
	r.seen.product(p)
	return nil
}

func (r *mirrorProducts) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.seen.removeProduct(id)
	return nil
}

func (r *mirrorProducts) DecrementStock(ctx context.Context, id uuid.UUID) (int64, bool, error) {
	stock, ok, err := r.ProductRepository.DecrementStock(ctx, id)
	if err == nil && ok {
		r.seen.stock(id, stock, r.now())
	}
	return stock, ok, err
}

type mirrorLedger struct {
	shared.LedgerRepository
	seen *confirmed
}

func (r *mirrorLedger) Append(ctx context.Context, e *ledger.Entry) error {
	if err := r.LedgerRepository.Append(ctx, e); err != nil {
		return err
	}
	r.seen.entry(e)
	return nil
}
