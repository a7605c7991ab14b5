package fallback

import (
	"context"
	"slices"
	"strings"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/ledger"
	"techpoints/internal/domain/product"
	"techpoints/internal/infra"
	"techpoints/internal/infra/localcache"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
)

type accountRepository struct {
	ds    *dataset
	clock clock.Clock
}

func (r *accountRepository) FindByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	rec := r.ds.account(id)
	if rec == nil {
		return nil, infra.WrapRepoErr("account not found", nil, infra.KindNotFound)
	}
	return accountFromRecord(*rec), nil
}

func (r *accountRepository) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	for _, rec := range r.ds.accounts {
		if strings.EqualFold(rec.Email, email) {
			return accountFromRecord(rec), nil
		}
	}
	return nil, infra.WrapRepoErr("account not found", nil, infra.KindNotFound)
}

func (r *accountRepository) Create(_ context.Context, acc *account.Account) error {
	for _, rec := range r.ds.accounts {
		if rec.ID == acc.ID() || strings.EqualFold(rec.Email, acc.Email().Value()) {
			return infra.WrapRepoErr("account already exists", nil, infra.KindDuplicateKey)
		}
	}
	r.ds.accounts = append(r.ds.accounts, accountToRecord(acc))
	r.ds.touch(localcache.KeyUsers)
	return nil
}

func (r *accountRepository) DebitPoints(_ context.Context, id uuid.UUID, amount int64) (int64, bool, error) {
	rec := r.ds.account(id)
	if rec == nil {
		return 0, false, nil
	}
	if rec.PointsBalance < amount {
		return rec.PointsBalance, false, nil
	}
	rec.PointsBalance -= amount
	rec.UpdatedAt = r.clock.Now()
	r.ds.touch(localcache.KeyUsers)
	return rec.PointsBalance, true, nil
}

func (r *accountRepository) CreditPoints(_ context.Context, id uuid.UUID, amount int64) (int64, error) {
	rec := r.ds.account(id)
	if rec == nil {
		return 0, infra.WrapRepoErr("account not found", nil, infra.KindNotFound)
	}
	if rec.PointsBalance+amount < 0 {
		return 0, infra.WrapRepoErr("points balance would go negative", nil, infra.KindCheckViolated)
	}
	rec.PointsBalance += amount
	rec.UpdatedAt = r.clock.Now()
	r.ds.touch(localcache.KeyUsers)
	return rec.PointsBalance, nil
}

func (r *accountRepository) Count(_ context.Context) (int64, error) {
	return int64(len(r.ds.accounts)), nil
}

func (r *accountRepository) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	rec := r.ds.account(id)
	if rec == nil {
		return nil
	}
	rec.LastLogin = &at
	r.ds.touch(localcache.KeyUsers)
	return nil
}

type productRepository struct {
	ds    *dataset
	clock clock.Clock
}

func (r *productRepository) FindByID(_ context.Context, id uuid.UUID) (*product.Product, error) {
	rec := r.ds.product(id)
	if rec == nil {
		return nil, infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return productFromRecord(*rec), nil
}

// FindByIDForUpdate needs no lock: the whole unit already runs under one atomic update.
func (r *productRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *productRepository) Create(_ context.Context, p *product.Product) error {
	if r.ds.account(p.StoreID()) == nil {
		return infra.WrapRepoErr("store does not exist", nil, infra.KindForeignKeyViolated)
	}
	if r.ds.product(p.ID()) != nil {
		return infra.WrapRepoErr("product already exists", nil, infra.KindDuplicateKey)
	}
	r.ds.products = append(r.ds.products, productToRecord(p))
	r.ds.touch(localcache.KeyProducts)
	return nil
}

func (r *productRepository) Update(_ context.Context, p *product.Product) error {
	rec := r.ds.product(p.ID())
	if rec == nil {
		return infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	*rec = productToRecord(p)
	r.ds.touch(localcache.KeyProducts)
	return nil
}

func (r *productRepository) Delete(_ context.Context, id uuid.UUID) error {
	idx := slices.IndexFunc(r.ds.products, func(rec productRecord) bool { return rec.ID == id })
	if idx < 0 {
		return infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	r.ds.products = slices.Delete(r.ds.products, idx, idx+1)
	r.ds.touch(localcache.KeyProducts)
	return nil
}

func (r *productRepository) DecrementStock(_ context.Context, id uuid.UUID) (int64, bool, error) {
	rec := r.ds.product(id)
	if rec == nil || rec.Stock <= 0 {
		return 0, false, nil
	}
	rec.Stock--
	rec.UpdatedAt = r.clock.Now()
	r.ds.touch(localcache.KeyProducts)
	return rec.Stock, true, nil
}

type ledgerRepository struct {
	ds *dataset
}

func (r *ledgerRepository) Append(_ context.Context, e *ledger.Entry) error {
	if err := e.Consistent(); err != nil {
		return err
	}
	if r.ds.account(e.ActorID()) == nil {
		return infra.WrapRepoErr("actor does not exist", nil, infra.KindForeignKeyViolated)
	}
	r.ds.transactions = append(r.ds.transactions, entryToRecord(e))
	r.ds.touch(localcache.KeyTransactions)
	return nil
}

func (r *ledgerRepository) Prune(_ context.Context, policy ledger.RetentionPolicy, now time.Time) (int64, error) {
	if !policy.Enabled() {
		return 0, nil
	}

	kept := make([]transactionRecord, 0, len(r.ds.transactions))
	for _, rec := range r.ds.transactions {
		if !policy.Expired(rec.CreatedAt, now) {
			kept = append(kept, rec)
		}
	}

	sortTransactionsDesc(kept)
	if overflow := policy.Overflow(len(kept)); overflow > 0 {
		kept = kept[:len(kept)-overflow]
	}

	removed := int64(len(r.ds.transactions) - len(kept))
	if removed > 0 {
		r.ds.transactions = kept
		r.ds.touch(localcache.KeyTransactions)
	}
	return removed, nil
}

type idempotencyRepository struct {
	ds    *dataset
	clock clock.Clock
}

func (r *idempotencyRepository) find(key, accountID uuid.UUID) *idempotencyRecord {
	for i := range r.ds.idempotency {
		rec := &r.ds.idempotency[i]
		if rec.Key == key && rec.AccountID == accountID {
			return rec
		}
	}
	return nil
}

func (r *idempotencyRepository) TryInsert(_ context.Context, key, accountID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	fresh := idempotencyRecord{
		Key:         key,
		AccountID:   accountID,
		Endpoint:    endpoint,
		RequestHash: requestHash,
		Status:      shared.IdempotencyStatusProcessing,
		ExpiresAt:   expiresAt,
	}
	if rec := r.find(key, accountID); rec != nil {
		if rec.ExpiresAt.After(r.clock.Now()) {
			return false, nil
		}
		*rec = fresh
	} else {
		r.ds.idempotency = append(r.ds.idempotency, fresh)
	}
	r.ds.touch(localcache.KeyIdempotency)
	return true, nil
}

func (r *idempotencyRepository) Get(_ context.Context, key, accountID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec := r.find(key, accountID)
	if rec == nil {
		return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return &shared.IdempotencyRecord{
		Key:         rec.Key,
		AccountID:   rec.AccountID,
		Endpoint:    rec.Endpoint,
		Status:      rec.Status,
		RequestHash: rec.RequestHash,
		ResultID:    rec.ResultID,
		Response:    rec.Response,
		ExpiresAt:   rec.ExpiresAt,
	}, nil
}

func (r *idempotencyRepository) MarkCompleted(_ context.Context, key, accountID, resultID uuid.UUID, response []byte) error {
	rec := r.find(key, accountID)
	if rec == nil {
		return nil
	}
	rec.Status = shared.IdempotencyStatusCompleted
	rec.ResultID = &resultID
	rec.Response = response
	r.ds.touch(localcache.KeyIdempotency)
	return nil
}

func (r *idempotencyRepository) Release(_ context.Context, key, accountID uuid.UUID) error {
	idx := slices.IndexFunc(r.ds.idempotency, func(rec idempotencyRecord) bool {
		return rec.Key == key && rec.AccountID == accountID && rec.Status == shared.IdempotencyStatusProcessing
	})
	if idx < 0 {
		return nil
	}
	r.ds.idempotency = slices.Delete(r.ds.idempotency, idx, idx+1)
	r.ds.touch(localcache.KeyIdempotency)
	return nil
}

type notificationRepository struct {
	ds    *dataset
	clock clock.Clock
}

func (r *notificationRepository) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	r.ds.notifications = append(r.ds.notifications, notificationRecord{
		ID:        uuid.New(),
		Kind:      kind,
		Topic:     topic,
		Payload:   payload,
		RunAt:     runAt,
		Status:    shared.NotificationStatusQueued,
		CreatedAt: r.clock.Now(),
	})
	r.ds.touch(localcache.KeyNotifications)
	return nil
}

func (r *notificationRepository) ClaimDue(_ context.Context, now time.Time, limit int) ([]shared.NotificationJob, error) {
	var jobs []shared.NotificationJob
	for _, rec := range r.ds.notifications {
		if rec.Status != shared.NotificationStatusQueued || rec.RunAt.After(now) {
			continue
		}
		jobs = append(jobs, shared.NotificationJob{
			ID:       rec.ID,
			Kind:     rec.Kind,
			Topic:    rec.Topic,
			Payload:  rec.Payload,
			RunAt:    rec.RunAt,
			Attempts: rec.Attempts,
			Status:   rec.Status,
		})
	}
	slices.SortStableFunc(jobs, func(a, b shared.NotificationJob) int { return a.RunAt.Compare(b.RunAt) })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (r *notificationRepository) UpdateJobStatus(_ context.Context, jobID uuid.UUID, status string, lastError *string, nextRunAt time.Time) error {
	for i := range r.ds.notifications {
		rec := &r.ds.notifications[i]
		if rec.ID != jobID {
			continue
		}
		rec.Status = status
		rec.Attempts++
		rec.LastError = lastError
		rec.RunAt = nextRunAt
		r.ds.touch(localcache.KeyNotifications)
		return nil
	}
	return infra.WrapRepoErr("notification job not found", nil, infra.KindNotFound)
}

func accountFromRecord(rec accountRecord) *account.Account {
	return account.ReconstructAccount(
		rec.ID,
		account.ReconstructEmail(rec.Email),
		rec.PasswordHash,
		account.Role(rec.Role),
		rec.DisplayName,
		rec.PointsBalance,
		rec.IsActive,
		rec.LastLogin,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
}

func accountToRecord(acc *account.Account) accountRecord {
	return accountRecord{
		ID:            acc.ID(),
		Email:         acc.Email().Value(),
		PasswordHash:  acc.PasswordHash(),
		Role:          acc.Role().String(),
		DisplayName:   acc.DisplayName(),
		PointsBalance: acc.PointsBalance(),
		IsActive:      acc.IsActive(),
		LastLogin:     acc.LastLogin(),
		CreatedAt:     storedTime(acc.CreatedAt()),
		UpdatedAt:     storedTime(acc.UpdatedAt()),
	}
}

func productFromRecord(rec productRecord) *product.Product {
	return product.ReconstructProduct(
		rec.ID,
		rec.StoreID,
		rec.Name,
		rec.Description,
		rec.Category,
		rec.PriceCents,
		rec.CostPoints,
		rec.Stock,
		rec.ImageURL,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
}

func productToRecord(p *product.Product) productRecord {
	return productRecord{
		ID:          p.ID(),
		StoreID:     p.StoreID(),
		Name:        p.Name(),
		Description: p.Description(),
		Category:    p.Category(),
		PriceCents:  p.PriceCents(),
		CostPoints:  p.CostPoints(),
		Stock:       p.Stock(),
		ImageURL:    p.ImageURL(),
		CreatedAt:   storedTime(p.CreatedAt()),
		UpdatedAt:   storedTime(p.UpdatedAt()),
	}
}

func entryToRecord(e *ledger.Entry) transactionRecord {
	rec := transactionRecord{
		ID:            e.ID(),
		ActorID:       e.ActorID(),
		Type:          e.Type().String(),
		Amount:        e.Amount(),
		BalanceBefore: e.BalanceBefore(),
		BalanceAfter:  e.BalanceAfter(),
		Reason:        e.Reason(),
		CreatedAt:     storedTime(e.CreatedAt()),
	}
	if snap := e.Product(); snap != nil {
		id, name, cost := snap.ID, snap.Name, snap.CostPoints
		rec.ProductID = &id
		rec.ProductName = &name
		rec.ProductCost = &cost
	}
	return rec
}

// Newest first, ties broken by id, matching the keyset order of the database.
func sortTransactionsDesc(recs []transactionRecord) {
	slices.SortFunc(recs, func(a, b transactionRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID.String(), a.ID.String())
	})
}

// storedTime matches the microsecond precision of the database and of list cursors.
func storedTime(t time.Time) time.Time {
	return t.Truncate(time.Microsecond)
}
