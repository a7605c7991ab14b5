package shared

import (
	"context"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/ledger"
	"techpoints/internal/domain/product"

	"github.com/google/uuid"
)

// UnitOfWork is implemented by the authoritative Postgres store and by the
// local fallback store. Commands never know which one they run against.
type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Accounts() AccountRepository
	Products() ProductRepository
	Ledger() LedgerRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	// Degraded is true when the transaction runs on the non-authoritative fallback store.
	Degraded() bool
}

type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	FindByEmail(ctx context.Context, email string) (*account.Account, error)
	Create(ctx context.Context, acc *account.Account) error
	// DebitPoints subtracts amount only if the balance covers it. When ok is
	// false, balance is the current balance that refused the debit.
	DebitPoints(ctx context.Context, id uuid.UUID, amount int64) (balance int64, ok bool, err error)
	CreditPoints(ctx context.Context, id uuid.UUID, amount int64) (newBalance int64, err error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
	// FindByIDForUpdate locks the product until the unit of work ends. Writers
	// that save the whole row must read it this way so a concurrent stock
	// decrement is not overwritten.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error)
	Create(ctx context.Context, p *product.Product) error
	Update(ctx context.Context, p *product.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DecrementStock takes one unit only if stock is positive. ok is false otherwise.
	DecrementStock(ctx context.Context, id uuid.UUID) (newStock int64, ok bool, err error)
}

type LedgerRepository interface {
	Append(ctx context.Context, e *ledger.Entry) error
	Prune(ctx context.Context, policy ledger.RetentionPolicy, now time.Time) (int64, error)
}

type IdempotencyRepository interface {
	// TryInsert claims key for the account. claimed is false when a live claim already exists.
	TryInsert(ctx context.Context, key, accountID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (claimed bool, err error)
	Get(ctx context.Context, key, accountID uuid.UUID) (*IdempotencyRecord, error)
	MarkCompleted(ctx context.Context, key, accountID, resultID uuid.UUID, response []byte) error
	Release(ctx context.Context, key, accountID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
	// ClaimDue returns queued jobs whose run_at has passed, oldest first.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]NotificationJob, error)
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string, lastError *string, nextRunAt time.Time) error
}
