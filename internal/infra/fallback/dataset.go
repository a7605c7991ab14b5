// Package fallback is the non-authoritative store used in local persistence
// mode and when the primary database is unreachable. Its whole dataset lives
// under a few fixed cache keys and every unit of work is applied through one
// atomic cache update.
package fallback

import (
	"time"

	"techpoints/internal/infra/localcache"
	"techpoints/internal/pkg/errs"

	"github.com/google/uuid"
)

var datasetKeys = []string{
	localcache.KeyUsers,
	localcache.KeyProducts,
	localcache.KeyTransactions,
	localcache.KeyIdempotency,
	localcache.KeyNotifications,
}

type accountRecord struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"password_hash"`
	Role          string     `json:"role"`
	DisplayName   string     `json:"display_name"`
	PointsBalance int64      `json:"points_balance"`
	IsActive      bool       `json:"is_active"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type productRecord struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	CostPoints  int64     `json:"cost_points"`
	Stock       int64     `json:"stock"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type transactionRecord struct {
	ID            uuid.UUID  `json:"id"`
	ActorID       uuid.UUID  `json:"actor_id"`
	Type          string     `json:"type"`
	Amount        int64      `json:"amount"`
	BalanceBefore int64      `json:"balance_before"`
	BalanceAfter  int64      `json:"balance_after"`
	Reason        string     `json:"reason"`
	ProductID     *uuid.UUID `json:"product_id,omitempty"`
	ProductName   *string    `json:"product_name,omitempty"`
	ProductCost   *int64     `json:"product_cost,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type idempotencyRecord struct {
	Key         uuid.UUID  `json:"key"`
	AccountID   uuid.UUID  `json:"account_id"`
	Endpoint    string     `json:"endpoint"`
	RequestHash string     `json:"request_hash"`
	Status      string     `json:"status"`
	ResultID    *uuid.UUID `json:"result_id,omitempty"`
	Response    []byte     `json:"response,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

type notificationRecord struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Topic     string    `json:"topic"`
	Payload   []byte    `json:"payload"`
	RunAt     time.Time `json:"run_at"`
	Attempts  int       `json:"attempts"`
	Status    string    `json:"status"`
	LastError *string   `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type dataset struct {
	accounts      []accountRecord
	products      []productRecord
	transactions  []transactionRecord
	idempotency   []idempotencyRecord
	notifications []notificationRecord

	dirty map[string]bool
}

type entryReader func(key string) (localcache.Entry, bool, error)

func loadDataset(read entryReader) (*dataset, error) {
	ds := &dataset{dirty: make(map[string]bool)}
	if err := decodeKey(read, localcache.KeyUsers, &ds.accounts); err != nil {
		return nil, err
	}
	if err := decodeKey(read, localcache.KeyProducts, &ds.products); err != nil {
		return nil, err
	}
	if err := decodeKey(read, localcache.KeyTransactions, &ds.transactions); err != nil {
		return nil, err
	}
	if err := decodeKey(read, localcache.KeyIdempotency, &ds.idempotency); err != nil {
		return nil, err
	}
	if err := decodeKey(read, localcache.KeyNotifications, &ds.notifications); err != nil {
		return nil, err
	}
	return ds, nil
}

func decodeKey(read entryReader, key string, dst any) error {
	e, ok, err := read(key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := e.Decode(dst); err != nil {
		return errs.Wrap(err, "decode fallback key "+key)
	}
	return nil
}

func (d *dataset) touch(key string) { d.dirty[key] = true }

// save writes back only the keys changed during the unit of work.
func (d *dataset) save(view localcache.AtomicView, ttl time.Duration) error {
	values := map[string]any{
		localcache.KeyUsers:         d.accounts,
		localcache.KeyProducts:      d.products,
		localcache.KeyTransactions:  d.transactions,
		localcache.KeyIdempotency:   d.idempotency,
		localcache.KeyNotifications: d.notifications,
	}
	for _, key := range datasetKeys {
		if !d.dirty[key] {
			continue
		}
		if err := view.Set(key, values[key], ttl); err != nil {
			return err
		}
	}
	return nil
}

func (d *dataset) account(id uuid.UUID) *accountRecord {
	for i := range d.accounts {
		if d.accounts[i].ID == id {
			return &d.accounts[i]
		}
	}
	return nil
}

func (d *dataset) product(id uuid.UUID) *productRecord {
	for i := range d.products {
		if d.products[i].ID == id {
			return &d.products[i]
		}
	}
	return nil
}

func viewReader(view localcache.AtomicView) entryReader {
	return func(key string) (localcache.Entry, bool, error) {
		e, ok := view.Get(key)
		return e, ok, nil
	}
}
