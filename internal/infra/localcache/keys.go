package localcache

import "github.com/google/uuid"

// Fixed keys of the fallback dataset.
const (
	KeyUsers         = "users"
	KeyProducts      = "products"
	KeyTransactions  = "transactions"
	KeyIdempotency   = "idempotency"
	KeyNotifications = "notifications"
	KeyActiveUser    = "activeUser"
)

const productViewPrefix = "products:view:"

func ProductViewKey(id uuid.UUID) string {
	return productViewPrefix + id.String()
}
