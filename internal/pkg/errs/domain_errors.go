package errs

import "errors"

// Sentinel errors shared by the command and query layers.
// Handlers translate these into HTTP statuses.
var (
	// Lookup errors
	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrAccountNotFound  = errors.New("account not found")

	// Redemption and ledger errors
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrOutOfStock         = errors.New("out of stock")
	ErrInvalidAmount      = errors.New("invalid amount")

	// Catalog errors
	ErrInvalidStock = errors.New("invalid stock")
	ErrInvalidPrice = errors.New("invalid price")

	// Access errors
	ErrNotAuthorized = errors.New("not authorized")

	// Upstream errors
	ErrTimeout             = errors.New("upstream timeout")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Idempotency errors
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyInProgress  = errors.New("idempotency in progress")
	ErrIdempotencyKeyReused   = errors.New("idempotency key reused with different request")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
