package httperr

import (
	"net/http"

	"techpoints/internal/domain/redemption"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/usecase/commands"
	"techpoints/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// Detail is the structured part of a failed operation.
type Detail struct {
	Kind    string         `json:"kind"`
	Context map[string]any `json:"context,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

type mapping struct {
	target  error
	status  int
	kind    string
	message string
}

// Ordered: the first matching sentinel wins.
var mappings = []mapping{
	{errs.ErrProductNotFound, http.StatusNotFound, "ProductNotFound", "Product not found"},
	{errs.ErrCustomerNotFound, http.StatusNotFound, "CustomerNotFound", "Customer not found"},
	{errs.ErrAccountNotFound, http.StatusNotFound, "AccountNotFound", "Account not found"},
	{errs.ErrInsufficientPoints, http.StatusConflict, "InsufficientPoints", "Insufficient points"},
	{errs.ErrOutOfStock, http.StatusConflict, "OutOfStock", "Product is out of stock"},
	{errs.ErrInvalidAmount, http.StatusBadRequest, "InvalidAmount", "Amount must be non-zero"},
	{errs.ErrInvalidStock, http.StatusUnprocessableEntity, "InvalidStock", "Stock must be zero or greater"},
	{errs.ErrInvalidPrice, http.StatusUnprocessableEntity, "InvalidPrice", "Price must be greater than zero"},
	{errs.ErrNotAuthorized, http.StatusForbidden, "NotAuthorized", "Not authorized"},
	{errs.ErrIdempotencyKeyRequired, http.StatusBadRequest, "IdempotencyKeyRequired", "Idempotency-Key header is required"},
	{errs.ErrIdempotencyInProgress, http.StatusConflict, "IdempotencyInProgress", "Request is currently being processed"},
	{errs.ErrIdempotencyKeyReused, http.StatusConflict, "IdempotencyKeyReused", "Idempotency key was used with a different request"},
	{errs.ErrDomainValidation, http.StatusUnprocessableEntity, "ValidationFailed", "Domain validation failed"},
	{commands.ErrEmailTaken, http.StatusConflict, "EmailTaken", "Email already registered"},
	{commands.ErrInvalidCredentials, http.StatusUnauthorized, "InvalidCredentials", "Invalid email or password"},
	{commands.ErrAuthenticationFailed, http.StatusUnauthorized, "InvalidCredentials", "Invalid email or password"},
	{commands.ErrTokenValidation, http.StatusUnauthorized, "InvalidToken", "Invalid or expired token"},
	{commands.ErrAccountInactive, http.StatusForbidden, "AccountInactive", "Account is inactive"},
	{queries.ErrAccountInactive, http.StatusForbidden, "AccountInactive", "Account is inactive"},
	{commands.ErrImageTooLarge, http.StatusRequestEntityTooLarge, "ImageTooLarge", "Image is too large"},
	{commands.ErrUnsupportedImage, http.StatusUnsupportedMediaType, "UnsupportedImage", "Unsupported image type"},
	{queries.ErrInvalidCursor, http.StatusBadRequest, "InvalidCursor", "Invalid cursor"},
	{queries.ErrInvalidTimeRange, http.StatusBadRequest, "InvalidTimeRange", "from must be before to"},
	{errs.ErrTimeout, http.StatusGatewayTimeout, "Timeout", "Upstream timed out"},
	{errs.ErrUpstreamUnavailable, http.StatusServiceUnavailable, "UpstreamUnavailable", "Upstream unavailable"},
}

// AbortWithDomainError translates a use case error into its HTTP status and
// structured detail. Unknown errors become a 500.
func AbortWithDomainError(c *gin.Context, err error) {
	for _, m := range mappings {
		if !errs.Is(err, m.target) {
			continue
		}
		AbortWithError(c, m.status, err, m.message, Detail{Kind: m.kind, Context: contextOf(err)})
		return
	}
	AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
}

func contextOf(err error) map[string]any {
	var insufficient *redemption.InsufficientPointsError
	if errs.As(err, &insufficient) {
		return map[string]any{
			"balance":   insufficient.Balance,
			"cost":      insufficient.Cost,
			"shortfall": insufficient.Shortfall(),
		}
	}
	var outOfStock *redemption.OutOfStockError
	if errs.As(err, &outOfStock) {
		return map[string]any{
			"product_id": outOfStock.ProductID.String(),
			"stock":      outOfStock.Stock,
		}
	}
	return nil
}
