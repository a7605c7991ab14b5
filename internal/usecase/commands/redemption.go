package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/ledger"
	"techpoints/internal/domain/product"
	"techpoints/internal/domain/redemption"
	reqdto "techpoints/internal/handler/dto/request"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	redemptionEndpoint  = "POST /api/redemptions"
	idempotencyLifetime = 24 * time.Hour
)

var ErrIdempotencyCheckFailed = errs.New("idempotency check failed")

type RedemptionResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	CostPoints    int64     `json:"cost_points"`
	NewBalance    int64     `json:"new_balance"`
	NewStock      int64     `json:"new_stock"`
	Message       string    `json:"message"`
	Degraded      bool      `json:"degraded"`
	IsReplayed    bool      `json:"-"`
}

type RedemptionCommands interface {
	// Redeem is the HTTP entry point. A completed key replays the stored result.
	Redeem(ctx context.Context, req reqdto.RedeemRequest, customerID, idempotencyKey uuid.UUID) (*RedemptionResult, error)
	// RedeemProduct runs one redemption with no replay protection.
	RedeemProduct(ctx context.Context, customerID, productID uuid.UUID) (*RedemptionResult, error)
}

type redemptionCommandsImpl struct {
	uow       shared.UnitOfWork
	events    shared.EventPublisher
	clock     clock.Clock
	retention ledger.RetentionPolicy
}

func NewRedemptionCommands(
	uow shared.UnitOfWork,
	events shared.EventPublisher,
	clock clock.Clock,
	retention ledger.RetentionPolicy,
) RedemptionCommands {
	return &redemptionCommandsImpl{
		uow:       uow,
		events:    events,
		clock:     clock,
		retention: retention,
	}
}

func (r *redemptionCommandsImpl) Redeem(
	ctx context.Context,
	req reqdto.RedeemRequest,
	customerID, idempotencyKey uuid.UUID,
) (*RedemptionResult, error) {
	if idempotencyKey == uuid.Nil {
		return nil, errs.ErrIdempotencyKeyRequired
	}

	requestHash := calculateRequestHash(req)
	replayed, err := r.handleIdempotency(ctx, idempotencyKey, customerID, requestHash)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return replayed, nil
	}

	result, err := r.execute(ctx, customerID, req.ProductID, &idempotencyKey)
	if err != nil {
		r.releaseKey(ctx, idempotencyKey, customerID)
		return nil, err
	}
	return result, nil
}

func (r *redemptionCommandsImpl) RedeemProduct(ctx context.Context, customerID, productID uuid.UUID) (*RedemptionResult, error) {
	return r.execute(ctx, customerID, productID, nil)
}

// handleIdempotency claims the key or resolves what an earlier claim left behind.
// A nil result with a nil error means this request owns the key.
func (r *redemptionCommandsImpl) handleIdempotency(
	ctx context.Context,
	idempotencyKey, customerID uuid.UUID,
	requestHash string,
) (*RedemptionResult, error) {
	expiresAt := r.clock.Now().Add(idempotencyLifetime)

	var replayed *RedemptionResult
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		replayed = nil

		claimed, err := tx.Idempotency().TryInsert(ctx, idempotencyKey, customerID, redemptionEndpoint, requestHash, expiresAt)
		if err != nil {
			return err
		}
		if claimed {
			return nil
		}

		existing, err := tx.Idempotency().Get(ctx, idempotencyKey, customerID)
		if err != nil {
			return err
		}
		if existing.RequestHash != requestHash {
			return errs.ErrIdempotencyKeyReused
		}

		switch existing.Status {
		case shared.IdempotencyStatusCompleted:
			var stored RedemptionResult
			if err := json.Unmarshal(existing.Response, &stored); err != nil {
				return errs.Wrap(err, "completed idempotency key has unreadable response")
			}
			stored.IsReplayed = true
			replayed = &stored
			return nil
		case shared.IdempotencyStatusProcessing:
			return errs.ErrIdempotencyInProgress
		default:
			return errs.New("invalid idempotency key status")
		}
	})
	if err != nil {
		if errs.Is(err, errs.ErrIdempotencyKeyReused) || errs.Is(err, errs.ErrIdempotencyInProgress) {
			return nil, err
		}
		if errs.Is(err, errs.ErrTimeout) || errs.Is(err, errs.ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	return replayed, nil
}

func (r *redemptionCommandsImpl) releaseKey(ctx context.Context, idempotencyKey, customerID uuid.UUID) {
	err := r.uow.Within(context.WithoutCancel(ctx), func(ctx context.Context, tx shared.Tx) error {
		return tx.Idempotency().Release(ctx, idempotencyKey, customerID)
	})
	if err != nil {
		slog.Warn("failed to release idempotency key", "key", idempotencyKey, "customer_id", customerID, "error", err.Error())
	}
}

func (r *redemptionCommandsImpl) execute(
	ctx context.Context,
	customerID, productID uuid.UUID,
	idempotencyKey *uuid.UUID,
) (*RedemptionResult, error) {
	var (
		result *RedemptionResult
		event  shared.ProductRedeemedEvent
	)

	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil
		now := r.clock.Now()

		p, err := r.findProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		customer, err := r.findCustomer(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if err := redemption.CheckEligibility(customer, p); err != nil {
			return err
		}

		cost := p.CostPoints()
		newBalance, ok, err := tx.Accounts().DebitPoints(ctx, customerID, cost)
		if err != nil {
			return err
		}
		if !ok {
			// Balance moved between the read and the conditional debit
			return &redemption.InsufficientPointsError{Balance: newBalance, Cost: cost}
		}

		newStock, ok, err := tx.Products().DecrementStock(ctx, productID)
		if err != nil {
			return err
		}
		if !ok {
			return &redemption.OutOfStockError{ProductID: productID, Stock: newStock}
		}

		snapshot := ledger.ProductSnapshot{ID: p.ID(), Name: p.Name(), CostPoints: cost}
		entry, err := ledger.NewRedemption(customerID, snapshot, newBalance+cost, now)
		if err != nil {
			return errs.Mark(err, errs.ErrDomainValidation)
		}
		if err := tx.Ledger().Append(ctx, entry); err != nil {
			return err
		}

		event = shared.ProductRedeemedEvent{
			TransactionID: entry.ID(),
			CustomerID:    customerID,
			ProductID:     p.ID(),
			ProductName:   p.Name(),
			CostPoints:    cost,
			NewBalance:    newBalance,
			NewStock:      newStock,
			Timestamp:     now,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return errs.Wrap(err, "failed to marshal redemption event")
		}
		if err := tx.Notifications().CreateJob(ctx, jobKindRedemptionReceipt, shared.TopicProductRedeemed, payload, now); err != nil {
			return err
		}

		result = &RedemptionResult{
			TransactionID: entry.ID(),
			ProductID:     p.ID(),
			ProductName:   p.Name(),
			CostPoints:    cost,
			NewBalance:    newBalance,
			NewStock:      newStock,
			Message:       fmt.Sprintf("Redeemed %s for %d points", p.Name(), cost),
			Degraded:      tx.Degraded(),
		}

		if idempotencyKey != nil {
			response, err := json.Marshal(result)
			if err != nil {
				return errs.Wrap(err, "failed to marshal redemption result")
			}
			if err := tx.Idempotency().MarkCompleted(ctx, *idempotencyKey, customerID, entry.ID(), response); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapRedemptionError(err)
	}

	r.events.Publish(shared.TopicProductRedeemed, event)
	pruneLedger(ctx, r.uow, r.retention, r.clock)

	return result, nil
}

func (r *redemptionCommandsImpl) findProduct(ctx context.Context, tx shared.Tx, id uuid.UUID) (*product.Product, error) {
	p, err := tx.Products().FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *redemptionCommandsImpl) findCustomer(ctx context.Context, tx shared.Tx, id uuid.UUID) (*account.Account, error) {
	acc, err := tx.Accounts().FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return acc, nil
}

func mapRedemptionError(err error) error {
	switch {
	case errs.Is(err, redemption.ErrProductNotFound):
		return errs.Mark(err, errs.ErrProductNotFound)
	case errs.Is(err, redemption.ErrCustomerNotFound):
		return errs.Mark(err, errs.ErrCustomerNotFound)
	case errs.Is(err, account.ErrInsufficientPoints):
		return errs.Mark(err, errs.ErrInsufficientPoints)
	case errs.Is(err, product.ErrOutOfStock):
		return errs.Mark(err, errs.ErrOutOfStock)
	case errs.Is(err, errs.ErrDomainValidation):
		return err
	default:
		return markUpstream(err)
	}
}
