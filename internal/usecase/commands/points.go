package commands

import (
	"context"
	"encoding/json"

	"techpoints/internal/domain/account"
	"techpoints/internal/domain/ledger"
	"techpoints/internal/domain/redemption"
	reqdto "techpoints/internal/handler/dto/request"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
)

type AdjustmentResult struct {
	TransactionID uuid.UUID
	CustomerID    uuid.UUID
	Type          ledger.EntryType
	Amount        int64
	NewBalance    int64
	Degraded      bool
}

type PointsCommands interface {
	// AdjustPoints credits a positive amount or debits a negative one.
	AdjustPoints(ctx context.Context, req reqdto.AdjustPointsRequest, actorID uuid.UUID, actorRole account.Role, customerID uuid.UUID) (*AdjustmentResult, error)
}

type pointsCommandsImpl struct {
	uow       shared.UnitOfWork
	events    shared.EventPublisher
	clock     clock.Clock
	retention ledger.RetentionPolicy
}

func NewPointsCommands(
	uow shared.UnitOfWork,
	events shared.EventPublisher,
	clock clock.Clock,
	retention ledger.RetentionPolicy,
) PointsCommands {
	return &pointsCommandsImpl{
		uow:       uow,
		events:    events,
		clock:     clock,
		retention: retention,
	}
}

// canAdjust: stores and admins may credit, only admins may debit.
func canAdjust(role account.Role, amount int64) bool {
	if amount < 0 {
		return role == account.RoleAdmin
	}
	return role == account.RoleAdmin || role == account.RoleStore
}

func (p *pointsCommandsImpl) AdjustPoints(
	ctx context.Context,
	req reqdto.AdjustPointsRequest,
	actorID uuid.UUID,
	actorRole account.Role,
	customerID uuid.UUID,
) (*AdjustmentResult, error) {
	amount := req.Amount
	if amount == 0 {
		return nil, errs.ErrInvalidAmount
	}
	if !canAdjust(actorRole, amount) {
		return nil, errs.ErrNotAuthorized
	}
	reason := req.NormalizedReason()

	var (
		result *AdjustmentResult
		event  shared.PointsAdjustedEvent
	)

	err := p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil
		now := p.clock.Now()

		target, err := tx.Accounts().FindByID(ctx, customerID)
		if err != nil {
			if isNotFound(err) {
				return redemption.ErrCustomerNotFound
			}
			return err
		}
		if !target.IsCustomer() || !target.IsActive() {
			return redemption.ErrCustomerNotFound
		}

		var newBalance int64
		if amount < 0 {
			balance, ok, err := tx.Accounts().DebitPoints(ctx, customerID, -amount)
			if err != nil {
				return err
			}
			if !ok {
				return &redemption.InsufficientPointsError{Balance: balance, Cost: -amount}
			}
			newBalance = balance
		} else {
			balance, err := tx.Accounts().CreditPoints(ctx, customerID, amount)
			if err != nil {
				return err
			}
			newBalance = balance
		}

		entry, err := ledger.NewAdjustment(customerID, amount, newBalance-amount, reason, now)
		if err != nil {
			return errs.Mark(err, errs.ErrDomainValidation)
		}
		if err := tx.Ledger().Append(ctx, entry); err != nil {
			return err
		}

		event = shared.PointsAdjustedEvent{
			TransactionID: entry.ID(),
			CustomerID:    customerID,
			ActorID:       actorID,
			Amount:        amount,
			NewBalance:    newBalance,
			Reason:        reason,
			Timestamp:     now,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return errs.Wrap(err, "failed to marshal points event")
		}
		if err := tx.Notifications().CreateJob(ctx, jobKindBalanceNotice, shared.TopicPointsAdjusted, payload, now); err != nil {
			return err
		}

		result = &AdjustmentResult{
			TransactionID: entry.ID(),
			CustomerID:    customerID,
			Type:          entry.Type(),
			Amount:        amount,
			NewBalance:    newBalance,
			Degraded:      tx.Degraded(),
		}
		return nil
	})
	if err != nil {
		return nil, mapRedemptionError(err)
	}

	p.events.Publish(shared.TopicPointsAdjusted, event)
	pruneLedger(ctx, p.uow, p.retention, p.clock)

	return result, nil
}
