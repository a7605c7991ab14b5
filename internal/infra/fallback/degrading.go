package fallback

import (
	"context"
	"log/slog"
	"time"

	"techpoints/internal/infra"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/usecase/queries"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
)

func unavailable(err error) bool {
	return errs.Is(err, errs.ErrUpstreamUnavailable)
}

// DegradingUoW runs on primary and reruns the whole unit on secondary when
// primary reports UpstreamUnavailable. Other errors, Timeout included, pass through.
// Rows a committed primary unit touched are copied into secondary, so the
// fallback can serve the accounts and products it has already seen.
type DegradingUoW struct {
	primary   shared.UnitOfWork
	secondary *UoW
}

func NewDegradingUoW(primary shared.UnitOfWork, secondary *UoW) *DegradingUoW {
	return &DegradingUoW{primary: primary, secondary: secondary}
}

func (u *DegradingUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	seen := newConfirmed()
	err := u.primary.Within(ctx, u.mirrored(seen, fn))
	if err == nil {
		u.keep(ctx, seen)
		return nil
	}
	if !unavailable(err) {
		return err
	}
	if errs.Is(err, infra.ErrCommitUnknown) {
		slog.Error("primary commit outcome unknown, not rerunning on local fallback", "error", err.Error())
		return err
	}
	slog.Warn("primary store unavailable, running on local fallback", "error", err.Error())
	return u.secondary.Within(ctx, fn)
}

func (u *DegradingUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	seen := newConfirmed()
	err := u.primary.WithinReadOnly(ctx, u.mirrored(seen, fn))
	if err == nil {
		u.keep(ctx, seen)
		return nil
	}
	if !unavailable(err) {
		return err
	}
	slog.Warn("primary store unavailable, reading from local fallback", "error", err.Error())
	return u.secondary.WithinReadOnly(ctx, fn)
}

// mirrored starts a fresh recording on every attempt the primary makes.
func (u *DegradingUoW) mirrored(seen *confirmed, fn func(ctx context.Context, tx shared.Tx) error) func(ctx context.Context, tx shared.Tx) error {
	return func(ctx context.Context, tx shared.Tx) error {
		seen.reset()
		return fn(ctx, &mirrorTx{Tx: tx, seen: seen, now: u.secondary.clock.Now})
	}
}

func (u *DegradingUoW) keep(ctx context.Context, seen *confirmed) {
	keep(ctx, u.secondary, seen)
}

// keep never fails the caller: the primary result already stands.
func keep(ctx context.Context, mirror *UoW, seen *confirmed) {
	if mirror == nil {
		return
	}
	if err := mirror.refresh(ctx, seen); err != nil {
		slog.Warn("failed to refresh local fallback", "error", err.Error())
	}
}

// DegradingAccountReads serves Primary and falls back to Secondary. Mirror,
// when set, receives every account Primary returned.
type DegradingAccountReads struct {
	Primary, Secondary queries.AccountReadStore
	Mirror             *UoW
}

func (d DegradingAccountReads) FindByID(ctx context.Context, id uuid.UUID) (*queries.AccountView, error) {
	v, err := d.Primary.FindByID(ctx, id)
	if unavailable(err) {
		return d.Secondary.FindByID(ctx, id)
	}
	if err == nil {
		seen := newConfirmed()
		seen.accountView(v)
		keep(ctx, d.Mirror, seen)
	}
	return v, err
}

type DegradingProductReads struct {
	Primary, Secondary queries.ProductReadStore
	Mirror             *UoW
}

func (d DegradingProductReads) FindByID(ctx context.Context, id uuid.UUID) (*queries.ProductView, error) {
	v, err := d.Primary.FindByID(ctx, id)
	if unavailable(err) {
		return d.Secondary.FindByID(ctx, id)
	}
	if err == nil {
		d.keep(ctx, v)
	}
	return v, err
}

func (d DegradingProductReads) FindFirstPage(ctx context.Context, filters queries.ProductFilters, limit int32) ([]*queries.ProductView, error) {
	v, err := d.Primary.FindFirstPage(ctx, filters, limit)
	if unavailable(err) {
		return d.Secondary.FindFirstPage(ctx, filters, limit)
	}
	if err == nil {
		d.keep(ctx, v...)
	}
	return v, err
}

func (d DegradingProductReads) FindKeyset(ctx context.Context, filters queries.ProductFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ProductView, error) {
	v, err := d.Primary.FindKeyset(ctx, filters, lastCreatedAt, lastID, limit)
	if unavailable(err) {
		return d.Secondary.FindKeyset(ctx, filters, lastCreatedAt, lastID, limit)
	}
	if err == nil {
		d.keep(ctx, v...)
	}
	return v, err
}

func (d DegradingProductReads) keep(ctx context.Context, views ...*queries.ProductView) {
	seen := newConfirmed()
	for _, v := range views {
		seen.productView(v)
	}
	keep(ctx, d.Mirror, seen)
}

type DegradingTransactionReads struct {
	Primary, Secondary queries.TransactionReadStore
	Mirror             *UoW
}

func (d DegradingTransactionReads) FindFirstPage(ctx context.Context, filters queries.TransactionFilters, limit int32) ([]*queries.TransactionView, error) {
	v, err := d.Primary.FindFirstPage(ctx, filters, limit)
	if unavailable(err) {
		return d.Secondary.FindFirstPage(ctx, filters, limit)
	}
	if err == nil {
		d.keep(ctx, v)
	}
	return v, err
}

func (d DegradingTransactionReads) FindKeyset(ctx context.Context, filters queries.TransactionFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.TransactionView, error) {
	v, err := d.Primary.FindKeyset(ctx, filters, lastCreatedAt, lastID, limit)
	if unavailable(err) {
		return d.Secondary.FindKeyset(ctx, filters, lastCreatedAt, lastID, limit)
	}
	if err == nil {
		d.keep(ctx, v)
	}
	return v, err
}

func (d DegradingTransactionReads) Stats(ctx context.Context, actorID *uuid.UUID, since time.Time) (*queries.TransactionStats, error) {
	v, err := d.Primary.Stats(ctx, actorID, since)
	if unavailable(err) {
		return d.Secondary.Stats(ctx, actorID, since)
	}
	return v, err
}

func (d DegradingTransactionReads) keep(ctx context.Context, views []*queries.TransactionView) {
	seen := newConfirmed()
	for _, v := range views {
		seen.transactionView(v)
	}
	keep(ctx, d.Mirror, seen)
}
