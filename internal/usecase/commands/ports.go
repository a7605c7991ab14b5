package commands

//go:generate mockgen -destination=../../mock/commands/commands.go -package=commandsmock techpoints/internal/usecase/commands AuthCommands,CatalogCommands,PointsCommands,RedemptionCommands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"techpoints/internal/domain/ledger"
	"techpoints/internal/infra"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/usecase/shared"
)

// ImageStore persists product images and hands back their public URL.
type ImageStore interface {
	Upload(ctx context.Context, bucket, path string, data []byte) (string, error)
	Delete(ctx context.Context, bucket, path string) error
	ObjectPath(url string) (bucket, path string, ok bool)
}

// Outbox job kinds written next to each committed mutation.
const (
	jobKindRedemptionReceipt = "redemption_receipt"
	jobKindBalanceNotice     = "balance_notice"
	jobKindCatalogSync       = "catalog_sync"
)

func calculateRequestHash(req any) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func isNotFound(err error) bool {
	return infra.IsKind(err, infra.KindNotFound)
}

// markUpstream keeps Timeout and UpstreamUnavailable visible and tags anything else as a database failure.
func markUpstream(err error) error {
	if errs.Is(err, errs.ErrTimeout) || errs.Is(err, errs.ErrUpstreamUnavailable) {
		return err
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}

// pruneLedger drops entries beyond the retention bounds. Failures are logged and never escalated.
func pruneLedger(ctx context.Context, uow shared.UnitOfWork, policy ledger.RetentionPolicy, clk clock.Clock) {
	if !policy.Enabled() {
		return
	}
	var removed int64
	err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Ledger().Prune(ctx, policy, clk.Now())
		removed = n
		return err
	})
	if err != nil {
		slog.Warn("ledger retention prune failed", "error", err.Error())
		return
	}
	if removed > 0 {
		slog.Debug("ledger retention pruned entries", "removed", removed)
	}
}
