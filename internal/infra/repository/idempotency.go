package repository

import (
	"context"
	"time"

	"techpoints/internal/infra"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/pkg/pgconv"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
)

type IdempotencyWriteQueries interface {
	TryInsertIdempotencyKey(ctx context.Context, db pgsql.DBTX, arg pgsql.TryInsertIdempotencyKeyParams) (int64, error)
	GetIdempotencyKey(ctx context.Context, db pgsql.DBTX, key, accountID uuid.UUID) (pgsql.IdempotencyKey, error)
	CompleteIdempotencyKey(ctx context.Context, db pgsql.DBTX, key, accountID, resultID uuid.UUID, response []byte) error
	DeleteIdempotencyKey(ctx context.Context, db pgsql.DBTX, key, accountID uuid.UUID) error
}

type IdempotencyRepository struct {
	queries IdempotencyWriteQueries
	db      pgsql.DBTX
}

func NewIdempotencyRepository(queries IdempotencyWriteQueries, db pgsql.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{
		queries: queries,
		db:      db,
	}
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, accountID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	params := pgsql.TryInsertIdempotencyKeyParams{
		Key:         key,
		AccountID:   accountID,
		Endpoint:    endpoint,
		RequestHash: requestHash,
		ExpiresAt:   pgconv.TimeToPgtype(expiresAt),
	}

	rows, err := r.queries.TryInsertIdempotencyKey(ctx, r.db, params)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}

	return rows > 0, nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, accountID uuid.UUID) (*shared.IdempotencyRecord, error) {
	row, err := r.queries.GetIdempotencyKey(ctx, r.db, key, accountID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}

	return &shared.IdempotencyRecord{
		Key:         row.Key,
		AccountID:   row.AccountID,
		Endpoint:    row.Endpoint,
		Status:      row.Status,
		RequestHash: row.RequestHash,
		ResultID:    pgconv.UUIDPtrFromPgtype(row.ResultID),
		Response:    row.ResponseBody,
		ExpiresAt:   pgconv.TimeFromPgtype(row.ExpiresAt),
	}, nil
}

func (r *IdempotencyRepository) MarkCompleted(ctx context.Context, key, accountID, resultID uuid.UUID, response []byte) error {
	err := r.queries.CompleteIdempotencyKey(ctx, r.db, key, accountID, resultID, response)
	if err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}

	return nil
}

func (r *IdempotencyRepository) Release(ctx context.Context, key, accountID uuid.UUID) error {
	if err := r.queries.DeleteIdempotencyKey(ctx, r.db, key, accountID); err != nil {
		return infra.WrapRepoErr("failed to release idempotency key", err)
	}
	return nil
}
