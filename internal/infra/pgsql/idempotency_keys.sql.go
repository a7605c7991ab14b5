package pgsql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const tryInsertIdempotencyKey = `-- name: TryInsertIdempotencyKey :execrows
INSERT INTO idempotency_keys (key, account_id, endpoint, request_hash, status, expires_at)
VALUES ($1, $2, $3, $4, 'processing', $5)
ON CONFLICT (key, account_id) DO UPDATE
SET endpoint = EXCLUDED.endpoint,
    request_hash = EXCLUDED.request_hash,
    status = 'processing',
    result_id = NULL,
    response_body = NULL,
    expires_at = EXCLUDED.expires_at,
    updated_at = now()
WHERE idempotency_keys.expires_at < now()
`

type TryInsertIdempotencyKeyParams struct {
	Key         uuid.UUID
	AccountID   uuid.UUID
	Endpoint    string
	RequestHash string
	ExpiresAt   pgtype.Timestamptz
}

// TryInsertIdempotencyKey claims a key. Live claims are left untouched; expired ones are taken over.
func (q *Queries) TryInsertIdempotencyKey(ctx context.Context, db DBTX, arg TryInsertIdempotencyKeyParams) (int64, error) {
	result, err := db.Exec(ctx, tryInsertIdempotencyKey,
		arg.Key,
		arg.AccountID,
		arg.Endpoint,
		arg.RequestHash,
		arg.ExpiresAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getIdempotencyKey = `-- name: GetIdempotencyKey :one
SELECT key, account_id, endpoint, request_hash, status, result_id, response_body, expires_at, created_at, updated_at
FROM idempotency_keys
WHERE key = $1 AND account_id = $2
`

func (q *Queries) GetIdempotencyKey(ctx context.Context, db DBTX, key, accountID uuid.UUID) (IdempotencyKey, error) {
	var i IdempotencyKey
	err := db.QueryRow(ctx, getIdempotencyKey, key, accountID).Scan(
		&i.Key,
		&i.AccountID,
		&i.Endpoint,
		&i.RequestHash,
		&i.Status,
		&i.ResultID,
		&i.ResponseBody,
		&i.ExpiresAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const completeIdempotencyKey = `-- name: CompleteIdempotencyKey :exec
UPDATE idempotency_keys
SET status = 'completed', result_id = $3, response_body = $4, updated_at = now()
WHERE key = $1 AND account_id = $2
`

func (q *Queries) CompleteIdempotencyKey(ctx context.Context, db DBTX, key, accountID, resultID uuid.UUID, response []byte) error {
	_, err := db.Exec(ctx, completeIdempotencyKey, key, accountID, resultID, response)
	return err
}

const deleteIdempotencyKey = `-- name: DeleteIdempotencyKey :exec
DELETE FROM idempotency_keys
WHERE key = $1 AND account_id = $2 AND status = 'processing'
`

func (q *Queries) DeleteIdempotencyKey(ctx context.Context, db DBTX, key, accountID uuid.UUID) error {
	_, err := db.Exec(ctx, deleteIdempotencyKey, key, accountID)
	return err
}
