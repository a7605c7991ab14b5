package pgsql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const accountColumns = `id, email, password_hash, role, display_name, points_balance, is_active, last_login, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (Account, error) {
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.Role,
		&i.DisplayName,
		&i.PointsBalance,
		&i.IsActive,
		&i.LastLogin,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createAccount = `-- name: CreateAccount :exec
INSERT INTO accounts (id, email, password_hash, role, display_name, points_balance, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type CreateAccountParams struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	Role          string
	DisplayName   string
	PointsBalance int64
	IsActive      bool
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

func (q *Queries) CreateAccount(ctx context.Context, db DBTX, arg CreateAccountParams) error {
	_, err := db.Exec(ctx, createAccount,
		arg.ID,
		arg.Email,
		arg.PasswordHash,
		arg.Role,
		arg.DisplayName,
		arg.PointsBalance,
		arg.IsActive,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const findAccountByID = `-- name: FindAccountByID :one
SELECT ` + accountColumns + ` FROM accounts WHERE id = $1
`

func (q *Queries) FindAccountByID(ctx context.Context, db DBTX, id uuid.UUID) (Account, error) {
	return scanAccount(db.QueryRow(ctx, findAccountByID, id))
}

const findAccountByEmail = `-- name: FindAccountByEmail :one
SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = lower($1)
`

func (q *Queries) FindAccountByEmail(ctx context.Context, db DBTX, email string) (Account, error) {
	return scanAccount(db.QueryRow(ctx, findAccountByEmail, email))
}

const debitAccountPoints = `-- name: DebitAccountPoints :one
UPDATE accounts
SET points_balance = points_balance - $2, updated_at = now()
WHERE id = $1 AND points_balance >= $2
RETURNING points_balance
`

// DebitAccountPoints returns pgx.ErrNoRows when the balance does not cover amount.
func (q *Queries) DebitAccountPoints(ctx context.Context, db DBTX, id uuid.UUID, amount int64) (int64, error) {
	var balance int64
	err := db.QueryRow(ctx, debitAccountPoints, id, amount).Scan(&balance)
	return balance, err
}

const findAccountBalance = `-- name: FindAccountBalance :one
SELECT points_balance FROM accounts WHERE id = $1
`

func (q *Queries) FindAccountBalance(ctx context.Context, db DBTX, id uuid.UUID) (int64, error) {
	var balance int64
	err := db.QueryRow(ctx, findAccountBalance, id).Scan(&balance)
	return balance, err
}

const creditAccountPoints = `-- name: CreditAccountPoints :one
UPDATE accounts
SET points_balance = points_balance + $2, updated_at = now()
WHERE id = $1
RETURNING points_balance
`

func (q *Queries) CreditAccountPoints(ctx context.Context, db DBTX, id uuid.UUID, amount int64) (int64, error) {
	var balance int64
	err := db.QueryRow(ctx, creditAccountPoints, id, amount).Scan(&balance)
	return balance, err
}

const updateAccountLastLogin = `-- name: UpdateAccountLastLogin :exec
UPDATE accounts SET last_login = $2 WHERE id = $1
`

func (q *Queries) UpdateAccountLastLogin(ctx context.Context, db DBTX, id uuid.UUID, at pgtype.Timestamptz) error {
	_, err := db.Exec(ctx, updateAccountLastLogin, id, at)
	return err
}

const countAccounts = `-- name: CountAccounts :one
SELECT count(*) FROM accounts
`

func (q *Queries) CountAccounts(ctx context.Context, db DBTX) (int64, error) {
	var count int64
	err := db.QueryRow(ctx, countAccounts).Scan(&count)
	return count, err
}
