package converter

import (
	"techpoints/internal/domain/account"
	"techpoints/internal/infra/pgsql"
	"techpoints/internal/pkg/pgconv"
)

func AccountToCreateParams(a *account.Account) pgsql.CreateAccountParams {
	return pgsql.CreateAccountParams{
		ID:            a.ID(),
		Email:         a.Email().Value(),
		PasswordHash:  a.PasswordHash(),
		Role:          a.Role().String(),
		DisplayName:   a.DisplayName(),
		PointsBalance: a.PointsBalance(),
		IsActive:      a.IsActive(),
		CreatedAt:     pgconv.TimeToPgtype(a.CreatedAt()),
		UpdatedAt:     pgconv.TimeToPgtype(a.UpdatedAt()),
	}
}

func AccountFromRow(row pgsql.Account) *account.Account {
	return account.ReconstructAccount(
		row.ID,
		account.ReconstructEmail(row.Email),
		row.PasswordHash,
		account.Role(row.Role),
		row.DisplayName,
		row.PointsBalance,
		row.IsActive,
		pgconv.TimePtrFromPgtype(row.LastLogin),
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	)
}
