package response

import (
	"time"

	"techpoints/internal/usecase/commands"
	"techpoints/internal/usecase/queries"

	"github.com/google/uuid"
)

type AccountResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	DisplayName   string     `json:"display_name"`
	PointsBalance int64      `json:"points_balance"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	Degraded      bool       `json:"degraded,omitempty"`
}

type RegisterResponse struct {
	AccountID     uuid.UUID `json:"account_id"`
	Role          string    `json:"role"`
	PointsBalance int64     `json:"points_balance"`
	Degraded      bool      `json:"degraded,omitempty"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	AccountID   uuid.UUID `json:"account_id"`
	Role        string    `json:"role"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

func FromAccountView(v *queries.AccountView) *AccountResponse {
	return copyInto[AccountResponse](v)
}

func FromRegisterResult(r *commands.RegisterResult) *RegisterResponse {
	return &RegisterResponse{
		AccountID:     r.AccountID,
		Role:          r.Role.String(),
		PointsBalance: r.PointsBalance,
		Degraded:      r.Degraded,
	}
}

func FromLoginResult(r *commands.LoginResult) *LoginResponse {
	return &LoginResponse{
		AccessToken: r.TokenPair.AccessToken,
		AccountID:   r.AccountID,
		Role:        r.Role.String(),
	}
}
