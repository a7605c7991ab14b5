package request

import (
	"techpoints/internal/domain/account"
)

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required,max=100"`
	Role        string `json:"role" binding:"omitempty,oneof=customer store"`
}

// ToDomain defaults the role to customer.
func (r *RegisterRequest) ToDomain() (account.Credentials, account.Role, error) {
	creds, err := account.NewCredentials(r.Email, r.Password)
	if err != nil {
		return account.Credentials{}, "", err
	}
	roleStr := r.Role
	if roleStr == "" {
		roleStr = account.RoleCustomer.String()
	}
	role, err := account.NewSignupRole(roleStr)
	if err != nil {
		return account.Credentials{}, "", err
	}
	return creds, role, nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (r *LoginRequest) ToDomain() (account.Credentials, error) {
	return account.NewCredentials(r.Email, r.Password)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
