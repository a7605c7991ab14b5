package account

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStore    Role = "store"
	RoleAdmin    Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleStore, RoleAdmin:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// NewSignupRole accepts only roles that may be self-registered.
func NewSignupRole(s string) (Role, error) {
	role, err := NewRole(s)
	if err != nil {
		return "", err
	}
	if role == RoleAdmin {
		return "", ErrInvalidRole
	}
	return role, nil
}
