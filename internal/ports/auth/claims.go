package auth

// Claims representa la información extraída del token.
type Claims struct {
	UserID int64
	Email  string
	Role   string
}

const RoleAdmin = "admin"

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
