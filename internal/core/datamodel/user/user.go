package user

import "time"

type Role string

const (
	RoleSalesperson Role = "salesperson"
	RoleBDC         Role = "bdc"
	RoleManager     Role = "manager"
)

// Level maps the role hierarchy salesperson < bdc < manager onto integers
// for the route-level gate. Unknown roles rank below everything.
func (r Role) Level() int {
	switch r {
	case RoleSalesperson:
		return 1
	case RoleBDC:
		return 2
	case RoleManager:
		return 3
	default:
		return 0
	}
}

func (r Role) Valid() bool {
	return r.Level() > 0
}

// User is a directory record. Username is unique case-insensitively and
// stored lowercased. Password may hold a bcrypt hash or a legacy plaintext
// value; comparison is hash-aware at the auth layer.
type User struct {
	ID                     string     `json:"id"`
	Username               string     `json:"username"`
	Password               string     `json:"password,omitempty"`
	Name                   string     `json:"name"`
	Role                   Role       `json:"role"`
	Email                  string     `json:"email,omitempty"`
	IsActive               bool       `json:"isActive"`
	TemporaryInactiveUntil *time.Time `json:"temporaryInactiveUntil,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	LastLogin              *time.Time `json:"lastLogin,omitempty"`
}

// Key is the logical record name holding the whole directory.
const Key = "users"

// Sanitized returns a copy safe to serialize in API responses.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}
