package models

import "time"

// Role names recognised by the access layer.
// A freshly registered user starts as RolePending and cannot reach
// anything beyond its own profile until a director activates it.
const (
	RoleDirector = "director"
	RoleOperator = "operator"
	RoleInvestor = "investor"
	RolePending  = "pending"
)

// User represents an operator/investor account in the system.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	Email        *string   `json:"email,omitempty" db:"email"`
	FullName     *string   `json:"full_name,omitempty" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	PartnerID    *string   `json:"partner_id,omitempty" db:"partner_id"` // links an investor login to its partner record
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsKnownRole reports whether s is one of the four recognised role names.
func IsKnownRole(s string) bool {
	switch s {
	case RoleDirector, RoleOperator, RoleInvestor, RolePending:
		return true
	}
	return false
}

// Credentials for login request
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
