package models

import "time"

// Contact types.
const (
	ContactTypeClient   = "client"
	ContactTypeSupplier = "supplier"
	ContactTypeBoth     = "both"
)

// Contact represents a client or supplier in the address book.
// Sales reference a contact as the buying client.
type Contact struct {
	ID          string    `json:"id" db:"id"`
	FullName    string    `json:"full_name" db:"full_name" binding:"required"`
	PhoneNumber *string   `json:"phone_number,omitempty" db:"phone_number"`
	Email       *string   `json:"email,omitempty" db:"email"`
	Type        string    `json:"type" db:"type"` // client, supplier or both
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
