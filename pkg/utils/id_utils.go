package utils

import "github.com/google/uuid"

// NewID generates a new unique identifier for domain records
// (items, sales, payments, partners, movements, catalog rows).
func NewID() string {
	return uuid.NewString()
}
