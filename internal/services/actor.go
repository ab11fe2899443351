package services

import (
	"errors"

	"watchtrade_backend/internal/models"
)

// --- Shared Service Errors ---
var (
	// ErrValidation is the generic validation error every service wraps
	// with a specific message.
	ErrValidation = errors.New("validation error")

	// ErrInvalidStateTransition is returned when an operation is applied
	// to an item or sale whose lifecycle stage does not allow it.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrInsufficientPermission is returned when the acting user's role
	// does not allow the operation. Enforced inside the services, not
	// only at the routing layer.
	ErrInsufficientPermission = errors.New("insufficient permission")

	// ErrInvalidSplit is returned when a custom split or contribution
	// references a partner that does not exist.
	ErrInvalidSplit = errors.New("invalid profit split")
)

// Actor identifies the authenticated user performing a service call.
// Mutating operations check it themselves so permissions hold even if
// a route is wired without the role middleware.
type Actor struct {
	UserID    int64
	Username  string
	Role      string
	PartnerID *string // set for investor accounts linked to a partner
}

// CanWrite reports whether the actor may mutate ledger state.
// Only directors and operators may; investors are read-only.
func (a Actor) CanWrite() bool {
	return a.Role == models.RoleDirector || a.Role == models.RoleOperator
}

// CanReadAllSettlements reports whether the actor may see every
// partner's settlement, as opposed to just its own.
func (a Actor) CanReadAllSettlements() bool {
	return a.Role == models.RoleDirector || a.Role == models.RoleOperator
}

// OwnsPartner reports whether the actor is linked to the given partner.
func (a Actor) OwnsPartner(partnerID string) bool {
	return a.PartnerID != nil && *a.PartnerID == partnerID
}
