package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement types. Distribution and Withdrawal are cash leaving towards
// the partner and are stored with a negative amount; Contribution is
// cash coming in and is stored positive. Adjustment keeps whatever
// sign the operator entered.
const (
	MovementContribution = "Contribution"
	MovementDistribution = "Distribution"
	MovementWithdrawal   = "Withdrawal"
	MovementAdjustment   = "Adjustment"
)

// IsKnownMovementType reports whether s is a recognised movement type.
func IsKnownMovementType(s string) bool {
	switch s {
	case MovementContribution, MovementDistribution, MovementWithdrawal, MovementAdjustment:
		return true
	}
	return false
}

// PartnerMovement is one cash movement on a partner's account.
// Append-only.
type PartnerMovement struct {
	ID        string          `json:"id" db:"id"`
	PartnerID string          `json:"partner_id" db:"partner_id"`
	Date      time.Time       `json:"date" db:"date"`
	Type      string          `json:"type" db:"type"`
	Amount    decimal.Decimal `json:"amount" db:"amount"` // signed; Distribution/Withdrawal are negative
	Concept   *string         `json:"concept,omitempty" db:"concept"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Partner ("socio") is a capital-providing party entitled to a share
// of realized profit.
type Partner struct {
	ID               string            `json:"id" db:"id"`
	Name             string            `json:"name" db:"name" binding:"required"`
	ParticipationPct decimal.Decimal   `json:"participation_pct" db:"participation_pct"` // global default split share
	Color            *string           `json:"color,omitempty" db:"color"`               // display only
	IsHouseEntity    bool              `json:"is_house_entity" db:"is_house_entity"`     // at most one partner carries this
	Movements        []PartnerMovement `json:"movements,omitempty"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`
}
