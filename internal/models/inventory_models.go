package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TriState captures a yes/no/unknown physical attribute flag
// (full set, papers, box). Unknown is the zero-ish default for
// items taken in without verification.
type TriState string

const (
	TriYes     TriState = "yes"
	TriNo      TriState = "no"
	TriUnknown TriState = "unknown"
)

// Lifecycle stages of an inventory item. Transitions are one-way:
// opportunity -> inventory -> liquidated.
const (
	StageOpportunity = "opportunity"
	StageInventory   = "inventory"
	StageLiquidated  = "liquidated"
)

// Display statuses, finer-grained than the stage.
const (
	StatusOpportunity = "Opportunity"
	StatusAvailable   = "Available"
	StatusSold        = "Sold"
	StatusConsigned   = "Consigned"
	StatusReserved    = "Reserved"
	StatusLiquidated  = "Liquidated"
)

// Acquisition modes. The mode decides which profit-split rule applies
// when the item is eventually sold.
const (
	AcquisitionPartnership  = "partnership"
	AcquisitionHouse        = "house"
	AcquisitionContribution = "contribution"
	AcquisitionCustom       = "custom"
)

// IsKnownAcquisitionMode reports whether s is one of the four modes.
func IsKnownAcquisitionMode(s string) bool {
	switch s {
	case AcquisitionPartnership, AcquisitionHouse, AcquisitionContribution, AcquisitionCustom:
		return true
	}
	return false
}

// CustomSplit maps a partner ID to its percentage of an item's realized
// profit. Partners absent from the map get 0%. The map is not required
// to sum to 100.
type CustomSplit map[string]decimal.Decimal

// AdditionalCost is an extra cost booked against an item after
// acquisition (service, polishing, shipping, customs...). Append-only;
// there is no edit or delete.
type AdditionalCost struct {
	ID          string          `json:"id" db:"id"`
	ItemID      string          `json:"item_id" db:"item_id"`
	Type        string          `json:"type" db:"type"`
	Date        time.Time       `json:"date" db:"date"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description *string         `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// InventoryItem is one physical watch tracked by the business.
type InventoryItem struct {
	ID                    string           `json:"id" db:"id"`
	ReferenceID           string           `json:"reference_id" db:"reference_id"`
	Serial                *string          `json:"serial,omitempty" db:"serial"`
	Condition             *string          `json:"condition,omitempty" db:"condition"`
	FullSet               TriState         `json:"full_set" db:"full_set"`
	Papers                TriState         `json:"papers" db:"papers"`
	Box                   TriState         `json:"box" db:"box"`
	Cost                  decimal.Decimal  `json:"cost" db:"cost"`
	AdditionalCosts       []AdditionalCost `json:"additional_costs"`
	PriceAsked            *decimal.Decimal `json:"price_asked,omitempty" db:"price_asked"`
	Stage                 string           `json:"stage" db:"stage"`
	Status                string           `json:"status" db:"status"`
	AcquisitionMode       string           `json:"acquisition_mode" db:"acquisition_mode"`
	ContributingPartnerID *string          `json:"contributing_partner_id,omitempty" db:"contributing_partner_id"`
	CustomSplit           CustomSplit      `json:"custom_split,omitempty" db:"custom_split"`
	EntryDate             *time.Time       `json:"entry_date,omitempty" db:"entry_date"` // set on approval, not on creation
	CreatedAt             time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at" db:"updated_at"`
	Reference             *Reference       `json:"reference,omitempty"` // For joining with Reference
}

// TotalCostBasis returns cost plus the sum of all additional costs.
// Pure; does not mutate the item.
func (i *InventoryItem) TotalCostBasis() decimal.Decimal {
	total := i.Cost
	for _, ac := range i.AdditionalCosts {
		total = total.Add(ac.Amount)
	}
	return total
}
