package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a consistent view of the three collections the
// settlement math joins. It is loaded in a single repeatable-read
// transaction so reducers never see a half-updated mix of old items
// and new sales.
type Snapshot struct {
	Items    []InventoryItem `json:"items"`
	Sales    []Sale          `json:"sales"`
	Partners []Partner       `json:"partners"`
	TakenAt  time.Time       `json:"taken_at"`
}

// PartnerSettlement is one partner's settlement line:
// corresponds (lifetime entitlement), distributed (cash already paid
// out), pending (the signed difference, negative = overpaid).
type PartnerSettlement struct {
	PartnerID        string          `json:"partner_id"`
	PartnerName      string          `json:"partner_name"`
	ParticipationPct decimal.Decimal `json:"participation_pct"`
	Corresponds      decimal.Decimal `json:"corresponds"`
	Distributed      decimal.Decimal `json:"distributed"`
	Contributed      decimal.Decimal `json:"contributed"`
	Pending          decimal.Decimal `json:"pending"`
}

// ProfitAllocation is one partner's slice of a single sale's profit.
type ProfitAllocation struct {
	PartnerID   string          `json:"partner_id"`
	PartnerName string          `json:"partner_name"`
	Percentage  decimal.Decimal `json:"percentage"`
	Amount      decimal.Decimal `json:"amount"`
}

// ProfitReportLine is the per-sale breakdown used by the profit report:
// what the watch cost all-in, what it sold for, and where the profit went.
type ProfitReportLine struct {
	SaleID          string             `json:"sale_id"`
	WatchID         string             `json:"watch_id"`
	ReferenceCode   *string            `json:"reference_code,omitempty"`
	SaleDate        time.Time          `json:"sale_date"`
	AgreedPrice     decimal.Decimal    `json:"agreed_price"`
	TotalCostBasis  decimal.Decimal    `json:"total_cost_basis"`
	RealizedProfit  decimal.Decimal    `json:"realized_profit"`
	AcquisitionMode string             `json:"acquisition_mode"`
	DaysInStock     *int               `json:"days_in_stock,omitempty"` // entry date to sale date; nil if never approved
	Allocations     []ProfitAllocation `json:"allocations"`
}
