package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale statuses. Always derived from the payment total; see DeriveSaleStatus.
const (
	SalePending    = "Pending"
	SalePartial    = "Partial"
	SaleLiquidated = "Liquidated"
)

// Payment is one partial payment recorded against a sale. Immutable
// once recorded; there is no edit or delete operation.
type Payment struct {
	ID        string          `json:"id" db:"id"`
	SaleID    string          `json:"sale_id" db:"sale_id"`
	Date      time.Time       `json:"date" db:"date"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Method    *string         `json:"method,omitempty" db:"method"`
	Notes     *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Sale records the sale of exactly one inventory item to a client.
// AgreedPrice is fixed at creation and never changes; collection
// progress lives entirely in the payments list.
type Sale struct {
	ID          string          `json:"id" db:"id"`
	WatchID     string          `json:"watch_id" db:"watch_id"`
	ClientID    *string         `json:"client_id,omitempty" db:"client_id"`
	SaleDate    time.Time       `json:"sale_date" db:"sale_date"`
	AgreedPrice decimal.Decimal `json:"agreed_price" db:"agreed_price"`
	Notes       *string         `json:"notes,omitempty" db:"notes"`
	Payments    []Payment       `json:"payments"`
	Status      string          `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	Item        *InventoryItem  `json:"item,omitempty"`   // For joining with InventoryItem
	Client      *Contact        `json:"client,omitempty"` // For joining with Contact
}

// TotalPaid sums all recorded payments.
func (s *Sale) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// DeriveSaleStatus computes the sale status as a pure function of the
// agreed price and the payments recorded so far. The stored status
// column is always the output of this function at the most recent
// write; it is never set independently.
func DeriveSaleStatus(agreedPrice decimal.Decimal, payments []Payment) string {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	switch {
	case paid.GreaterThanOrEqual(agreedPrice):
		return SaleLiquidated
	case paid.GreaterThan(decimal.Zero):
		return SalePartial
	default:
		return SalePending
	}
}
