package models_test

import (
	"testing"

	"watchtrade_backend/internal/models"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDeriveSaleStatus(t *testing.T) {
	tests := []struct {
		name     string
		agreed   string
		payments []string
		want     string
	}{
		{"no payments", "1500", nil, models.SalePending},
		{"partial payment", "1500", []string{"500"}, models.SalePartial},
		{"several partials short of the price", "1500", []string{"500", "900"}, models.SalePartial},
		{"exact total", "1500", []string{"500", "1000"}, models.SaleLiquidated},
		{"overpayment still liquidated", "1500", []string{"1600"}, models.SaleLiquidated},
		{"zero price liquidates immediately", "0", nil, models.SaleLiquidated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payments []models.Payment
			for _, p := range tt.payments {
				payments = append(payments, models.Payment{Amount: dec(p)})
			}
			got := models.DeriveSaleStatus(dec(tt.agreed), payments)
			if got != tt.want {
				t.Errorf("DeriveSaleStatus(%s, %v) = %s, want %s", tt.agreed, tt.payments, got, tt.want)
			}
		})
	}
}

func TestSaleTotalPaid(t *testing.T) {
	sale := models.Sale{
		AgreedPrice: dec("1500"),
		Payments: []models.Payment{
			{Amount: dec("500")},
			{Amount: dec("250.50")},
		},
	}
	if got := sale.TotalPaid(); !got.Equal(dec("750.50")) {
		t.Errorf("TotalPaid = %s, want 750.50", got)
	}
}

func TestTotalCostBasis(t *testing.T) {
	item := models.InventoryItem{
		Cost: dec("1000"),
		AdditionalCosts: []models.AdditionalCost{
			{Amount: dec("120")},
			{Amount: dec("80")},
		},
	}
	if got := item.TotalCostBasis(); !got.Equal(dec("1200")) {
		t.Errorf("TotalCostBasis = %s, want 1200", got)
	}

	bare := models.InventoryItem{Cost: dec("750")}
	if got := bare.TotalCostBasis(); !got.Equal(dec("750")) {
		t.Errorf("TotalCostBasis without extras = %s, want 750", got)
	}
}
