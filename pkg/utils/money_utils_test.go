package utils_test

import (
	"testing"
	"time"

	"watchtrade_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "€0,00"},
		{"1234.5", "€1.234,50"},
		{"1234567.5", "€1.234.567,50"},
		{"-980.25", "-€980,25"},
	}
	for _, tt := range tests {
		d, _ := decimal.NewFromString(tt.in)
		if got := utils.FormatMoney(d, "€"); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"  980 ", "980"},
		{"-45,5", "-45.5"},
	}
	for _, tt := range tests {
		got, err := utils.ParseMoney(tt.in)
		if err != nil {
			t.Errorf("ParseMoney(%q) returned error: %v", tt.in, err)
			continue
		}
		want, _ := decimal.NewFromString(tt.want)
		if !got.Equal(want) {
			t.Errorf("ParseMoney(%q) = %s, want %s", tt.in, got, want)
		}
	}
}

func TestParseMoneyRejectsGarbage(t *testing.T) {
	if _, err := utils.ParseMoney("not a number"); err == nil {
		t.Error("expected an error for a non-numeric string")
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 5, 2, 15, 30, 0, 0, time.UTC)
	b := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	if got := utils.DaysBetween(a, b); got != 30 {
		t.Errorf("DaysBetween = %d, want 30", got)
	}
	if got := utils.DaysBetween(b, a); got != -30 {
		t.Errorf("reversed DaysBetween = %d, want -30", got)
	}
	if got := utils.DaysBetween(a, a); got != 0 {
		t.Errorf("same-day DaysBetween = %d, want 0", got)
	}
}
