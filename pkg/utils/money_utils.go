package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount as a currency string with thousands
// separators and two decimals, e.g. 1234567.5 -> "€1.234.567,50".
// Display only; all arithmetic stays on decimal.Decimal.
func FormatMoney(amount decimal.Decimal, symbol string) string {
	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	intPart := fixed[:len(fixed)-3]
	decPart := fixed[len(fixed)-2:]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := symbol + strings.Join(groups, ".") + "," + decPart
	if neg {
		out = "-" + out
	}
	return out
}

// ParseMoney parses a user-entered amount string into a decimal,
// tolerating a comma decimal separator.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		// European style: dots are thousands separators
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}
