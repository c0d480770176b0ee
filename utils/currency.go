package utils

import (
	"fmt"
	"strings"
)

// FormatCurrency renders amount with a currency symbol, thousands separators and
// two decimals. Example: 15000.5 -> "₹15,000.50".
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	formatted := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	// thousands separators
	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return sign + "₹" + strings.Join(groups, ",") + "." + decimalPart
}
