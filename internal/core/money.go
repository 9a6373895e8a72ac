// Package core holds the dashboard's domain: invoice lines, the salesperson
// dataset, the filter pipeline and the aggregator.
//
// This file contains the display formatting for amounts and quantities.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder is rendered for absent model and type fields.
const Placeholder = "-"

// FormatCurrency renders d as dollars with two decimals and comma thousands
// separators, rounding half away from zero.
//
// Examples:
//
//	FormatCurrency(1234.5) -> "$1,234.50"
//	FormatCurrency(-7)     -> "$-7.00"
func FormatCurrency(d decimal.Decimal) string {
	return "$" + FormatAmount(d)
}

// FormatNullCurrency formats n, treating null as zero.
func FormatNullCurrency(n decimal.NullDecimal) string {
	return FormatCurrency(ValueOrZero(n))
}

// FormatAmount renders d with two decimals and thousands separators, without
// a currency symbol.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + groupThousands(intPart) + "." + frac
}

// FormatQuantity renders a quantity in its shortest decimal form.
func FormatQuantity(d decimal.Decimal) string {
	return d.String()
}

// OrPlaceholder returns s, or the placeholder dash when s is empty.
func OrPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
