// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/currency"
)

var money = currency.Default()

// SetCurrency replaces the formatter used by FormatCurrency.
func SetCurrency(f currency.Formatter) { money = f }

// Currency returns the active formatter.
func Currency() currency.Formatter { return money }

// FormatCurrency formats a whole-unit amount, e.g. ₹12,34,567.
func FormatCurrency(d decimal.Decimal) string {
	return money.Format(d)
}

// FormatDelta formats a signed change, e.g. +₹70 or -₹130.
func FormatDelta(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + money.Format(d.Neg())
	}
	return "+" + money.Format(d)
}

// FormatRemaining renders budget headroom the way the budgets page words it.
func FormatRemaining(remaining decimal.Decimal) string {
	if remaining.IsNegative() {
		return money.Format(remaining.Abs()) + " over budget"
	}
	return money.Format(remaining) + " remaining"
}

// FormatNumber groups an integer the way the active currency locale does,
// e.g. 1234567 -> "12,34,567" for en-IN.
func FormatNumber(n int64) string {
	return money.Number(n)
}

// FormatPercent formats a percentage value with one decimal, e.g. 57.1%.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatDate renders dates like "02 Nov 2025".
func FormatDate(t interface{ Format(string) string }) string {
	return t.Format("02 Jan 2006")
}

// Truncate shortens s to max runes, adding an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return strings.TrimSpace(string(r[:max-1])) + "…"
}
