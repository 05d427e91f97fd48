package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a spending cap for one category. Spent is tracked on its own
// and may exceed Limit.
type Budget struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Spent    decimal.Decimal `json:"spent"`
	Emoji    string          `json:"emoji"`
	// Month and Year scope the budget to a calendar month. Zero means every month.
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}

// Key identifies a budget by category and period.
func (b Budget) Key() string {
	if b.Month == 0 {
		return strings.ToLower(b.Category)
	}
	return fmt.Sprintf("%s@%04d-%02d", strings.ToLower(b.Category), b.Year, b.Month)
}

// Covers reports whether a transaction date falls inside the budget period.
func (b Budget) Covers(d Date) bool {
	if b.Month == 0 {
		return true
	}
	return d.SameMonth(b.Year, time.Month(b.Month))
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return errors.New("budget category is required")
	}
	if !b.Limit.IsPositive() {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidAmount)
	}
	if b.Spent.IsNegative() {
		return fmt.Errorf("%w: spent is negative", ErrInvalidAmount)
	}
	if b.Month < 0 || b.Month > 12 {
		return fmt.Errorf("budget month %d out of range", b.Month)
	}
	return nil
}
