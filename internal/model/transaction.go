// Package model defines the domain types for rupee ledgers and their derived figures.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TxType is the direction of money in a transaction.
type TxType string

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

var (
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidFilter = errors.New("invalid type filter")
	ErrInvalidAmount = errors.New("invalid amount")
)

// ParseTxType accepts "income" or "expense" in any case.
func ParseTxType(s string) (TxType, error) {
	switch TxType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// TypeFilter narrows a transaction list by direction.
type TypeFilter string

const (
	FilterAll     TypeFilter = "all"
	FilterIncome  TypeFilter = "income"
	FilterExpense TypeFilter = "expense"
)

// ParseTypeFilter treats an empty string as FilterAll.
func ParseTypeFilter(s string) (TypeFilter, error) {
	switch f := TypeFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterIncome, FilterExpense:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

// Next cycles all -> income -> expense -> all.
func (f TypeFilter) Next() TypeFilter {
	switch f {
	case FilterAll:
		return FilterIncome
	case FilterIncome:
		return FilterExpense
	default:
		return FilterAll
	}
}

// Transaction is a single income or expense record.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TxType          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        Date            `json:"date"`
	Emoji       string          `json:"emoji"`
	Recurring   bool            `json:"recurring"`
	Notes       string          `json:"notes,omitempty"`
}

// Validate checks the fields a caller must supply before a transaction is stored.
func (t Transaction) Validate() error {
	if t.Type != Income && t.Type != Expense {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, t.Amount)
	}
	if strings.TrimSpace(t.Category) == "" {
		return errors.New("category is required")
	}
	if t.Date.IsZero() {
		return errors.New("date is required")
	}
	return nil
}

// ExportHeader is the column order of CSV exports and imports.
var ExportHeader = []string{"Date", "Type", "Category", "Description", "Amount"}
