package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultGoalEmoji is used when a goal is created without one.
const DefaultGoalEmoji = "🎯"

// Goal is a savings target with a deadline.
type Goal struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Target   decimal.Decimal `json:"target"`
	Current  decimal.Decimal `json:"current"`
	Emoji    string          `json:"emoji"`
	Deadline Date            `json:"deadline"`
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("goal name is required")
	}
	if !g.Target.IsPositive() {
		return fmt.Errorf("%w: target must be positive", ErrInvalidAmount)
	}
	if g.Current.IsNegative() {
		return fmt.Errorf("%w: current is negative", ErrInvalidAmount)
	}
	return nil
}
