package cli

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/currency"
)

func TestFormatRemaining(t *testing.T) {
	if got := FormatRemaining(decimal.NewFromInt(-200)); got != "₹200 over budget" {
		t.Errorf("over = %q", got)
	}
	if got := FormatRemaining(decimal.NewFromInt(350)); got != "₹350 remaining" {
		t.Errorf("under = %q", got)
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(decimal.NewFromInt(-70)); got != "-₹70" {
		t.Errorf("negative = %q", got)
	}
	if got := FormatDelta(decimal.Zero); got != "+₹0" {
		t.Errorf("zero = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(-1234567); got != "-12,34,567" {
		t.Errorf("FormatNumber = %q", got)
	}

	f, err := currency.NewFormatter("en-US", "USD", "")
	if err != nil {
		t.Fatal(err)
	}
	SetCurrency(f)
	t.Cleanup(func() { SetCurrency(currency.Default()) })
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Errorf("en-US FormatNumber = %q", got)
	}
}

func TestRenderTableAlignsWideCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Amount"},
		Rows: [][]string{
			{"🍕 Food", "₹25"},
			{"---"},
			{"Rent", "₹1,200"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "₹1,200") {
		t.Errorf("missing cell:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Web Design Project", 8); got != "Web Des…" {
		t.Errorf("Truncate = %q", got)
	}
}
