package currency

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLocaleGrouping(t *testing.T) {
	cases := []struct {
		locale, code string
		amount       string
		places       int32
		want         string
	}{
		{"en-IN", "INR", "999", 0, "₹999"},
		{"en-IN", "INR", "100000", 0, "₹1,00,000"},
		{"en-IN", "INR", "12345678901", 0, "₹12,34,56,78,901"},
		{"en-US", "USD", "1234567", 0, "$1,234,567"},
		{"de-DE", "EUR", "1234567", 0, "€1.234.567"},
		{"de-DE", "EUR", "8300", 2, "€8.300,00"},
		{"ja-JP", "JPY", "1234567", 0, "¥1,234,567"},
	}
	for _, c := range cases {
		f, err := NewFormatter(c.locale, c.code, "")
		if err != nil {
			t.Fatal(err)
		}
		if got := f.FormatFixed(decimal.RequireFromString(c.amount), c.places); got != c.want {
			t.Errorf("%s FormatFixed(%s, %d) = %q, want %q", c.locale, c.amount, c.places, got, c.want)
		}
	}

	if got := Default().Number(-1234567); got != "-12,34,567" {
		t.Errorf("Number = %q", got)
	}
}

func TestDefaultFormat(t *testing.T) {
	f := Default()
	if got := f.Format(decimal.NewFromInt(1234567)); got != "₹12,34,567" {
		t.Errorf("Format = %q", got)
	}
	if got := f.Format(decimal.RequireFromString("25.5")); got != "₹26" {
		t.Errorf("Format(25.5) = %q, want ₹26", got)
	}
	if got := f.Format(decimal.NewFromInt(-200)); got != "-₹200" {
		t.Errorf("Format(-200) = %q", got)
	}
	if got := f.Format(decimal.RequireFromString("-0.2")); got != "₹0" {
		t.Errorf("Format(-0.2) = %q, want ₹0", got)
	}
	if got := f.FormatFixed(decimal.RequireFromString("8300"), 2); got != "₹8,300.00" {
		t.Errorf("FormatFixed = %q", got)
	}
}

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter("en-US", "usd", "")
	if err != nil {
		t.Fatal(err)
	}
	if f.Code() != "USD" || f.Symbol() != "$" {
		t.Errorf("got code %q symbol %q", f.Code(), f.Symbol())
	}
	if got := f.Format(decimal.NewFromInt(1234567)); got != "$1,234,567" {
		t.Errorf("Format = %q", got)
	}

	if _, err := NewFormatter("en-IN", "XYZ", ""); !errors.Is(err, ErrUnknownCurrency) {
		t.Errorf("expected ErrUnknownCurrency, got %v", err)
	}
	if _, err := NewFormatter("not a locale!", "INR", ""); err == nil {
		t.Error("expected locale error")
	}
}

func TestConverter(t *testing.T) {
	c, err := NewConverter(nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.Convert(decimal.NewFromInt(100), "USD", "INR")
	if err != nil || !got.Equal(decimal.NewFromInt(8300)) {
		t.Errorf("USD->INR = %s, %v", got, err)
	}

	got, err = c.Convert(decimal.NewFromInt(100), "inr", "usd")
	if err != nil || got.String() != "1.2" {
		t.Errorf("INR->USD = %s, %v", got, err)
	}

	got, err = c.Convert(decimal.NewFromInt(1), "EUR", "INR")
	if err != nil || got.String() != "89.64" {
		t.Errorf("EUR->INR = %s, %v", got, err)
	}

	if _, err := c.Convert(decimal.NewFromInt(1), "XYZ", "INR"); !errors.Is(err, ErrUnknownCurrency) {
		t.Errorf("expected ErrUnknownCurrency, got %v", err)
	}
}

func TestConverterOverrides(t *testing.T) {
	c, err := NewConverter(map[string]float64{"usd/inr": 84})
	if err != nil {
		t.Fatal(err)
	}
	rate, _ := c.Rate("USD", "INR")
	if !rate.Equal(decimal.NewFromInt(84)) {
		t.Errorf("rate = %s, want 84", rate)
	}
	if _, err := NewConverter(map[string]float64{"USDINR": 1}); err == nil {
		t.Error("expected malformed key error")
	}
}

func TestQuoteSwap(t *testing.T) {
	q := DefaultQuote().Swap()
	if q.From != "INR" || q.To != "USD" {
		t.Errorf("swap = %+v", q)
	}
}

func TestPresetFor(t *testing.T) {
	if p := PresetFor("eur"); p.Locale != "de-DE" {
		t.Errorf("PresetFor(eur) = %+v", p)
	}
	if p := PresetFor("CHF"); p.Code != "CHF" || p.Locale != "en-US" {
		t.Errorf("PresetFor(CHF) = %+v", p)
	}
	for _, p := range Presets {
		if _, err := NewFormatter(p.Locale, p.Code, ""); err != nil {
			t.Errorf("preset %s: %v", p.Code, err)
		}
	}
}
