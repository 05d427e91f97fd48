// Package currency formats money for display and converts between currencies.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrUnknownCurrency is returned for ISO codes with no symbol or rate.
var ErrUnknownCurrency = errors.New("unknown currency")

var symbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Formatter renders amounts with a prefixed symbol. Digit grouping and the
// decimal mark follow the locale: en-IN gives 12,34,567 and de-DE 1.234.567.
type Formatter struct {
	locale  language.Tag
	code    string
	symbol  string
	printer *message.Printer
}

// Default is en-IN rupees.
func Default() Formatter {
	tag := language.MustParse("en-IN")
	return Formatter{locale: tag, code: "INR", symbol: "₹", printer: message.NewPrinter(tag)}
}

// NewFormatter validates the locale tag and ISO code. An empty symbol is
// looked up from the code, falling back to the code itself.
func NewFormatter(locale, code, symbol string) (Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return Formatter{}, fmt.Errorf("parsing locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return Formatter{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	iso := unit.String()
	if symbol == "" {
		symbol = SymbolFor(iso)
	}
	return Formatter{
		locale:  tag,
		code:    iso,
		symbol:  symbol,
		printer: message.NewPrinter(tag),
	}, nil
}

// SymbolFor returns the display symbol for an ISO code, or the code followed
// by a space when none is known.
func SymbolFor(code string) string {
	code = strings.ToUpper(code)
	if s, ok := symbols[code]; ok {
		return s
	}
	return code + " "
}

func (f Formatter) Code() string   { return f.code }
func (f Formatter) Symbol() string { return f.symbol }
func (f Formatter) Locale() string { return f.locale.String() }

// Format rounds to whole units and renders e.g. ₹12,34,567 or -₹200.
func (f Formatter) Format(amount decimal.Decimal) string {
	return f.FormatFixed(amount, 0)
}

// FormatFixed renders with a fixed number of fraction digits. Amounts that
// round to zero never carry a minus sign.
func (f Formatter) FormatFixed(amount decimal.Decimal, places int32) string {
	rounded := amount.Round(places)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + f.symbol + f.sprint(rounded.Abs(), int(places))
}

// Number groups an integer for the locale without a currency symbol.
func (f Formatter) Number(n int64) string {
	if n < 0 {
		return "-" + f.sprint(decimal.NewFromInt(-n), 0)
	}
	return f.sprint(decimal.NewFromInt(n), 0)
}

func (f Formatter) sprint(d decimal.Decimal, places int) string {
	p := f.printer
	if p == nil {
		p = message.NewPrinter(f.locale)
	}
	return p.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(places)))
}

// Preset pairs a currency with the locale it is usually shown in.
type Preset struct {
	Code   string
	Locale string
	Label  string
}

// Presets are the currencies offered by setup and settings screens.
var Presets = []Preset{
	{"INR", "en-IN", "₹ Indian Rupee"},
	{"USD", "en-US", "$ US Dollar"},
	{"EUR", "de-DE", "€ Euro"},
	{"GBP", "en-GB", "£ British Pound"},
	{"JPY", "ja-JP", "¥ Japanese Yen"},
}

// PresetFor returns the preset for code, falling back to en-US display.
func PresetFor(code string) Preset {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, p := range Presets {
		if p.Code == code {
			return p
		}
	}
	return Preset{Code: code, Locale: "en-US", Label: code}
}
