package currency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const base = "USD"

// DefaultRates are the built-in quotes, keyed "FROM/TO".
var DefaultRates = map[string]float64{
	"USD/INR": 83,
	"EUR/USD": 1.08,
	"GBP/USD": 1.26,
	"JPY/USD": 0.0067,
}

// Converter converts amounts using a static rate table. Pairs that are not
// quoted directly are resolved through their inverse or through USD.
type Converter struct {
	rates map[[2]string]decimal.Decimal
}

// NewConverter builds a converter from DefaultRates plus overrides. Override
// keys use the same "FROM/TO" form; malformed keys and non-positive rates are
// rejected.
func NewConverter(overrides map[string]float64) (*Converter, error) {
	c := &Converter{rates: make(map[[2]string]decimal.Decimal)}
	for k, v := range DefaultRates {
		if err := c.set(k, v); err != nil {
			return nil, err
		}
	}
	for k, v := range overrides {
		if err := c.set(k, v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Converter) set(pair string, rate float64) error {
	from, to, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(pair)), "/")
	if !ok || from == "" || to == "" {
		return fmt.Errorf("rate key %q: want FROM/TO", pair)
	}
	if rate <= 0 {
		return fmt.Errorf("rate %s must be positive", pair)
	}
	c.rates[[2]string{from, to}] = decimal.NewFromFloat(rate)
	return nil
}

// Codes lists every currency the converter knows, sorted.
func (c *Converter) Codes() []string {
	seen := map[string]struct{}{base: {}}
	for k := range c.rates {
		seen[k[0]] = struct{}{}
		seen[k[1]] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Rate returns units of to per one unit of from.
func (c *Converter) Rate(from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if r, ok := c.direct(from, to); ok {
		return r, nil
	}
	toBase, ok1 := c.direct(from, base)
	fromBase, ok2 := c.direct(base, to)
	if ok1 && ok2 {
		return toBase.Mul(fromBase), nil
	}
	if !ok1 {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
}

func (c *Converter) direct(from, to string) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), true
	}
	if r, ok := c.rates[[2]string{from, to}]; ok {
		return r, true
	}
	if r, ok := c.rates[[2]string{to, from}]; ok {
		return decimal.NewFromInt(1).Div(r), true
	}
	return decimal.Zero, false
}

// Convert returns amount*rate rounded to two decimal places.
func (c *Converter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := c.Rate(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), nil
}

// Quote is one conversion request as shown in the converter view.
type Quote struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// DefaultQuote is 100 USD to INR.
func DefaultQuote() Quote {
	return Quote{From: "USD", To: "INR", Amount: decimal.NewFromInt(100)}
}

// Swap exchanges the two sides of the quote.
func (q Quote) Swap() Quote {
	q.From, q.To = q.To, q.From
	return q
}
