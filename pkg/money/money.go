// Package money holds rupee amounts as integer paise so that repeated
// additions never drift. Rupee values only appear at the edges (JSON and
// display), where they are converted with shopspring/decimal.
package money

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Paise is an amount in Indian paise (1/100 rupee).
type Paise int64

var hundred = decimal.NewFromInt(100)

// FromDecimal converts a rupee decimal to paise, rounding half away from zero.
func FromDecimal(rupees decimal.Decimal) Paise {
	return Paise(rupees.Mul(hundred).Round(0).IntPart())
}

// Parse parses a rupee amount such as "25.50" or "₹ 1,250".
func Parse(s string) (Paise, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "₹")
	cleaned = strings.ReplaceAll(strings.TrimSpace(cleaned), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Paise {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Rupees returns the amount as a rupee decimal.
func (p Paise) Rupees() decimal.Decimal {
	return decimal.New(int64(p), -2)
}

// Times multiplies the amount by an integer quantity.
func (p Paise) Times(qty int) Paise {
	return p * Paise(qty)
}

// CheckedTimes is Times that reports false when the product does not fit
// in an int64 or qty is negative.
func (p Paise) CheckedTimes(qty int) (Paise, bool) {
	if qty < 0 {
		return 0, false
	}
	if p == 0 || qty == 0 {
		return 0, true
	}
	product := p * Paise(qty)
	if product/Paise(qty) != p {
		return 0, false
	}
	return product, true
}

// ApplyRate returns p×rate rounded to the nearest paisa.
func (p Paise) ApplyRate(rate decimal.Decimal) Paise {
	return Paise(decimal.NewFromInt(int64(p)).Mul(rate).Round(0).IntPart())
}

// Decimal renders the amount with exactly two decimals, e.g. "73.00".
func (p Paise) Decimal() string {
	return p.Rupees().StringFixed(2)
}

// String renders the amount for display, e.g. "₹73.00".
func (p Paise) String() string {
	return "₹" + p.Decimal()
}

// MarshalJSON writes the amount as a rupee number with two decimals.
func (p Paise) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal()), nil
}

// UnmarshalJSON accepts a rupee number or a quoted rupee string.
func (p *Paise) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*p = 0
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		parsed, err := Parse(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	d, err := decimal.NewFromString(string(trimmed))
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", trimmed, err)
	}
	*p = FromDecimal(d)
	return nil
}
