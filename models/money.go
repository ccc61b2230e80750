package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount of store currency held as integer cents. Every
// operation is exact integer or scaled-decimal math; float64 never touches
// an amount. Amounts may go negative: a negative khata balance is credit
// the store owes the customer.
type Money struct {
	cents int64
}

func NewMoneyFromCents(cents int64) Money {
	return Money{cents: cents}
}

// MoneyFromDecimal rounds to the cent, half away from zero. This is the
// single rounding point of the engine; everything downstream is integer.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{cents: d.Round(2).Shift(2).IntPart()}
}

func NewMoneyFromString(s string) (Money, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Money{}, fmt.Errorf("invalid money amount: empty string")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return MoneyFromDecimal(d), nil
}

func (m Money) Cents() int64 { return m.cents }

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -2)
}

// String renders the boundary form with two places: "1234.56".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) IsZero() bool     { return m.cents == 0 }
func (m Money) IsNegative() bool { return m.cents < 0 }

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

func (m Money) Sub(other Money) Money {
	return Money{cents: m.cents - other.cents}
}

func (m Money) Neg() Money {
	return Money{cents: -m.cents}
}

func (m Money) Cmp(other Money) int {
	switch {
	case m.cents < other.cents:
		return -1
	case m.cents > other.cents:
		return 1
	default:
		return 0
	}
}

// Mul scales the amount by a decimal factor. The multiply happens on the
// cents integer so only one net scale-down remains, rounded once at the
// cents boundary.
func (m Money) Mul(factor decimal.Decimal) Money {
	product := decimal.NewFromInt(m.cents).Mul(factor)
	return Money{cents: product.Round(0).IntPart()}
}

// Div returns zero Money when the divisor is zero. The store treats "no
// computable result" as a neutral value, not a failure.
func (m Money) Div(divisor decimal.Decimal) Money {
	if divisor.IsZero() {
		return Money{}
	}
	quotient := decimal.NewFromInt(m.cents).Div(divisor)
	return Money{cents: quotient.Round(0).IntPart()}
}

func (m Money) PercentageOf(percent decimal.Decimal) Money {
	scaled := decimal.NewFromInt(m.cents).Mul(percent).Div(decimal.NewFromInt(100))
	return Money{cents: scaled.Round(0).IntPart()}
}

func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

func (m *Money) Scan(value interface{}) error {
	if value == nil {
		*m = Money{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		parsed, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("cannot scan %q into Money: %w", string(v), err)
		}
		*m = MoneyFromDecimal(parsed)
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("cannot scan %q into Money: %w", v, err)
		}
		*m = MoneyFromDecimal(parsed)
	case int64:
		*m = MoneyFromDecimal(decimal.NewFromInt(v))
	case float64:
		*m = MoneyFromDecimal(decimal.NewFromFloat(v))
	default:
		return fmt.Errorf("cannot convert %T to Money", value)
	}
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// tolerate bare JSON numbers from older cache entries
		s = string(data)
	}
	parsed, err := NewMoneyFromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
