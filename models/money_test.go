package models

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoney_ParseAndFormat(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		out   string
	}{
		{"1234.56", 123456, "1234.56"},
		{"0", 0, "0.00"},
		{"0.1", 10, "0.10"},
		{"99.999", 10000, "100.00"}, // rounds half away from zero
		{"-250.25", -25025, "-250.25"},
		{" 15 ", 1500, "15.00"},
	}
	for _, tc := range cases {
		m, err := NewMoneyFromString(tc.in)
		if err != nil {
			t.Fatalf("NewMoneyFromString(%q) error: %v", tc.in, err)
		}
		if m.Cents() != tc.cents {
			t.Fatalf("NewMoneyFromString(%q) cents expected %d, got %d", tc.in, tc.cents, m.Cents())
		}
		if m.String() != tc.out {
			t.Fatalf("NewMoneyFromString(%q) string expected %q, got %q", tc.in, tc.out, m.String())
		}
	}

	if _, err := NewMoneyFromString("abc"); err == nil {
		t.Fatal("NewMoneyFromString(abc) should fail, not coerce to zero")
	}
	if _, err := NewMoneyFromString(""); err == nil {
		t.Fatal("NewMoneyFromString(empty) should fail, not coerce to zero")
	}
}

// 10,000 additions of decimal-string amounts against a big-integer
// reference must agree to the cent.
func TestMoney_SumNoDrift(t *testing.T) {
	sum := Money{}
	reference := big.NewInt(0)
	for i := 0; i < 10000; i++ {
		// Cycle through cent values that are classic float troublemakers.
		cents := int64(i%997) + 1
		s := fmt.Sprintf("%d.%02d", cents/100, cents%100)
		m, err := NewMoneyFromString(s)
		if err != nil {
			t.Fatalf("NewMoneyFromString(%q) error: %v", s, err)
		}
		sum = sum.Add(m)
		reference.Add(reference, big.NewInt(cents))
	}
	if sum.Cents() != reference.Int64() {
		t.Fatalf("drift after 10000 additions: engine %d cents, reference %d cents", sum.Cents(), reference.Int64())
	}
}

func TestMoney_MulDivPercentage(t *testing.T) {
	amount, _ := NewMoneyFromString("150.00")

	threeAndHalf := amount.Mul(decimal.RequireFromString("3.5"))
	if threeAndHalf.String() != "525.00" {
		t.Fatalf("150.00 * 3.5 expected 525.00, got %s", threeAndHalf)
	}

	third := amount.Div(decimal.NewFromInt(3))
	if third.String() != "50.00" {
		t.Fatalf("150.00 / 3 expected 50.00, got %s", third)
	}

	// Divide-by-zero yields a neutral value by policy.
	if z := amount.Div(decimal.Zero); !z.IsZero() {
		t.Fatalf("divide by zero expected 0.00, got %s", z)
	}

	seventeen := amount.PercentageOf(decimal.NewFromInt(17))
	if seventeen.String() != "25.50" {
		t.Fatalf("17%% of 150.00 expected 25.50, got %s", seventeen)
	}

	// Multiplying scaled integers must scale down exactly once: 0.1 * 0.1.
	tenCents, _ := NewMoneyFromString("0.10")
	product := tenCents.Mul(decimal.RequireFromString("0.1"))
	if product.Cents() != 1 {
		t.Fatalf("0.10 * 0.1 expected 1 cent, got %d", product.Cents())
	}
}

func TestMoney_CmpNeg(t *testing.T) {
	a, _ := NewMoneyFromString("10.00")
	b, _ := NewMoneyFromString("10.01")
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Fatal("Cmp ordering is wrong")
	}
	if a.Neg().Cents() != -1000 {
		t.Fatalf("Neg expected -1000, got %d", a.Neg().Cents())
	}
	if !a.Sub(a).IsZero() {
		t.Fatal("a - a should be zero")
	}
	if !a.Sub(b).IsNegative() {
		t.Fatal("10.00 - 10.01 should be negative (customer credit)")
	}
}

func TestMoney_ScanValue(t *testing.T) {
	var m Money
	if err := m.Scan([]byte("1234.56")); err != nil {
		t.Fatalf("Scan bytes error: %v", err)
	}
	if m.Cents() != 123456 {
		t.Fatalf("Scan bytes expected 123456 cents, got %d", m.Cents())
	}

	v, err := m.Value()
	if err != nil {
		t.Fatalf("Value error: %v", err)
	}
	if v != "1234.56" {
		t.Fatalf("Value expected %q, got %v", "1234.56", v)
	}

	if err := m.Scan(nil); err != nil {
		t.Fatalf("Scan nil error: %v", err)
	}
	if !m.IsZero() {
		t.Fatal("Scan nil should zero the amount")
	}
}
