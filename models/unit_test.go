package models

import (
	"errors"
	"testing"
)

func TestParseQuantity_MixedWeight(t *testing.T) {
	cases := []struct {
		in        string
		canonical int64
		display   string
	}{
		{"1600-60", 1600060, "1600kg 60g"},
		{"1600", 1600000, "1600kg"},
		{"0", 0, "0kg"},
		{"5-999", 5999, "5kg 999g"},
		{"5-0", 5000, "5kg"},
	}
	for _, tc := range cases {
		q, err := ParseQuantity(tc.in, UnitKgGm)
		if err != nil {
			t.Fatalf("ParseQuantity(%q) error: %v", tc.in, err)
		}
		if q.Canonical() != tc.canonical {
			t.Fatalf("ParseQuantity(%q) canonical expected %d, got %d", tc.in, tc.canonical, q.Canonical())
		}
		if q.String() != tc.display {
			t.Fatalf("ParseQuantity(%q) display expected %q, got %q", tc.in, tc.display, q.String())
		}
	}
}

func TestParseQuantity_DecimalWeight(t *testing.T) {
	cases := []struct {
		in        string
		canonical int64
		display   string
	}{
		{"500.10", 500100, "500kg 100g"},
		{"500", 500000, "500kg"},
		{"0.001", 1, "0kg 1g"},
		{"12.3456", 12345, "12kg 345g"}, // sub-gram precision truncates
	}
	for _, tc := range cases {
		q, err := ParseQuantity(tc.in, UnitKgDecimal)
		if err != nil {
			t.Fatalf("ParseQuantity(%q) error: %v", tc.in, err)
		}
		if q.Canonical() != tc.canonical {
			t.Fatalf("ParseQuantity(%q) canonical expected %d, got %d", tc.in, tc.canonical, q.Canonical())
		}
		if q.String() != tc.display {
			t.Fatalf("ParseQuantity(%q) display expected %q, got %q", tc.in, tc.display, q.String())
		}
	}
}

func TestParseQuantity_Count(t *testing.T) {
	q, err := ParseQuantity("25", UnitPiece)
	if err != nil {
		t.Fatalf("ParseQuantity(25, Piece) error: %v", err)
	}
	if q.Canonical() != 25 || q.String() != "25 pcs" {
		t.Fatalf("unexpected count quantity: canonical=%d display=%q", q.Canonical(), q.String())
	}

	q, err = ParseQuantity("12.9", UnitBag)
	if err != nil {
		t.Fatalf("ParseQuantity(12.9, Bag) error: %v", err)
	}
	if q.Canonical() != 12 {
		t.Fatalf("fractional count should truncate to 12, got %d", q.Canonical())
	}
	if q.String() != "12 bag" {
		t.Fatalf("unexpected display %q", q.String())
	}
}

func TestParseQuantity_Errors(t *testing.T) {
	cases := []struct {
		in   string
		kind UnitKind
		want error
	}{
		{"1600-1000", UnitKgGm, ErrQuantityOutOfRange},
		{"5-abc", UnitKgGm, ErrQuantityNotNumeric},
		{"1-2-3", UnitKgGm, ErrQuantityNotNumeric},
		{"-5", UnitKgGm, ErrQuantityNegative},
		{"-1.5", UnitKgDecimal, ErrQuantityNegative},
		{"abc", UnitKgDecimal, ErrQuantityNotNumeric},
		{"-10", UnitPiece, ErrQuantityNegative},
		{"ten", UnitFoot, ErrQuantityNotNumeric},
		{"", UnitPiece, ErrQuantityNotNumeric},
	}
	for _, tc := range cases {
		_, err := ParseQuantity(tc.in, tc.kind)
		if !errors.Is(err, tc.want) {
			t.Fatalf("ParseQuantity(%q, %s) expected %v, got %v", tc.in, tc.kind, tc.want, err)
		}
	}
}

func TestQuantity_RoundTrip(t *testing.T) {
	cases := []struct {
		kind   UnitKind
		inputs []string
	}{
		{UnitKgGm, []string{"0", "1", "5-0", "5-1", "1600-60", "999-999", "123456"}},
		{UnitKgDecimal, []string{"0", "0.5", "500.10", "12.345", "7"}},
		{UnitPiece, []string{"0", "1", "25", "99999"}},
		{UnitFoot, []string{"0", "40", "12.0"}},
	}
	for _, tc := range cases {
		for _, input := range tc.inputs {
			q, err := ParseQuantity(input, tc.kind)
			if err != nil {
				t.Fatalf("ParseQuantity(%q, %s) error: %v", input, tc.kind, err)
			}
			again, err := ParseQuantity(q.CanonicalString(), tc.kind)
			if err != nil {
				t.Fatalf("re-parse of %q (from %q, %s) error: %v", q.CanonicalString(), input, tc.kind, err)
			}
			if again.Canonical() != q.Canonical() {
				t.Fatalf("round-trip drift for %q (%s): %d != %d", input, tc.kind, q.Canonical(), again.Canonical())
			}
		}
	}
}

func TestQuantity_AddSub(t *testing.T) {
	a, _ := ParseQuantity("1600-60", UnitKgGm)
	b, _ := ParseQuantity("0-950", UnitKgGm)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if sum.Canonical() != 1601010 {
		t.Fatalf("Add expected 1601010, got %d", sum.Canonical())
	}
	if sum.String() != "1601kg 10g" {
		t.Fatalf("Add display expected %q, got %q", "1601kg 10g", sum.String())
	}

	// subtract(add(a,b), b) == a
	back, err := sum.Sub(b)
	if err != nil {
		t.Fatalf("Sub error: %v", err)
	}
	if back.Canonical() != a.Canonical() {
		t.Fatalf("Sub did not invert Add: %d != %d", back.Canonical(), a.Canonical())
	}
}

func TestQuantity_SubFloorsAtZero(t *testing.T) {
	have, _ := ParseQuantity("5", UnitPiece)
	need, _ := ParseQuantity("10", UnitPiece)
	remaining, err := have.Sub(need)
	if err != nil {
		t.Fatalf("Sub error: %v", err)
	}
	if remaining.Canonical() != 0 {
		t.Fatalf("Sub should floor at zero, got %d", remaining.Canonical())
	}
	if remaining.CanonicalString() != "0" {
		t.Fatalf("floored canonical string expected %q, got %q", "0", remaining.CanonicalString())
	}
}

func TestQuantity_KindMismatch(t *testing.T) {
	kg, _ := ParseQuantity("5", UnitKgGm)
	pcs, _ := ParseQuantity("5", UnitPiece)

	if _, err := kg.Add(pcs); !errors.Is(err, ErrUnitKindMismatch) {
		t.Fatalf("Add across kinds expected ErrUnitKindMismatch, got %v", err)
	}
	if _, err := kg.Sub(pcs); !errors.Is(err, ErrUnitKindMismatch) {
		t.Fatalf("Sub across kinds expected ErrUnitKindMismatch, got %v", err)
	}
	if _, err := kg.Cmp(pcs); !errors.Is(err, ErrUnitKindMismatch) {
		t.Fatalf("Cmp across kinds expected ErrUnitKindMismatch, got %v", err)
	}
}

func TestQuantity_IsSufficient(t *testing.T) {
	have, _ := ParseQuantity("10-500", UnitKgGm)
	cases := []struct {
		need   string
		enough bool
	}{
		{"10-500", true},
		{"10-499", true},
		{"10-501", false},
		{"0", true},
	}
	for _, tc := range cases {
		need, err := ParseQuantity(tc.need, UnitKgGm)
		if err != nil {
			t.Fatalf("ParseQuantity(%q) error: %v", tc.need, err)
		}
		enough, err := have.IsSufficient(need)
		if err != nil {
			t.Fatalf("IsSufficient(%q) error: %v", tc.need, err)
		}
		if enough != tc.enough {
			t.Fatalf("IsSufficient(%q) expected %v, got %v", tc.need, tc.enough, enough)
		}
	}
}

func TestQuantityStrings(t *testing.T) {
	sum, err := AddQuantityStrings(UnitKgGm, "1600-60", "0-940")
	if err != nil {
		t.Fatalf("AddQuantityStrings error: %v", err)
	}
	if sum != "1601" {
		t.Fatalf("AddQuantityStrings expected %q, got %q", "1601", sum)
	}

	remaining, err := SubtractQuantityStrings(UnitPiece, "5", "10")
	if err != nil {
		t.Fatalf("SubtractQuantityStrings error: %v", err)
	}
	if remaining != "0" {
		t.Fatalf("SubtractQuantityStrings expected %q, got %q", "0", remaining)
	}
}
