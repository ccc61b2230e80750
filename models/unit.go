package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is an immutable measure held in its unit kind's smallest unit:
// grams for weight kinds, whole counts for the rest. All arithmetic is
// integer math on the canonical value; display strings are derived.
type Quantity struct {
	kind      UnitKind
	canonical int64
}

var maxCanonical = decimal.NewFromInt(math.MaxInt64)

func newQuantity(kind UnitKind, canonical int64) Quantity {
	return Quantity{kind: kind, canonical: canonical}
}

func (q Quantity) Kind() UnitKind { return q.kind }

// Canonical returns grams for weight kinds, the whole count otherwise.
func (q Quantity) Canonical() int64 { return q.canonical }

func (q Quantity) IsZero() bool { return q.canonical == 0 }

// DecimalUnits returns the quantity in pricing units: decimal kilograms for
// weight kinds (grams/1000), the plain count otherwise. Rates are quoted per
// kilogram or per count unit, so amount = rate * DecimalUnits.
func (q Quantity) DecimalUnits() decimal.Decimal {
	if q.kind.IsWeight() {
		return decimal.New(q.canonical, -3)
	}
	return decimal.NewFromInt(q.canonical)
}

// ParseQuantity reads one quantity string.
//
// KgGm accepts "<kg>" or "<kg>-<grams>" with 0 <= grams < 1000. Kg accepts
// a decimal kilogram string; the fraction becomes grams (x1000, truncated).
// Count kinds accept a non-negative numeric string; fractional counts
// truncate to whole units. Nothing is ever coerced to zero: bad input is
// always an error.
func ParseQuantity(input string, kind UnitKind) (Quantity, error) {
	if !kind.IsValid() {
		return Quantity{}, fmt.Errorf("invalid unit kind %q", kind)
	}
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Quantity{}, fmt.Errorf("%w: empty input", ErrQuantityNotNumeric)
	}
	if strings.HasPrefix(trimmed, "-") {
		return Quantity{}, fmt.Errorf("%w: %q", ErrQuantityNegative, trimmed)
	}

	var canonical int64
	var err error
	switch kind {
	case UnitKgGm:
		canonical, err = parseMixedWeight(trimmed)
	case UnitKgDecimal:
		canonical, err = parseDecimalScaled(trimmed, 1000)
	default:
		canonical, err = parseDecimalScaled(trimmed, 1)
	}
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{kind: kind, canonical: canonical}, nil
}

func parseMixedWeight(s string) (int64, error) {
	parts := strings.Split(s, "-")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrQuantityNotNumeric, s)
	}
	kg, err := parseNonNegativeInt(parts[0])
	if err != nil {
		return 0, err
	}
	var grams int64
	if len(parts) == 2 {
		grams, err = parseNonNegativeInt(parts[1])
		if err != nil {
			return 0, err
		}
		if grams > 999 {
			return 0, fmt.Errorf("%w: got %d", ErrQuantityOutOfRange, grams)
		}
	}
	if kg > (math.MaxInt64-999)/1000 {
		return 0, fmt.Errorf("%w: %q", ErrQuantityOutOfRange, s)
	}
	return kg*1000 + grams, nil
}

func parseNonNegativeInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q", ErrQuantityOutOfRange, s)
		}
		return 0, fmt.Errorf("%w: %q", ErrQuantityNotNumeric, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrQuantityNegative, s)
	}
	return n, nil
}

func parseDecimalScaled(s string, scale int64) (int64, error) {
	dec, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrQuantityNotNumeric, s)
	}
	if dec.IsNegative() {
		return 0, fmt.Errorf("%w: %q", ErrQuantityNegative, s)
	}
	scaled := dec.Mul(decimal.NewFromInt(scale))
	if scaled.Cmp(maxCanonical) > 0 {
		return 0, fmt.Errorf("%w: %q", ErrQuantityOutOfRange, s)
	}
	return scaled.IntPart(), nil
}

// ValidateQuantity applies the parse rules without keeping the result,
// for rejecting input before persistence.
func ValidateQuantity(input string, kind UnitKind) error {
	_, err := ParseQuantity(input, kind)
	return err
}

// String renders the human display form: "1600kg 60g", "1600kg", "5 pcs".
func (q Quantity) String() string {
	if q.kind.IsWeight() {
		kg := q.canonical / 1000
		grams := q.canonical % 1000
		if grams == 0 {
			return fmt.Sprintf("%dkg", kg)
		}
		return fmt.Sprintf("%dkg %dg", kg, grams)
	}
	return fmt.Sprintf("%d %s", q.canonical, q.kind.Symbol())
}

// CanonicalString renders the stored textual form: "1600-60" / "1600" for
// KgGm, a decimal kilogram string for Kg, a plain count otherwise. Existing
// rows depend on these exact encodings.
func (q Quantity) CanonicalString() string {
	switch {
	case q.kind == UnitKgGm:
		kg := q.canonical / 1000
		grams := q.canonical % 1000
		if grams == 0 {
			return strconv.FormatInt(kg, 10)
		}
		return fmt.Sprintf("%d-%d", kg, grams)
	case q.kind == UnitKgDecimal:
		return decimal.New(q.canonical, -3).String()
	default:
		return strconv.FormatInt(q.canonical, 10)
	}
}

func (q Quantity) Add(other Quantity) (Quantity, error) {
	if q.kind != other.kind {
		return Quantity{}, fmt.Errorf("%w: %s vs %s", ErrUnitKindMismatch, q.kind, other.kind)
	}
	return newQuantity(q.kind, q.canonical+other.canonical), nil
}

// Sub floors at zero: stock never goes negative, so removing more than is
// on hand leaves zero.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	if q.kind != other.kind {
		return Quantity{}, fmt.Errorf("%w: %s vs %s", ErrUnitKindMismatch, q.kind, other.kind)
	}
	remaining := q.canonical - other.canonical
	if remaining < 0 {
		remaining = 0
	}
	return newQuantity(q.kind, remaining), nil
}

func (q Quantity) Cmp(other Quantity) (int, error) {
	if q.kind != other.kind {
		return 0, fmt.Errorf("%w: %s vs %s", ErrUnitKindMismatch, q.kind, other.kind)
	}
	switch {
	case q.canonical < other.canonical:
		return -1, nil
	case q.canonical > other.canonical:
		return 1, nil
	default:
		return 0, nil
	}
}

func (q Quantity) IsSufficient(need Quantity) (bool, error) {
	order, err := q.Cmp(need)
	if err != nil {
		return false, err
	}
	return order != -1, nil
}

// AddQuantityStrings combines two stored quantity strings of one kind and
// returns the canonical string of the sum.
func AddQuantityStrings(kind UnitKind, a string, b string) (string, error) {
	qa, err := ParseQuantity(a, kind)
	if err != nil {
		return "", err
	}
	qb, err := ParseQuantity(b, kind)
	if err != nil {
		return "", err
	}
	sum, err := qa.Add(qb)
	if err != nil {
		return "", err
	}
	return sum.CanonicalString(), nil
}

// SubtractQuantityStrings removes b from a (floored at zero) and returns
// the canonical string of the remainder.
func SubtractQuantityStrings(kind UnitKind, a string, b string) (string, error) {
	qa, err := ParseQuantity(a, kind)
	if err != nil {
		return "", err
	}
	qb, err := ParseQuantity(b, kind)
	if err != nil {
		return "", err
	}
	remaining, err := qa.Sub(qb)
	if err != nil {
		return "", err
	}
	return remaining.CanonicalString(), nil
}
