package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// UnitKind tags every quantity with the unit family it was entered in.
// Steel stock is weighed (mixed kg+gm or decimal kg); hardware lines are
// counted (pieces, bags, feet, bundles).
type UnitKind string

const (
	UnitKgGm      UnitKind = "KgGm"
	UnitKgDecimal UnitKind = "Kg"
	UnitPiece     UnitKind = "Piece"
	UnitBag       UnitKind = "Bag"
	UnitFoot      UnitKind = "Foot"
	UnitBundle    UnitKind = "Bundle"
)

func (u UnitKind) IsValid() bool {
	switch u {
	case UnitKgGm, UnitKgDecimal, UnitPiece, UnitBag, UnitFoot, UnitBundle:
		return true
	}
	return false
}

// IsWeight reports whether the canonical value is grams rather than a count.
func (u UnitKind) IsWeight() bool {
	return u == UnitKgGm || u == UnitKgDecimal
}

func (u UnitKind) Symbol() string {
	switch u {
	case UnitKgGm, UnitKgDecimal:
		return "kg"
	case UnitPiece:
		return "pcs"
	case UnitBag:
		return "bag"
	case UnitFoot:
		return "ft"
	case UnitBundle:
		return "bdl"
	default:
		return ""
	}
}

// TransactionKind classifies ledger rows. Invoice rows are receivables,
// not cash; the roznamcha (daily cash book) only folds cash movements.
type TransactionKind string

const (
	TransactionKindInvoice        TransactionKind = "Invoice"
	TransactionKindPayment        TransactionKind = "Payment"
	TransactionKindAdjustment     TransactionKind = "Adjustment"
	TransactionKindManualIncome   TransactionKind = "ManualIncome"
	TransactionKindManualOutgoing TransactionKind = "ManualOutgoing"
)

func (t TransactionKind) IsValid() bool {
	switch t {
	case TransactionKindInvoice, TransactionKindPayment, TransactionKindAdjustment,
		TransactionKindManualIncome, TransactionKindManualOutgoing:
		return true
	}
	return false
}

func (t TransactionKind) IsCashMovement() bool {
	switch t {
	case TransactionKindPayment, TransactionKindManualIncome, TransactionKindManualOutgoing:
		return true
	}
	return false
}

// ManuallyEditable reports whether rows of this kind default to Mutable.
// Invoice and Payment rows are derived from their source documents and
// stay locked; owner-entered rows remain editable.
func (t TransactionKind) ManuallyEditable() bool {
	switch t {
	case TransactionKindAdjustment, TransactionKindManualIncome, TransactionKindManualOutgoing:
		return true
	}
	return false
}

type CounterpartyType string

const (
	CounterpartyCustomer CounterpartyType = "Customer"
	CounterpartyVendor   CounterpartyType = "Vendor"
	CounterpartyStaff    CounterpartyType = "Staff"
)

func (c CounterpartyType) IsValid() bool {
	switch c {
	case CounterpartyCustomer, CounterpartyVendor, CounterpartyStaff:
		return true
	}
	return false
}

type InvoiceStatus string

const (
	InvoiceStatusUnpaid      InvoiceStatus = "Unpaid"
	InvoiceStatusPartialPaid InvoiceStatus = "Partial Paid"
	InvoiceStatusPaid        InvoiceStatus = "Paid"
)

type StockDirection string

const (
	StockDirectionIn  StockDirection = "In"
	StockDirectionOut StockDirection = "Out"
)

func (d StockDirection) IsValid() bool {
	return d == StockDirectionIn || d == StockDirectionOut
}

// DateString is a calendar date pinned to the store's timezone. It is the
// bucketing key for daily balances and the roznamcha.
type DateString time.Time

const dateStringLayout = "2006-01-02"

func NewDateString(t time.Time, timezone string) (DateString, error) {
	if timezone == "" {
		timezone = "Asia/Karachi"
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return DateString{}, err
	}
	localTime := t.In(location)
	dateOnly := time.Date(localTime.Year(), localTime.Month(), localTime.Day(), 0, 0, 0, 0, location)
	return DateString(dateOnly), nil
}

func ParseDateString(s string, timezone string) (DateString, error) {
	if timezone == "" {
		timezone = "Asia/Karachi"
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return DateString{}, err
	}
	t, err := time.ParseInLocation(dateStringLayout, s, location)
	if err != nil {
		return DateString{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateString(t), nil
}

func (d DateString) String() string {
	return time.Time(d).Format(dateStringLayout)
}

func (d DateString) Time() time.Time {
	return time.Time(d)
}

func (d DateString) IsZero() bool {
	return time.Time(d).IsZero()
}

func (d DateString) AddDays(n int) DateString {
	return DateString(time.Time(d).AddDate(0, 0, n))
}

func (d DateString) Before(other DateString) bool {
	return time.Time(d).Before(time.Time(other))
}

func (d DateString) Equal(other DateString) bool {
	return d.String() == other.String()
}

// StartOfDayUTCTime returns the UTC instant the store's day opens. The
// year/month/day of d are re-anchored in the given timezone, so scanned
// values (which carry UTC midnight) still resolve to the right instant.
func (d DateString) StartOfDayUTCTime(timezone string) (time.Time, error) {
	if timezone == "" {
		timezone = "Asia/Karachi"
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	localTime := time.Time(d)
	start := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		0, 0, 0, 0,
		location,
	)
	return start.In(time.UTC), nil
}

// EndOfDayUTCTime returns the UTC instant the store's day closes.
func (d DateString) EndOfDayUTCTime(timezone string) (time.Time, error) {
	if timezone == "" {
		timezone = "Asia/Karachi"
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	localTime := time.Time(d)
	end := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		23, 59, 59, 999,
		location,
	)
	return end.In(time.UTC), nil
}

// Value hands the driver a plain "2006-01-02" string. Sending a time.Time
// would let the driver shift it into the session timezone and land writes
// on the wrong calendar day.
func (d DateString) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *DateString) Scan(value interface{}) error {
	if value == nil {
		*d = DateString(time.Time{})
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		*d = DateString(v)
	case []byte:
		parsed, err := time.Parse(dateStringLayout, string(v))
		if err != nil {
			return err
		}
		*d = DateString(parsed)
	default:
		return fmt.Errorf("cannot convert %T to DateString", value)
	}
	return nil
}

func (d DateString) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DateString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("DateString must be a string")
	}
	parsed, err := ParseDateString(s, "")
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
