package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/utils"
	"gorm.io/gorm"
)

// LedgerTransaction is the single store of financial events. System rows
// (invoice postings, payments) are locked; owner-entered rows carry
// Mutable=true and may be edited or removed, which re-chains the daily
// balances from their date forward.
//
// Exactly one of Debit/Credit is non-zero per row. TransactionDate is the
// store-timezone day of TransactionDateTime, persisted so day bucketing
// never re-derives timezone math in SQL.
type LedgerTransaction struct {
	ID                  int               `gorm:"primary_key" json:"id"`
	TransactionDateTime time.Time         `gorm:"index;not null;index:idx_lt_kind_date,priority:2" json:"transaction_date_time"`
	TransactionDate     DateString        `gorm:"type:date;index;not null" json:"transaction_date"`
	Kind                TransactionKind   `gorm:"size:20;not null;index:idx_lt_kind_date,priority:1" json:"kind"`
	ReferenceNumber     string            `gorm:"size:100;not null;uniqueIndex" json:"reference_number"`
	Description         string            `gorm:"size:255" json:"description"`
	GrossAmount         Money             `gorm:"type:decimal(20,2);default:0" json:"gross_amount"`
	Debit               Money             `gorm:"type:decimal(20,2);default:0" json:"debit"`
	Credit              Money             `gorm:"type:decimal(20,2);default:0" json:"credit"`
	CounterpartyType    *CounterpartyType `gorm:"size:20;index:idx_lt_party,priority:1" json:"counterparty_type"`
	CounterpartyId      *int              `gorm:"index:idx_lt_party,priority:2" json:"counterparty_id"`
	AllocatedInvoiceId  *int              `gorm:"index" json:"allocated_invoice_id"`
	Mutable             bool              `gorm:"not null;default:false" json:"mutable"`
	CreatedAt           time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// Validate rejects rows that would corrupt the ledger before they persist.
func (t *LedgerTransaction) Validate() error {
	if !t.Kind.IsValid() {
		return fmt.Errorf("invalid transaction kind %q", t.Kind)
	}
	if t.Debit.IsNegative() || t.Credit.IsNegative() {
		return errors.New("debit and credit must not be negative; post the opposite side instead")
	}
	debitSet := !t.Debit.IsZero()
	creditSet := !t.Credit.IsZero()
	if debitSet == creditSet {
		return errors.New("exactly one of debit or credit must be non-zero")
	}
	if t.CounterpartyType != nil && !t.CounterpartyType.IsValid() {
		return fmt.Errorf("invalid counterparty type %q", *t.CounterpartyType)
	}
	if t.AllocatedInvoiceId != nil && t.Kind != TransactionKindPayment {
		return errors.New("only payments may allocate to an invoice")
	}
	if t.TransactionDate.IsZero() {
		return errors.New("transaction date is required")
	}
	return nil
}

// Amount returns whichever side of the row is non-zero.
func (t LedgerTransaction) Amount() Money {
	if !t.Debit.IsZero() {
		return t.Debit
	}
	return t.Credit
}

// CashView re-orients the row to the cash box: debit = cash in, credit =
// cash out. Rows are stored in their primary ledger's perspective (khata
// rows from the counterparty's side, manual rows from the cash box), so a
// customer payment (khata credit) flips to a cash-book debit here. ok is
// false for rows that never touch cash.
func (t LedgerTransaction) CashView() (LedgerTransaction, bool) {
	if !t.Kind.IsCashMovement() {
		return t, false
	}
	view := t
	switch t.Kind {
	case TransactionKindManualIncome:
		view.Debit, view.Credit = t.Amount(), Money{}
	case TransactionKindManualOutgoing:
		view.Debit, view.Credit = Money{}, t.Amount()
	case TransactionKindPayment:
		if t.CounterpartyType != nil && *t.CounterpartyType == CounterpartyCustomer {
			// customer settled their khata: cash came in
			view.Debit, view.Credit = t.Credit, Money{}
		} else {
			// the store paid a vendor or staff member: cash went out
			view.Debit, view.Credit = Money{}, t.Debit
		}
	}
	return view, true
}

func (t *LedgerTransaction) BeforeCreate(tx *gorm.DB) error {
	return t.Validate()
}

// BeforeUpdate consults the persisted mutable flag, not the in-memory one:
// loading a system row, flipping the flag, and saving must still fail.
func (t *LedgerTransaction) BeforeUpdate(tx *gorm.DB) error {
	mutable, err := persistedMutable(tx, t.ID)
	if err != nil {
		return err
	}
	if !mutable {
		return errors.New("immutable ledger: system entries cannot be updated")
	}
	if tx != nil && tx.Statement != nil && tx.Statement.Schema != nil {
		if tx.Statement.Changed("Mutable") {
			return errors.New("immutable ledger: the mutable flag cannot be changed")
		}
	}
	return nil
}

func (t *LedgerTransaction) BeforeDelete(tx *gorm.DB) error {
	mutable, err := persistedMutable(tx, t.ID)
	if err != nil {
		return err
	}
	if !mutable {
		return errors.New("immutable ledger: system entries cannot be deleted")
	}
	return nil
}

// persistedMutable reads the flag as stored. Rows addressed without an id
// are rejected; every legitimate edit path loads the row first.
func persistedMutable(tx *gorm.DB, id int) (bool, error) {
	if id == 0 {
		return false, errors.New("immutable ledger: row id required")
	}
	var stored LedgerTransaction
	if err := tx.Session(&gorm.Session{NewDB: true}).Select("mutable").First(&stored, id).Error; err != nil {
		return false, err
	}
	return stored.Mutable, nil
}

func GetLedgerTransactionById(ctx context.Context, id int) (*LedgerTransaction, error) {
	db := config.GetDB()
	var row LedgerTransaction
	if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &row, nil
}

// GetLedgerTransactionsByDate returns one day's rows in insertion order.
// Callers feed them to the projector, which re-sorts; no ordering promise
// is made here.
func GetLedgerTransactionsByDate(ctx context.Context, date DateString) ([]LedgerTransaction, error) {
	db := config.GetDB()
	var rows []LedgerTransaction
	err := db.WithContext(ctx).
		Where("transaction_date = ?", date).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func GetLedgerTransactionsBetween(ctx context.Context, fromDate DateString, toDate DateString) ([]LedgerTransaction, error) {
	db := config.GetDB()
	var rows []LedgerTransaction
	err := db.WithContext(ctx).
		Where("transaction_date >= ? AND transaction_date <= ?", fromDate, toDate).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetCustomerLedgerTransactions returns every khata row for one customer,
// optionally windowed by date.
func GetCustomerLedgerTransactions(ctx context.Context, customerId int, fromDate *DateString, toDate *DateString) ([]LedgerTransaction, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).
		Where("counterparty_type = ? AND counterparty_id = ?", CounterpartyCustomer, customerId)
	if fromDate != nil {
		query = query.Where("transaction_date >= ?", *fromDate)
	}
	if toDate != nil {
		query = query.Where("transaction_date <= ?", *toDate)
	}
	var rows []LedgerTransaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// EarliestTransactionDate returns the first day of the ledger, or ok=false
// when the ledger is empty.
func EarliestTransactionDate(ctx context.Context) (DateString, bool, error) {
	db := config.GetDB()
	var row LedgerTransaction
	err := db.WithContext(ctx).
		Order("transaction_date ASC, id ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DateString{}, false, nil
		}
		return DateString{}, false, err
	}
	return row.TransactionDate, true, nil
}
