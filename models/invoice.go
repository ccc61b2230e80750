package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Invoice is a sale to a khata customer. Posting one debits the customer's
// khata; cash only enters the roznamcha when a payment is recorded against
// it. PaidAmount accumulates allocated payments and drives Status.
type Invoice struct {
	ID            int            `gorm:"primary_key" json:"id"`
	InvoiceNumber string         `gorm:"size:50;not null;uniqueIndex" json:"invoice_number"`
	CustomerId    int            `gorm:"not null;index" json:"customer_id"`
	InvoiceDate   DateString     `gorm:"type:date;not null;index" json:"invoice_date"`
	Items         []*InvoiceItem `gorm:"foreignKey:InvoiceId" json:"items"`
	TotalAmount   Money          `gorm:"type:decimal(20,2);default:0" json:"total_amount"`
	PaidAmount    Money          `gorm:"type:decimal(20,2);default:0" json:"paid_amount"`
	Status        InvoiceStatus  `gorm:"size:20;not null;default:'Unpaid'" json:"status"`
	Notes         string         `gorm:"size:255" json:"notes"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceItem struct {
	ID        int      `gorm:"primary_key" json:"id"`
	InvoiceId int      `gorm:"not null;index" json:"invoice_id"`
	ProductId int      `gorm:"not null;index" json:"product_id"`
	Qty       string   `gorm:"size:50;not null" json:"qty"`
	Unit      UnitKind `gorm:"size:20;not null" json:"unit"`
	Rate      Money    `gorm:"type:decimal(20,2);default:0" json:"rate"`
	Amount    Money    `gorm:"type:decimal(20,2);default:0" json:"amount"`
}

// LineAmount prices one item: rate per kilogram or per count unit, applied
// to the parsed quantity. Weight amounts scale by grams/1000 so "1600-60"
// at 250.00/kg prices the 60 grams too.
func (item *InvoiceItem) LineAmount() (Money, error) {
	qty, err := ParseQuantity(item.Qty, item.Unit)
	if err != nil {
		return Money{}, err
	}
	factor := qty.DecimalUnits()
	return item.Rate.Mul(factor), nil
}

func (item *InvoiceItem) BeforeSave(tx *gorm.DB) error {
	if !item.Unit.IsValid() {
		return fmt.Errorf("invalid unit kind %q", item.Unit)
	}
	if item.Rate.IsNegative() {
		return errors.New("item rate must not be negative")
	}
	return ValidateQuantity(item.Qty, item.Unit)
}

// RefreshTotals recomputes TotalAmount from the items and re-derives Status
// from PaidAmount. Call after any change to items or payments.
func (inv *Invoice) RefreshTotals() error {
	total := Money{}
	for _, item := range inv.Items {
		amount, err := item.LineAmount()
		if err != nil {
			return err
		}
		item.Amount = amount
		total = total.Add(amount)
	}
	inv.TotalAmount = total
	inv.Status = inv.deriveStatus()
	return nil
}

func (inv *Invoice) deriveStatus() InvoiceStatus {
	switch {
	case inv.PaidAmount.IsZero():
		return InvoiceStatusUnpaid
	case inv.PaidAmount.Cmp(inv.TotalAmount) >= 0:
		return InvoiceStatusPaid
	default:
		return InvoiceStatusPartialPaid
	}
}

func (inv *Invoice) Outstanding() Money {
	return inv.TotalAmount.Sub(inv.PaidAmount)
}

// ApplyPaymentAllocation consumes the ledger's allocation cross-reference:
// the payment amount reduces this invoice's outstanding. Over-allocation is
// rejected; a customer paying more than the invoice pays the rest as an
// advance with no allocation.
func (inv *Invoice) ApplyPaymentAllocation(amount Money) error {
	if amount.IsNegative() || amount.IsZero() {
		return errors.New("allocated amount must be positive")
	}
	if amount.Cmp(inv.Outstanding()) > 0 {
		return fmt.Errorf("allocation %s exceeds outstanding %s on invoice %s",
			amount, inv.Outstanding(), inv.InvoiceNumber)
	}
	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.Status = inv.deriveStatus()
	return nil
}

func GetInvoiceById(ctx context.Context, id int) (*Invoice, error) {
	db := config.GetDB()
	var row Invoice
	err := db.WithContext(ctx).Preload("Items").First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &row, nil
}

func GetInvoiceForUpdate(tx *gorm.DB, id int) (*Invoice, error) {
	var row Invoice
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &row, nil
}

func GetCustomerInvoices(ctx context.Context, customerId int, unpaidOnly bool) ([]Invoice, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Preload("Items").Where("customer_id = ?", customerId)
	if unpaidOnly {
		query = query.Where("status <> ?", InvoiceStatusPaid)
	}
	var rows []Invoice
	if err := query.Order("invoice_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
