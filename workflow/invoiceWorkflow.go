package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/itehadironstore/steelbooks_backend/models"
	"github.com/itehadironstore/steelbooks_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type InvoiceItemInput struct {
	ProductId int    `json:"product_id" validate:"required"`
	Qty       string `json:"qty" validate:"required"`
	Rate      string `json:"rate" validate:"required"`
}

type InvoiceInput struct {
	InvoiceNumber string             `json:"invoice_number" validate:"max=50"`
	CustomerId    int                `json:"customer_id" validate:"required"`
	Date          string             `json:"date" validate:"required"`
	Items         []InvoiceItemInput `json:"items" validate:"required,min=1,dive"`
	Notes         string             `json:"notes" validate:"max=255"`
	// PaidNow records cash handed over at the counter; it posts a payment
	// row allocated to this invoice in the same transaction.
	PaidNow string `json:"paid_now"`
}

// ProcessInvoiceCreation posts one sale: the invoice document, a khata
// debit for its total, and a stock-out movement per item. The debit is a
// receivable and never enters the roznamcha. Cash handed over at the
// counter posts as a separate allocated payment row, which does.
func ProcessInvoiceCreation(ctx context.Context, logger *logrus.Logger, input InvoiceInput) (*models.Invoice, models.InvalidationSet, error) {
	var invalidated models.InvalidationSet

	if err := validate.Struct(input); err != nil {
		return nil, invalidated, invalidInput("invoice", err)
	}
	customer, err := models.GetCustomerById(ctx, input.CustomerId)
	if err != nil {
		return nil, invalidated, err
	}
	timezone, _ := utils.GetTimezoneFromContext(ctx)
	date, err := models.ParseDateString(input.Date, timezone)
	if err != nil {
		return nil, invalidated, err
	}

	invoice := &models.Invoice{
		InvoiceNumber: referenceOrGenerated(input.InvoiceNumber, "IV"),
		CustomerId:    customer.ID,
		InvoiceDate:   date,
		Notes:         input.Notes,
	}

	// Parse and price every line before anything persists: one bad quantity
	// fails the whole invoice up front.
	for _, itemInput := range input.Items {
		product, err := models.GetProductById(ctx, itemInput.ProductId)
		if err != nil {
			return nil, invalidated, fmt.Errorf("product %d: %w", itemInput.ProductId, err)
		}
		if err := models.ValidateQuantity(itemInput.Qty, product.Unit); err != nil {
			return nil, invalidated, fmt.Errorf("product %s: %w", product.Name, err)
		}
		rate, err := models.NewMoneyFromString(itemInput.Rate)
		if err != nil {
			return nil, invalidated, fmt.Errorf("product %s: %w", product.Name, err)
		}
		invoice.Items = append(invoice.Items, &models.InvoiceItem{
			ProductId: product.ID,
			Qty:       itemInput.Qty,
			Unit:      product.Unit,
			Rate:      rate,
		})
	}
	if err := invoice.RefreshTotals(); err != nil {
		return nil, invalidated, err
	}
	if invoice.TotalAmount.IsZero() {
		return nil, invalidated, errors.New("invoice total must be positive")
	}

	var paidNow models.Money
	if input.PaidNow != "" {
		paidNow, err = models.NewMoneyFromString(input.PaidNow)
		if err != nil {
			return nil, invalidated, err
		}
		if paidNow.IsNegative() {
			return nil, invalidated, errors.New("paid amount must not be negative")
		}
		if paidNow.Cmp(invoice.TotalAmount) > 0 {
			return nil, invalidated, fmt.Errorf("paid amount %s exceeds invoice total %s", paidNow, invoice.TotalAmount)
		}
	}

	counterparty := models.CounterpartyCustomer
	touched, err := withDateLockRetry(ctx, logger, "InvoiceWorkflow.go", "ProcessInvoiceCreation", date, func(tx *gorm.DB) error {
		if err := tx.Create(invoice).Error; err != nil {
			if models.IsDuplicateKeyError(err) {
				return fmt.Errorf("invoice number %q already posted", invoice.InvoiceNumber)
			}
			return err
		}

		debitRow := &models.LedgerTransaction{
			TransactionDateTime: transactionInstant(date, timezone),
			TransactionDate:     date,
			Kind:                models.TransactionKindInvoice,
			ReferenceNumber:     invoice.InvoiceNumber,
			Description:         "invoice " + invoice.InvoiceNumber,
			GrossAmount:         invoice.TotalAmount,
			Debit:               invoice.TotalAmount,
			CounterpartyType:    &counterparty,
			CounterpartyId:      &invoice.CustomerId,
		}
		if err := tx.Create(debitRow).Error; err != nil {
			return err
		}

		for _, item := range invoice.Items {
			if err := applyStockMovement(tx, stockMovementRequest{
				ProductId:     item.ProductId,
				Direction:     models.StockDirectionOut,
				Qty:           item.Qty,
				ReferenceType: "Invoice",
				ReferenceId:   invoice.ID,
				MovementDate:  date,
			}); err != nil {
				return err
			}
		}

		if !paidNow.IsZero() {
			paymentRow := &models.LedgerTransaction{
				TransactionDateTime: transactionInstant(date, timezone),
				TransactionDate:     date,
				Kind:                models.TransactionKindPayment,
				ReferenceNumber:     referenceOrGenerated("", "PY"),
				Description:         "payment on invoice " + invoice.InvoiceNumber,
				GrossAmount:         paidNow,
				Credit:              paidNow,
				CounterpartyType:    &counterparty,
				CounterpartyId:      &invoice.CustomerId,
				AllocatedInvoiceId:  &invoice.ID,
			}
			if err := tx.Create(paymentRow).Error; err != nil {
				return err
			}
			if err := allocateToInvoice(tx, invoice.CustomerId, invoice.ID, paidNow); err != nil {
				return err
			}
			invoice.PaidAmount = paidNow
			invoice.Status = models.InvoiceStatusPartialPaid
			if paidNow.Cmp(invoice.TotalAmount) == 0 {
				invoice.Status = models.InvoiceStatusPaid
			}
		}
		return nil
	})
	if err != nil {
		return nil, invalidated, err
	}

	invalidated.Dates = touched
	invalidated.AddCustomer(customer.ID)
	invalidated.Normalize()
	models.InvalidateStatements(invalidated)
	return invoice, invalidated, nil
}
