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

// PaymentInput records cash changing hands with a counterparty. For
// customer payments AllocatedInvoiceId optionally ties the cash to one
// invoice; without it the payment is an advance against the khata balance.
type PaymentInput struct {
	CounterpartyId     int    `json:"counterparty_id" validate:"required"`
	Amount             string `json:"amount" validate:"required"`
	Date               string `json:"date" validate:"required"`
	Description        string `json:"description" validate:"max=255"`
	ReferenceNumber    string `json:"reference_number" validate:"max=100"`
	AllocatedInvoiceId *int   `json:"allocated_invoice_id"`
}

// ProcessPaymentReceived posts a customer's cash payment: a khata credit
// that the roznamcha reads as incoming cash. When allocated, the invoice's
// outstanding shrinks in the same transaction; allocation never changes the
// fold math.
func ProcessPaymentReceived(ctx context.Context, logger *logrus.Logger, input PaymentInput) (*models.LedgerTransaction, models.InvalidationSet, error) {
	var invalidated models.InvalidationSet

	if err := validate.Struct(input); err != nil {
		return nil, invalidated, invalidInput("payment", err)
	}
	customer, err := models.GetCustomerById(ctx, input.CounterpartyId)
	if err != nil {
		return nil, invalidated, err
	}

	amount, err := models.NewMoneyFromString(input.Amount)
	if err != nil {
		return nil, invalidated, err
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, invalidated, errors.New("amount must be positive")
	}
	timezone, _ := utils.GetTimezoneFromContext(ctx)
	date, err := models.ParseDateString(input.Date, timezone)
	if err != nil {
		return nil, invalidated, err
	}

	counterparty := models.CounterpartyCustomer
	row := &models.LedgerTransaction{
		TransactionDateTime: transactionInstant(date, timezone),
		TransactionDate:     date,
		Kind:                models.TransactionKindPayment,
		ReferenceNumber:     referenceOrGenerated(input.ReferenceNumber, "PY"),
		Description:         input.Description,
		GrossAmount:         amount,
		Credit:              amount,
		CounterpartyType:    &counterparty,
		CounterpartyId:      &customer.ID,
		AllocatedInvoiceId:  input.AllocatedInvoiceId,
	}
	if err := row.Validate(); err != nil {
		return nil, invalidated, err
	}

	touched, err := withDateLockRetry(ctx, logger, "PaymentWorkflow.go", "ProcessPaymentReceived", date, func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			if models.IsDuplicateKeyError(err) {
				return fmt.Errorf("reference number %q already posted", row.ReferenceNumber)
			}
			return err
		}
		if input.AllocatedInvoiceId != nil {
			return allocateToInvoice(tx, customer.ID, *input.AllocatedInvoiceId, amount)
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
	return row, invalidated, nil
}

// allocateToInvoice applies the cross-reference inside the posting
// transaction. The invoice row-locks so two concurrent allocations cannot
// both fit inside the same outstanding amount.
func allocateToInvoice(tx *gorm.DB, customerId int, invoiceId int, amount models.Money) error {
	invoice, err := models.GetInvoiceForUpdate(tx, invoiceId)
	if err != nil {
		return err
	}
	if invoice.CustomerId != customerId {
		return fmt.Errorf("invoice %s does not belong to customer %d", invoice.InvoiceNumber, customerId)
	}
	if err := invoice.ApplyPaymentAllocation(amount); err != nil {
		return err
	}
	return tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).
		Updates(map[string]interface{}{
			"paid_amount": invoice.PaidAmount,
			"status":      invoice.Status,
		}).Error
}

// ProcessVendorPayment posts cash paid out to a supplier: a debit on the
// vendor's account that the roznamcha reads as outgoing cash.
func ProcessVendorPayment(ctx context.Context, logger *logrus.Logger, input PaymentInput) (*models.LedgerTransaction, models.InvalidationSet, error) {
	var invalidated models.InvalidationSet

	if err := validate.Struct(input); err != nil {
		return nil, invalidated, invalidInput("payment", err)
	}
	if input.AllocatedInvoiceId != nil {
		return nil, invalidated, errors.New("vendor payments cannot allocate to a sales invoice")
	}
	vendor, err := models.GetVendorById(ctx, input.CounterpartyId)
	if err != nil {
		return nil, invalidated, err
	}

	amount, err := models.NewMoneyFromString(input.Amount)
	if err != nil {
		return nil, invalidated, err
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, invalidated, errors.New("amount must be positive")
	}
	timezone, _ := utils.GetTimezoneFromContext(ctx)
	date, err := models.ParseDateString(input.Date, timezone)
	if err != nil {
		return nil, invalidated, err
	}

	counterparty := models.CounterpartyVendor
	row := &models.LedgerTransaction{
		TransactionDateTime: transactionInstant(date, timezone),
		TransactionDate:     date,
		Kind:                models.TransactionKindPayment,
		ReferenceNumber:     referenceOrGenerated(input.ReferenceNumber, "VP"),
		Description:         input.Description,
		GrossAmount:         amount,
		Debit:               amount,
		CounterpartyType:    &counterparty,
		CounterpartyId:      &vendor.ID,
	}

	touched, err := postLedgerRow(ctx, logger, "PaymentWorkflow.go", "ProcessVendorPayment", row)
	if err != nil {
		return nil, invalidated, err
	}

	invalidated.Dates = touched
	invalidated.Normalize()
	models.InvalidateStatements(invalidated)
	return row, invalidated, nil
}

// ProcessSalaryPayment posts a staff salary payout as outgoing cash.
func ProcessSalaryPayment(ctx context.Context, logger *logrus.Logger, input PaymentInput) (*models.LedgerTransaction, models.InvalidationSet, error) {
	var invalidated models.InvalidationSet

	if err := validate.Struct(input); err != nil {
		return nil, invalidated, invalidInput("payment", err)
	}
	staff, err := models.GetStaffById(ctx, input.CounterpartyId)
	if err != nil {
		return nil, invalidated, err
	}

	amount, err := models.NewMoneyFromString(input.Amount)
	if err != nil {
		return nil, invalidated, err
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, invalidated, errors.New("amount must be positive")
	}
	timezone, _ := utils.GetTimezoneFromContext(ctx)
	date, err := models.ParseDateString(input.Date, timezone)
	if err != nil {
		return nil, invalidated, err
	}

	counterparty := models.CounterpartyStaff
	description := input.Description
	if description == "" {
		description = "salary: " + staff.Name
	}
	row := &models.LedgerTransaction{
		TransactionDateTime: transactionInstant(date, timezone),
		TransactionDate:     date,
		Kind:                models.TransactionKindManualOutgoing,
		ReferenceNumber:     referenceOrGenerated(input.ReferenceNumber, "SL"),
		Description:         description,
		GrossAmount:         amount,
		Credit:              amount,
		CounterpartyType:    &counterparty,
		CounterpartyId:      &staff.ID,
	}

	touched, err := postLedgerRow(ctx, logger, "PaymentWorkflow.go", "ProcessSalaryPayment", row)
	if err != nil {
		return nil, invalidated, err
	}

	invalidated.Dates = touched
	invalidated.Normalize()
	models.InvalidateStatements(invalidated)
	return row, invalidated, nil
}
