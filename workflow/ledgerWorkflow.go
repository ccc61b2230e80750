package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/models"
	"github.com/itehadironstore/steelbooks_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var validate = validator.New()

// Writers that lose the optimistic version check re-read and recompute.
const balanceConflictRetries = 3

// invalidInput surfaces validator failures as field:rule pairs so the
// caller sees which field broke which rule, not a wall of struct paths.
func invalidInput(what string, err error) error {
	if fields := utils.ProcessValidationErrors(err); len(fields) > 0 {
		return fmt.Errorf("invalid %s input: %v", what, fields)
	}
	return fmt.Errorf("invalid %s input: %w", what, err)
}

// ManualTransactionInput is an owner-entered cash book row: extra income,
// an expense, or a khata adjustment. Amounts arrive as 2-decimal strings
// and are parsed hard; a malformed amount is an error, never zero.
type ManualTransactionInput struct {
	Kind             models.TransactionKind   `json:"kind" validate:"required"`
	Amount           string                   `json:"amount" validate:"required"`
	Date             string                   `json:"date" validate:"required"`
	Description      string                   `json:"description" validate:"max=255"`
	ReferenceNumber  string                   `json:"reference_number" validate:"max=100"`
	CounterpartyType *models.CounterpartyType `json:"counterparty_type"`
	CounterpartyId   *int                     `json:"counterparty_id"`
	// Adjustment rows pick a side; manual income/outgoing rows are
	// oriented by kind and ignore this.
	CreditSide bool `json:"credit_side"`
}

// ProcessManualTransaction posts one owner-entered row and re-chains the
// daily balances from its date forward. The returned InvalidationSet names
// every date and khata the write made stale; fan-out belongs to the caller.
func ProcessManualTransaction(ctx context.Context, logger *logrus.Logger, input ManualTransactionInput) (*models.LedgerTransaction, models.InvalidationSet, error) {
	var invalidated models.InvalidationSet

	if err := validate.Struct(input); err != nil {
		return nil, invalidated, invalidInput("manual transaction", err)
	}
	if !input.Kind.ManuallyEditable() {
		return nil, invalidated, fmt.Errorf("kind %q cannot be entered manually", input.Kind)
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

	row := &models.LedgerTransaction{
		TransactionDateTime: transactionInstant(date, timezone),
		TransactionDate:     date,
		Kind:                input.Kind,
		ReferenceNumber:     referenceOrGenerated(input.ReferenceNumber, "MN"),
		Description:         input.Description,
		GrossAmount:         amount,
		CounterpartyType:    input.CounterpartyType,
		CounterpartyId:      input.CounterpartyId,
		Mutable:             true,
	}
	switch {
	case input.Kind == models.TransactionKindManualIncome:
		row.Debit = amount
	case input.Kind == models.TransactionKindManualOutgoing:
		row.Credit = amount
	case input.CreditSide:
		row.Credit = amount
	default:
		row.Debit = amount
	}

	touched, err := postLedgerRow(ctx, logger, "LedgerWorkflow.go", "ProcessManualTransaction", row)
	if err != nil {
		return nil, invalidated, err
	}

	invalidated.Dates = touched
	if row.CounterpartyType != nil && *row.CounterpartyType == models.CounterpartyCustomer && row.CounterpartyId != nil {
		invalidated.AddCustomer(*row.CounterpartyId)
	}
	invalidated.Normalize()
	models.InvalidateStatements(invalidated)
	return row, invalidated, nil
}

// UpdateManualTransaction edits a Mutable row's amount, description, or
// date. Immutable rows are rejected here and again by the model hook.
func UpdateManualTransaction(ctx context.Context, logger *logrus.Logger, id int, input ManualTransactionInput) (*models.LedgerTransaction, models.InvalidationSet, error) {
	var invalidated models.InvalidationSet

	if err := validate.Struct(input); err != nil {
		return nil, invalidated, invalidInput("manual transaction", err)
	}
	row, err := models.GetLedgerTransactionById(ctx, id)
	if err != nil {
		return nil, invalidated, err
	}
	if !row.Mutable {
		return nil, invalidated, errors.New("immutable ledger: system entries cannot be updated")
	}
	if input.Kind != row.Kind {
		return nil, invalidated, errors.New("the kind of an existing entry cannot change")
	}

	amount, err := models.NewMoneyFromString(input.Amount)
	if err != nil {
		return nil, invalidated, err
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, invalidated, errors.New("amount must be positive")
	}
	timezone, _ := utils.GetTimezoneFromContext(ctx)
	newDate, err := models.ParseDateString(input.Date, timezone)
	if err != nil {
		return nil, invalidated, err
	}

	oldDate := row.TransactionDate
	row.GrossAmount = amount
	if !row.Debit.IsZero() {
		row.Debit = amount
	} else {
		row.Credit = amount
	}
	row.Description = input.Description
	if !newDate.Equal(oldDate) {
		row.TransactionDate = newDate
		row.TransactionDateTime = transactionInstant(newDate, timezone)
	}

	// Re-chain from the earlier of the two dates so both days settle.
	rechainFrom := newDate
	if oldDate.Before(rechainFrom) {
		rechainFrom = oldDate
	}

	touched, err := withDateLockRetry(ctx, logger, "LedgerWorkflow.go", "UpdateManualTransaction", rechainFrom, func(tx *gorm.DB) error {
		return tx.Save(row).Error
	})
	if err != nil {
		return nil, invalidated, err
	}

	invalidated.Dates = touched
	if row.CounterpartyType != nil && *row.CounterpartyType == models.CounterpartyCustomer && row.CounterpartyId != nil {
		invalidated.AddCustomer(*row.CounterpartyId)
	}
	invalidated.Normalize()
	models.InvalidateStatements(invalidated)
	return row, invalidated, nil
}

// DeleteManualTransaction removes a Mutable row and re-chains from its date.
func DeleteManualTransaction(ctx context.Context, logger *logrus.Logger, id int) (models.InvalidationSet, error) {
	var invalidated models.InvalidationSet

	row, err := models.GetLedgerTransactionById(ctx, id)
	if err != nil {
		return invalidated, err
	}
	if !row.Mutable {
		return invalidated, errors.New("immutable ledger: system entries cannot be deleted")
	}

	touched, err := withDateLockRetry(ctx, logger, "LedgerWorkflow.go", "DeleteManualTransaction", row.TransactionDate, func(tx *gorm.DB) error {
		return tx.Delete(row).Error
	})
	if err != nil {
		return invalidated, err
	}

	invalidated.Dates = touched
	if row.CounterpartyType != nil && *row.CounterpartyType == models.CounterpartyCustomer && row.CounterpartyId != nil {
		invalidated.AddCustomer(*row.CounterpartyId)
	}
	invalidated.Normalize()
	models.InvalidateStatements(invalidated)
	return invalidated, nil
}

// postLedgerRow persists one new row under the date lock and re-chains.
func postLedgerRow(ctx context.Context, logger *logrus.Logger, moduleName string, funcName string, row *models.LedgerTransaction) ([]models.DateString, error) {
	if err := row.Validate(); err != nil {
		return nil, err
	}
	return withDateLockRetry(ctx, logger, moduleName, funcName, row.TransactionDate, func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			if models.IsDuplicateKeyError(err) {
				return fmt.Errorf("reference number %q already posted", row.ReferenceNumber)
			}
			return err
		}
		return nil
	})
}

// withDateLockRetry serializes one day's chain writes: the redis date lock
// keeps writers for the same date apart, the write fn and the re-chain run
// in one DB transaction, and a lost optimistic version check retries the
// whole transaction with fresh reads.
func withDateLockRetry(ctx context.Context, logger *logrus.Logger, moduleName string, funcName string, date models.DateString, fn func(tx *gorm.DB) error) ([]models.DateString, error) {
	lock, err := utils.DateLock(ctx, date.String(), moduleName, funcName)
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseLock(ctx, lock)

	db := config.GetDB()
	var touched []models.DateString
	for attempt := 1; ; attempt++ {
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := fn(tx); err != nil {
				return err
			}
			var chainErr error
			touched, chainErr = models.RechainDailyBalances(tx, date)
			return chainErr
		})
		if err == nil {
			fields := logrus.Fields{
				"module":   moduleName,
				"funcName": funcName,
				"date":     date.String(),
				"days":     len(touched),
			}
			if actor, ok := utils.GetActorFromContext(ctx); ok && actor != "" {
				fields["actor"] = actor
			}
			logger.WithFields(fields).Info("posted and re-chained")
			return touched, nil
		}
		if !errors.Is(err, models.ErrBalanceConflict) || attempt >= balanceConflictRetries {
			config.LogError(logger, moduleName, funcName, "Posting failed", date.String(), err)
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"module":   moduleName,
			"funcName": funcName,
			"date":     date.String(),
			"attempt":  attempt,
		}).Warn("daily balance conflict; retrying")
	}
}

// transactionInstant picks the row's position in the day: now for today's
// postings, the start of day for backdated ones. Ties sort by id.
func transactionInstant(date models.DateString, timezone string) time.Time {
	now := time.Now().UTC()
	today, err := models.NewDateString(now, timezone)
	if err == nil && date.Equal(today) {
		return now
	}
	start, err := date.StartOfDayUTCTime(timezone)
	if err != nil {
		return now
	}
	return start
}

func referenceOrGenerated(reference string, prefix string) string {
	if reference != "" {
		return reference
	}
	return prefix + "-" + uuid.NewString()
}
