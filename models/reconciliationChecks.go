package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/utils"
	"github.com/sirupsen/logrus"
)

// RunReconciliationChecks writes mismatch rows to reconciliation_reports.
// Intended to run nightly or via cmd/ledger-verify. Each check re-derives an
// invariant from raw rows and reports where the stored value disagrees:
//
//  1. LEDGER_ROW: exactly one of debit/credit non-zero, never negative
//  2. DAY_CHAIN: opening(d) = closing of the most recent earlier day
//  3. DAY_TOTALS: stored closing/totals vs a fresh fold of the day's rows
//  4. DUPLICATE_REF: reference numbers appearing on more than one row
//  5. STOCK_SUMMARY: product current_qty vs folded stock history
func RunReconciliationChecks(ctx context.Context) (correlationId string, mismatches int, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	db := config.GetDB()
	if db == nil {
		return "", 0, fmt.Errorf("db is nil")
	}
	logger := config.GetLogger()

	cid, ok := utils.GetCorrelationIdFromContext(ctx)
	if !ok || cid == "" {
		cid = uuid.NewString()
	}
	now := time.Now().UTC()

	report := func(checkType, entityType string, entityId int, details string) {
		mismatches++
		_ = db.WithContext(ctx).Create(&ReconciliationReport{
			CheckType:     checkType,
			EntityType:    entityType,
			EntityId:      entityId,
			Details:       details,
			CorrelationId: cid,
			CreatedAt:     now,
		}).Error
	}

	// 1) Debit-xor-credit on every ledger row.
	type badRow struct {
		ID     int
		Debit  string
		Credit string
	}
	var badRows []badRow
	if err := db.WithContext(ctx).Raw(`
		SELECT id, CAST(debit AS CHAR) AS debit, CAST(credit AS CHAR) AS credit
		FROM ledger_transactions
		WHERE (debit = 0) = (credit = 0)
		   OR debit < 0 OR credit < 0
	`).Scan(&badRows).Error; err != nil {
		return cid, mismatches, err
	}
	for _, row := range badRows {
		report("LEDGER_ROW", "LedgerTransaction", row.ID,
			fmt.Sprintf("debit=%s credit=%s violates the one-sided rule", row.Debit, row.Credit))
	}

	// 2 + 3) Replay the full day chain from the seed and compare.
	balances, err := GetDailyBalancesBetween(ctx, DateString{}, DateString(now.AddDate(0, 0, 1)))
	if err != nil {
		return cid, mismatches, err
	}
	if len(balances) > 0 {
		expectedOpening, err := GetSeedBalance(db.WithContext(ctx))
		if err != nil {
			return cid, mismatches, err
		}
		for i, balance := range balances {
			if i > 0 {
				expectedOpening = balances[i-1].ClosingBalance
				// Quiet days may have no row; chain over the gap.
			}
			if balance.OpeningBalance.Cmp(expectedOpening) != 0 {
				report("DAY_CHAIN", "DailyBalance", balance.ID,
					fmt.Sprintf("date=%s opening=%s expected=%s",
						balance.TransactionDate, balance.OpeningBalance, expectedOpening))
			}

			entries, err := GetLedgerTransactionsByDate(ctx, balance.TransactionDate)
			if err != nil {
				return cid, mismatches, err
			}
			recomputed, err := ComputeDailyBalance(balance.TransactionDate, balance.OpeningBalance, entries)
			if err != nil {
				report("DAY_TOTALS", "DailyBalance", balance.ID,
					fmt.Sprintf("date=%s fold failed: %v", balance.TransactionDate, err))
				continue
			}
			if balance.ClosingBalance.Cmp(recomputed.ClosingBalance) != 0 ||
				balance.TotalIncoming.Cmp(recomputed.TotalIncoming) != 0 ||
				balance.TotalOutgoing.Cmp(recomputed.TotalOutgoing) != 0 {
				report("DAY_TOTALS", "DailyBalance", balance.ID,
					fmt.Sprintf("date=%s stored closing=%s in=%s out=%s, recomputed closing=%s in=%s out=%s",
						balance.TransactionDate,
						balance.ClosingBalance, balance.TotalIncoming, balance.TotalOutgoing,
						recomputed.ClosingBalance, recomputed.TotalIncoming, recomputed.TotalOutgoing))
			}
		}
	}

	// 4) Duplicate reference numbers. The unique index should make this
	// impossible; a hit means the index was dropped or bypassed.
	type dupRef struct {
		ReferenceNumber string
		FirstId         int
		Count           int
	}
	var dupRefs []dupRef
	if err := db.WithContext(ctx).Raw(`
		SELECT reference_number, MIN(id) AS first_id, COUNT(*) AS count
		FROM ledger_transactions
		GROUP BY reference_number
		HAVING COUNT(*) > 1
	`).Scan(&dupRefs).Error; err != nil {
		return cid, mismatches, err
	}
	for _, dup := range dupRefs {
		report("DUPLICATE_REF", "LedgerTransaction", dup.FirstId,
			fmt.Sprintf("reference_number=%s appears %d times", dup.ReferenceNumber, dup.Count))
	}

	// 5) Product quantity vs folded stock history.
	products, err := GetProducts(ctx)
	if err != nil {
		return cid, mismatches, err
	}
	for _, product := range products {
		movements, err := GetStockHistory(ctx, product.ID, nil, nil)
		if err != nil {
			return cid, mismatches, err
		}
		zero, err := ParseQuantity("0", product.Unit)
		if err != nil {
			report("STOCK_SUMMARY", "Product", product.ID, fmt.Sprintf("unit %q: %v", product.Unit, err))
			continue
		}
		folded, err := FoldStockMovements(product.Unit, zero, movements)
		if err != nil {
			report("STOCK_SUMMARY", "Product", product.ID, err.Error())
			continue
		}
		stored, err := product.Quantity()
		if err != nil {
			report("STOCK_SUMMARY", "Product", product.ID,
				fmt.Sprintf("current_qty=%q does not parse: %v", product.CurrentQty, err))
			continue
		}
		if stored.Canonical() != folded.Canonical() {
			report("STOCK_SUMMARY", "Product", product.ID,
				fmt.Sprintf("current_qty=%s != folded history=%s", stored.CanonicalString(), folded.CanonicalString()))
		}
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"field":            "ReconciliationChecks",
			"correlation_id":   cid,
			"days_checked":     len(balances),
			"products_checked": len(products),
			"mismatches":       mismatches,
		}).Info("reconciliation checks completed")
	}
	return cid, mismatches, nil
}
