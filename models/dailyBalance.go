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

// DailyBalance is the persisted cash position of one store day.
//
// Invariants:
//   - ClosingBalance = OpeningBalance + TotalIncoming - TotalOutgoing
//   - OpeningBalance = closing of the most recent earlier day, or the
//     configured seed when no earlier day exists.
//
// Version backs the optimistic save: writers that lose a race get
// ErrBalanceConflict and retry by recomputing. Rows are derived data and
// can always be rebuilt from the ledger.
type DailyBalance struct {
	ID              int        `gorm:"primary_key" json:"id"`
	TransactionDate DateString `gorm:"type:date;not null;uniqueIndex" json:"transaction_date"`
	OpeningBalance  Money      `gorm:"type:decimal(20,2);default:0" json:"opening_balance"`
	TotalIncoming   Money      `gorm:"type:decimal(20,2);default:0" json:"total_incoming"`
	TotalOutgoing   Money      `gorm:"type:decimal(20,2);default:0" json:"total_outgoing"`
	ClosingBalance  Money      `gorm:"type:decimal(20,2);default:0" json:"closing_balance"`
	Version         int        `gorm:"not null;default:0" json:"version"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// ComputeDailyBalance folds one day's rows onto an opening balance. Pure;
// persistence and locking live in the callers.
func ComputeDailyBalance(date DateString, opening Money, entries []LedgerTransaction) (*DailyBalance, error) {
	statement, err := BuildDailyCashStatement(entries, opening)
	if err != nil {
		return nil, err
	}
	return &DailyBalance{
		TransactionDate: date,
		OpeningBalance:  opening,
		TotalIncoming:   statement.TotalDebit,
		TotalOutgoing:   statement.TotalCredit,
		ClosingBalance:  opening.Add(statement.TotalDebit).Sub(statement.TotalCredit),
	}, nil
}

func GetDailyBalance(ctx context.Context, date DateString) (*DailyBalance, error) {
	db := config.GetDB()
	var row DailyBalance
	err := db.WithContext(ctx).Where("transaction_date = ?", date).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &row, nil
}

func GetDailyBalancesBetween(ctx context.Context, fromDate DateString, toDate DateString) ([]DailyBalance, error) {
	db := config.GetDB()
	var rows []DailyBalance
	err := db.WithContext(ctx).
		Where("transaction_date >= ? AND transaction_date <= ?", fromDate, toDate).
		Order("transaction_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// priorClosingBalance resolves the opening for a date inside tx: closing of
// the most recent earlier day, else the configured seed.
func priorClosingBalance(tx *gorm.DB, date DateString) (Money, error) {
	var prior DailyBalance
	err := tx.Where("transaction_date < ?", date).
		Order("transaction_date DESC").
		First(&prior).Error
	if err == nil {
		return prior.ClosingBalance, nil
	}
	if !utils.IsRecordNotFound(err) {
		return Money{}, err
	}
	return GetSeedBalance(tx)
}

// OpeningBalanceFor answers with the balance the day opens on, whether or
// not the day has a persisted row yet.
func OpeningBalanceFor(ctx context.Context, date DateString) (Money, error) {
	db := config.GetDB()
	return priorClosingBalance(db.WithContext(ctx), date)
}

// ClosingBalanceFor answers with the balance the day closes on. Days with
// no row (no cash movement) close on their opening.
func ClosingBalanceFor(ctx context.Context, date DateString) (Money, error) {
	row, err := GetDailyBalance(ctx, date)
	if err == nil {
		return row.ClosingBalance, nil
	}
	if !utils.IsRecordNotFound(err) {
		return Money{}, err
	}
	return OpeningBalanceFor(ctx, date)
}

// SaveDailyBalance persists a recomputed balance over the existing row.
// The version predicate turns lost races into ErrBalanceConflict instead
// of divergent chains; inserts rely on the unique date index the same way.
func SaveDailyBalance(tx *gorm.DB, existing *DailyBalance, computed *DailyBalance) error {
	if existing == nil {
		computed.Version = 1
		if err := tx.Create(computed).Error; err != nil {
			if IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: date=%s", ErrBalanceConflict, computed.TransactionDate)
			}
			return err
		}
		return nil
	}

	result := tx.Model(&DailyBalance{}).
		Where("id = ? AND version = ?", existing.ID, existing.Version).
		Updates(map[string]interface{}{
			"opening_balance": computed.OpeningBalance,
			"total_incoming":  computed.TotalIncoming,
			"total_outgoing":  computed.TotalOutgoing,
			"closing_balance": computed.ClosingBalance,
			"version":         existing.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: date=%s version=%d", ErrBalanceConflict, computed.TransactionDate, existing.Version)
	}
	computed.ID = existing.ID
	computed.Version = existing.Version + 1
	return nil
}

// RecomputeDailyBalance rebuilds one date's row inside tx from the ledger
// and the prior day's closing.
func RecomputeDailyBalance(tx *gorm.DB, date DateString) (*DailyBalance, error) {
	var existing *DailyBalance
	var row DailyBalance
	err := tx.Where("transaction_date = ?", date).First(&row).Error
	if err == nil {
		existing = &row
	} else if !utils.IsRecordNotFound(err) {
		return nil, err
	}

	opening, err := priorClosingBalance(tx, date)
	if err != nil {
		return nil, err
	}

	var entries []LedgerTransaction
	if err := tx.Where("transaction_date = ?", date).Find(&entries).Error; err != nil {
		return nil, err
	}

	computed, err := ComputeDailyBalance(date, opening, entries)
	if err != nil {
		return nil, err
	}
	if err := SaveDailyBalance(tx, existing, computed); err != nil {
		return nil, err
	}
	return computed, nil
}

// RechainDailyBalances recomputes every day from fromDate through the last
// known day, materializing rows for quiet days so the chain stays
// contiguous. Returns the dates touched, oldest first.
func RechainDailyBalances(tx *gorm.DB, fromDate DateString) ([]DateString, error) {
	lastDate, ok, err := lastChainDate(tx, fromDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		lastDate = fromDate
	}

	var touched []DateString
	for date := fromDate; !lastDate.Before(date); date = date.AddDays(1) {
		if _, err := RecomputeDailyBalance(tx, date); err != nil {
			return nil, err
		}
		touched = append(touched, date)
	}
	return touched, nil
}

// lastChainDate finds the newest date the chain must extend to: the later
// of the newest ledger row and the newest persisted balance.
func lastChainDate(tx *gorm.DB, fromDate DateString) (DateString, bool, error) {
	last := fromDate
	found := false

	var lastEntry LedgerTransaction
	err := tx.Order("transaction_date DESC, id DESC").First(&lastEntry).Error
	if err == nil {
		found = true
		if last.Before(lastEntry.TransactionDate) {
			last = lastEntry.TransactionDate
		}
	} else if !utils.IsRecordNotFound(err) {
		return DateString{}, false, err
	}

	var lastBalance DailyBalance
	err = tx.Order("transaction_date DESC").First(&lastBalance).Error
	if err == nil {
		found = true
		if last.Before(lastBalance.TransactionDate) {
			last = lastBalance.TransactionDate
		}
	} else if !utils.IsRecordNotFound(err) {
		return DateString{}, false, err
	}

	return last, found, nil
}
