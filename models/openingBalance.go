package models

import (
	"os"
	"strings"
	"time"

	"github.com/itehadironstore/steelbooks_backend/utils"
	"gorm.io/gorm"
)

// OpeningBalance seeds the daily cash chain: the cash the store carried
// the day it moved off the old paper books. Without a row, the
// OPENING_CASH_BALANCE env value applies, defaulting to zero.
type OpeningBalance struct {
	ID            int        `gorm:"primary_key" json:"id"`
	EffectiveDate DateString `gorm:"type:date;not null" json:"effective_date"`
	Amount        Money      `gorm:"type:decimal(20,2);default:0" json:"amount"`
	Notes         string     `gorm:"size:255" json:"notes"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetSeedBalance resolves the chain seed inside tx. The newest opening
// balance row wins; the env fallback covers stores that never recorded one.
func GetSeedBalance(tx *gorm.DB) (Money, error) {
	var row OpeningBalance
	err := tx.Order("effective_date DESC, id DESC").First(&row).Error
	if err == nil {
		return row.Amount, nil
	}
	if !utils.IsRecordNotFound(err) {
		return Money{}, err
	}

	raw := strings.TrimSpace(os.Getenv("OPENING_CASH_BALANCE"))
	if raw == "" {
		return Money{}, nil
	}
	return NewMoneyFromString(raw)
}
