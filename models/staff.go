package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/utils"
	"gorm.io/gorm"
)

// Staff is a salaried worker. Salary payouts post as ManualOutgoing ledger
// rows carrying the staff counterparty.
type Staff struct {
	ID            int         `gorm:"primary_key" json:"id"`
	Name          string      `gorm:"size:100;not null;index" json:"name" binding:"required"`
	Phone         string      `gorm:"size:20" json:"phone"`
	MonthlySalary Money       `gorm:"type:decimal(20,2);default:0" json:"monthly_salary"`
	JoinedDate    *DateString `gorm:"type:date" json:"joined_date"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Staff) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("staff name is required")
	}
	if s.MonthlySalary.IsNegative() {
		return errors.New("monthly salary must not be negative")
	}
	if s.Phone != "" {
		if err := utils.ValidatePhoneNumber(s.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	return nil
}

func GetStaffById(ctx context.Context, id int) (*Staff, error) {
	db := config.GetDB()
	var row Staff
	if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &row, nil
}

func GetStaffList(ctx context.Context) ([]Staff, error) {
	db := config.GetDB()
	var rows []Staff
	if err := db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
