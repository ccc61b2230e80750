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

// Customer is a khata holder. OpeningBalance carries whatever the customer
// owed in the old paper books when the store migrated; it seeds the
// statement fold so the first computed balance matches the last written one.
type Customer struct {
	ID             int       `gorm:"primary_key" json:"id"`
	Name           string    `gorm:"size:100;not null;index" json:"name" binding:"required"`
	Phone          string    `gorm:"size:20;index" json:"phone"`
	Address        string    `gorm:"size:255" json:"address"`
	OpeningBalance Money     `gorm:"type:decimal(20,2);default:0" json:"opening_balance"`
	Notes          string    `gorm:"size:255" json:"notes"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Customer) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("customer name is required")
	}
	if c.Phone != "" {
		if err := utils.ValidatePhoneNumber(c.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	return nil
}

func GetCustomerById(ctx context.Context, id int) (*Customer, error) {
	db := config.GetDB()
	var row Customer
	if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &row, nil
}

func GetCustomers(ctx context.Context, search string) ([]Customer, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Customer{})
	if search = strings.TrimSpace(search); search != "" {
		query = query.
			Where("name LIKE ? OR phone LIKE ?", "%"+search+"%", "%"+search+"%").
			Limit(config.SearchLimit)
	}
	var rows []Customer
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CustomerBalance folds the customer's full khata and returns the amount
// currently owed. Negative means the store holds the customer's credit.
func CustomerBalance(ctx context.Context, customerId int) (Money, error) {
	customer, err := GetCustomerById(ctx, customerId)
	if err != nil {
		return Money{}, err
	}
	entries, err := GetCustomerLedgerTransactions(ctx, customerId, nil, nil)
	if err != nil {
		return Money{}, err
	}
	statement, err := BuildStatement(entries, customer.OpeningBalance)
	if err != nil {
		return Money{}, err
	}
	return statement.ClosingBalance(), nil
}
