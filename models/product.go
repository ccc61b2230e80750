package models

import (
	"context"
	"errors"
	"time"

	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Product is one stock line: sariya grades, girders, sheets, wire bags.
// CurrentQty holds the canonical quantity string for the product's unit
// kind ("1600-60", "500.1", "25"); existing rows were stored in exactly
// this encoding and it must not change shape.
type Product struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Name          string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Unit          UnitKind  `gorm:"size:20;not null" json:"unit"`
	CurrentQty    string    `gorm:"size:50;not null;default:'0'" json:"current_qty"`
	SalePrice     Money     `gorm:"type:decimal(20,2);default:0" json:"sale_price"`
	PurchasePrice Money     `gorm:"type:decimal(20,2);default:0" json:"purchase_price"`
	LowStockAlert string    `gorm:"size:50;not null;default:'0'" json:"low_stock_alert"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	if !p.Unit.IsValid() {
		return errors.New("invalid product unit kind")
	}
	if err := ValidateQuantity(p.CurrentQty, p.Unit); err != nil {
		return err
	}
	if p.LowStockAlert != "" {
		if err := ValidateQuantity(p.LowStockAlert, p.Unit); err != nil {
			return err
		}
	}
	return nil
}

func (p *Product) Quantity() (Quantity, error) {
	return ParseQuantity(p.CurrentQty, p.Unit)
}

// IsLowStock compares on-hand quantity against the alert threshold.
func (p *Product) IsLowStock() (bool, error) {
	if p.LowStockAlert == "" {
		return false, nil
	}
	have, err := p.Quantity()
	if err != nil {
		return false, err
	}
	threshold, err := ParseQuantity(p.LowStockAlert, p.Unit)
	if err != nil {
		return false, err
	}
	enough, err := have.IsSufficient(threshold)
	if err != nil {
		return false, err
	}
	return !enough, nil
}

func GetProductById(ctx context.Context, id int) (*Product, error) {
	db := config.GetDB()
	var row Product
	if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &row, nil
}

func GetProducts(ctx context.Context) ([]Product, error) {
	db := config.GetDB()
	var rows []Product
	if err := db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetProductForUpdate row-locks the product inside tx for a quantity write.
func GetProductForUpdate(tx *gorm.DB, id int) (*Product, error) {
	var row Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &row, nil
}
