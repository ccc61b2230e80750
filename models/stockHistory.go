package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itehadironstore/steelbooks_backend/config"
	"gorm.io/gorm"
)

// StockHistory is the append-only movement log per product. Product.CurrentQty
// is derived from it and can always be rebuilt by folding the rows in order.
// Qty holds the canonical quantity string for Unit.
type StockHistory struct {
	ID            int            `gorm:"primary_key" json:"id"`
	ProductId     int            `gorm:"not null;index:idx_sh_product_date,priority:1" json:"product_id"`
	Direction     StockDirection `gorm:"size:5;not null" json:"direction"`
	Qty           string         `gorm:"size:50;not null" json:"qty"`
	Unit          UnitKind       `gorm:"size:20;not null" json:"unit"`
	ReferenceType string         `gorm:"size:30" json:"reference_type"`
	ReferenceId   int            `gorm:"index" json:"reference_id"`
	MovementDate  DateString     `gorm:"type:date;not null;index:idx_sh_product_date,priority:2" json:"movement_date"`
	Notes         string         `gorm:"size:255" json:"notes"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (h *StockHistory) BeforeCreate(tx *gorm.DB) error {
	if !h.Direction.IsValid() {
		return fmt.Errorf("invalid stock direction %q", h.Direction)
	}
	if !h.Unit.IsValid() {
		return fmt.Errorf("invalid unit kind %q", h.Unit)
	}
	if h.MovementDate.IsZero() {
		return errors.New("movement date is required")
	}
	return ValidateQuantity(h.Qty, h.Unit)
}

// Movements are history; they are corrected by posting a compensating row,
// never by editing.
func (h *StockHistory) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("stock history is append-only; post a compensating movement instead")
}

func (h *StockHistory) BeforeDelete(tx *gorm.DB) error {
	return errors.New("stock history is append-only; post a compensating movement instead")
}

func GetStockHistory(ctx context.Context, productId int, fromDate *DateString, toDate *DateString) ([]StockHistory, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Where("product_id = ?", productId)
	if fromDate != nil {
		query = query.Where("movement_date >= ?", *fromDate)
	}
	if toDate != nil {
		query = query.Where("movement_date <= ?", *toDate)
	}
	var rows []StockHistory
	if err := query.Order("movement_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FoldStockMovements replays movements oldest-first onto an opening quantity.
// Out movements floor at zero the same way live posting does, so a rebuild
// lands on the same value the incremental path produced.
func FoldStockMovements(kind UnitKind, opening Quantity, movements []StockHistory) (Quantity, error) {
	onHand := opening
	for _, movement := range movements {
		qty, err := ParseQuantity(movement.Qty, kind)
		if err != nil {
			return Quantity{}, fmt.Errorf("stock history id=%d: %w", movement.ID, err)
		}
		switch movement.Direction {
		case StockDirectionIn:
			onHand, err = onHand.Add(qty)
		case StockDirectionOut:
			onHand, err = onHand.Sub(qty)
		default:
			return Quantity{}, fmt.Errorf("stock history id=%d: invalid direction %q", movement.ID, movement.Direction)
		}
		if err != nil {
			return Quantity{}, fmt.Errorf("stock history id=%d: %w", movement.ID, err)
		}
	}
	return onHand, nil
}

// RecomputeProductQty rebuilds one product's on-hand quantity from its full
// movement history inside tx and persists the result.
func RecomputeProductQty(tx *gorm.DB, productId int) (*Product, error) {
	product, err := GetProductForUpdate(tx, productId)
	if err != nil {
		return nil, err
	}
	var movements []StockHistory
	if err := tx.Where("product_id = ?", productId).
		Order("movement_date ASC, id ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}

	zero, err := ParseQuantity("0", product.Unit)
	if err != nil {
		return nil, err
	}
	onHand, err := FoldStockMovements(product.Unit, zero, movements)
	if err != nil {
		return nil, err
	}

	product.CurrentQty = onHand.CanonicalString()
	if err := tx.Model(&Product{}).Where("id = ?", product.ID).
		Update("current_qty", product.CurrentQty).Error; err != nil {
		return nil, err
	}
	return product, nil
}
