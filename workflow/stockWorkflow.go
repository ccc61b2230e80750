package workflow

import (
	"context"
	"fmt"

	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/models"
	"github.com/itehadironstore/steelbooks_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type stockMovementRequest struct {
	ProductId     int
	Direction     models.StockDirection
	Qty           string
	ReferenceType string
	ReferenceId   int
	MovementDate  models.DateString
	Notes         string
}

// StockMovementInput records goods arriving (a purchase) or leaving outside
// an invoice (wastage, corrections).
type StockMovementInput struct {
	ProductId int    `json:"product_id" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=In Out"`
	Qty       string `json:"qty" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Notes     string `json:"notes" validate:"max=255"`
}

// applyStockMovement appends one movement row and moves the product's
// on-hand quantity inside tx. Out movements floor at zero: the store's
// books never show negative stock, even when the paper trail is behind.
// The product row is locked for the read-modify-write.
func applyStockMovement(tx *gorm.DB, request stockMovementRequest) error {
	product, err := models.GetProductForUpdate(tx, request.ProductId)
	if err != nil {
		return err
	}

	onHand, err := product.Quantity()
	if err != nil {
		return fmt.Errorf("product %s: stored quantity is corrupt: %w", product.Name, err)
	}
	moved, err := models.ParseQuantity(request.Qty, product.Unit)
	if err != nil {
		return fmt.Errorf("product %s: %w", product.Name, err)
	}

	var updated models.Quantity
	switch request.Direction {
	case models.StockDirectionIn:
		updated, err = onHand.Add(moved)
	case models.StockDirectionOut:
		updated, err = onHand.Sub(moved)
	default:
		return fmt.Errorf("invalid stock direction %q", request.Direction)
	}
	if err != nil {
		return err
	}

	movement := &models.StockHistory{
		ProductId:     product.ID,
		Direction:     request.Direction,
		Qty:           moved.CanonicalString(),
		Unit:          product.Unit,
		ReferenceType: request.ReferenceType,
		ReferenceId:   request.ReferenceId,
		MovementDate:  request.MovementDate,
		Notes:         request.Notes,
	}
	if err := tx.Create(movement).Error; err != nil {
		return err
	}
	return tx.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("current_qty", updated.CanonicalString()).Error
}

// ProcessStockMovement posts one standalone movement under the product lock.
func ProcessStockMovement(ctx context.Context, logger *logrus.Logger, input StockMovementInput) (*models.Product, error) {
	if err := validate.Struct(input); err != nil {
		return nil, invalidInput("stock movement", err)
	}
	timezone, _ := utils.GetTimezoneFromContext(ctx)
	date, err := models.ParseDateString(input.Date, timezone)
	if err != nil {
		return nil, err
	}

	lock, err := utils.StockLock(ctx, input.ProductId, "StockWorkflow.go", "ProcessStockMovement")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseLock(ctx, lock)

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyStockMovement(tx, stockMovementRequest{
			ProductId:     input.ProductId,
			Direction:     models.StockDirection(input.Direction),
			Qty:           input.Qty,
			ReferenceType: "Manual",
			MovementDate:  date,
			Notes:         input.Notes,
		})
	})
	if err != nil {
		config.LogError(logger, "StockWorkflow.go", "ProcessStockMovement", "ApplyStockMovement", input, err)
		return nil, err
	}
	return models.GetProductById(ctx, input.ProductId)
}

// RebuildProductStock replays the full movement history for one product
// and overwrites its on-hand quantity, for repairing drift that
// reconciliation checks have reported.
func RebuildProductStock(ctx context.Context, logger *logrus.Logger, productId int) (*models.Product, error) {
	lock, err := utils.StockLock(ctx, productId, "StockWorkflow.go", "RebuildProductStock")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseLock(ctx, lock)

	db := config.GetDB()
	var product *models.Product
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rebuildErr error
		product, rebuildErr = models.RecomputeProductQty(tx, productId)
		return rebuildErr
	})
	if err != nil {
		config.LogError(logger, "StockWorkflow.go", "RebuildProductStock", "RecomputeProductQty", productId, err)
		return nil, err
	}
	return product, nil
}
