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

// Vendor is a supplier the store buys steel from. Cash paid out to a vendor
// lands in the roznamcha as a Payment/ManualOutgoing row with this party.
type Vendor struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;index" json:"name" binding:"required"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	Notes     string    `gorm:"size:255" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *Vendor) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(v.Name) == "" {
		return errors.New("vendor name is required")
	}
	if v.Phone != "" {
		if err := utils.ValidatePhoneNumber(v.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	return nil
}

func GetVendorById(ctx context.Context, id int) (*Vendor, error) {
	db := config.GetDB()
	var row Vendor
	if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &row, nil
}

func GetVendors(ctx context.Context) ([]Vendor, error) {
	db := config.GetDB()
	var rows []Vendor
	if err := db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
