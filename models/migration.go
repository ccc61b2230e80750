package models

import (
	"log"

	"github.com/itehadironstore/steelbooks_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Customer{}, &Vendor{}, &Staff{},
		&Product{}, &StockHistory{},
		&Invoice{}, &InvoiceItem{},
		&LedgerTransaction{}, &DailyBalance{}, &OpeningBalance{},
		&ReconciliationReport{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
