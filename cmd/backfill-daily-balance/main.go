package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/models"
	"github.com/itehadironstore/steelbooks_backend/utils"
	"gorm.io/gorm"
)

func main() {
	from := flag.String("from", "", "Optional: start date (YYYY-MM-DD). Defaults to the first ledger day.")
	flag.Parse()

	ctx := context.Background()
	// Explicit DB connect (config no longer connects DB in init()).
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	// Ensure schema is up-to-date (creates daily_balances if missing).
	models.MigrateTable()

	timezone := utils.DefaultTimezone()
	var start models.DateString
	if strings.TrimSpace(*from) != "" {
		parsed, err := models.ParseDateString(strings.TrimSpace(*from), timezone)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -from: %v\n", err)
			os.Exit(1)
		}
		start = parsed
	} else {
		earliest, ok, err := models.EarliestTransactionDate(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to find first ledger day: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("ledger is empty; nothing to backfill")
			return
		}
		start = earliest
	}

	fmt.Printf("Backfilling daily_balances from=%s timezone=%s\n", start, timezone)

	var touched []models.DateString
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chainErr error
		touched, chainErr = models.RechainDailyBalances(tx, start)
		return chainErr
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "backfill failed: %v\n", err)
		os.Exit(1)
	}

	if len(touched) > 0 {
		fmt.Printf("Rechained %d day(s): %s .. %s\n", len(touched), touched[0], touched[len(touched)-1])
	} else {
		fmt.Println("No days needed rechaining")
	}
}
