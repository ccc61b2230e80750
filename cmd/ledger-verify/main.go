package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/models"
	"github.com/itehadironstore/steelbooks_backend/utils"
)

func main() {
	failOnMismatch := flag.Bool("fail-on-mismatch", true, "Exit non-zero when any check reports drift")
	flag.Parse()

	// One correlation id for the whole run, so every mismatch row and log
	// line from this invocation can be queried together.
	ctx := utils.SetCorrelationIdInContext(context.Background(), uuid.NewString())
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	correlationId, mismatches, err := models.RunReconciliationChecks(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reconciliation checks failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Reconciliation run %s finished: %d mismatch(es)\n", correlationId, mismatches)
	if mismatches > 0 {
		fmt.Printf("See reconciliation_reports WHERE correlation_id = '%s'\n", correlationId)
		if *failOnMismatch {
			os.Exit(1)
		}
	}
}
