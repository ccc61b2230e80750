package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Statement golden harness. Freezes the projection output (ordering,
// running balances, totals, cash re-orientation) against a snapshot so a
// change to the fold shows up as a reviewable diff.
//
// - Update golden snapshot: UPDATE_GOLDEN=1 go test ./models -run StatementGolden -v
//
// Golden files live under models/testdata/golden/.

type goldenStatementLine struct {
	Id             int    `json:"id"`
	DateTime       string `json:"date_time"`
	Kind           string `json:"kind"`
	Reference      string `json:"reference"`
	Debit          string `json:"debit"`
	Credit         string `json:"credit"`
	RunningBalance string `json:"running_balance"`
}

type goldenStatement struct {
	OpeningBalance string                `json:"opening_balance"`
	Lines          []goldenStatementLine `json:"lines"`
	TotalDebit     string                `json:"total_debit"`
	TotalCredit    string                `json:"total_credit"`
	ClosingBalance string                `json:"closing_balance"`
}

type goldenStatementSnapshot struct {
	KhataStatement     goldenStatement `json:"khata_statement"`
	DailyCashStatement goldenStatement `json:"daily_cash_statement"`
}

func TestStatementGolden(t *testing.T) {
	khata, err := BuildStatement([]LedgerTransaction{
		khatarow(t, 2, "2025-03-02", 10, TransactionKindPayment, "0", "2000.00"),
		khatarow(t, 1, "2025-03-01", 9, TransactionKindInvoice, "5000.00", "0"),
	}, Money{})
	if err != nil {
		t.Fatalf("BuildStatement error: %v", err)
	}

	daily, err := BuildDailyCashStatement([]LedgerTransaction{
		cashIn(t, 3, "2025-03-03", 9, "25000.00"),
		khatarow(t, 4, "2025-03-03", 11, TransactionKindPayment, "0", "2000.00"),
		cashOut(t, 5, "2025-03-03", 15, "10000.00"),
		// receivable; must not appear in the cash snapshot
		khatarow(t, 6, "2025-03-03", 12, TransactionKindInvoice, "5000.00", "0"),
	}, money(t, "100000.00"))
	if err != nil {
		t.Fatalf("BuildDailyCashStatement error: %v", err)
	}

	actual := goldenStatementSnapshot{
		KhataStatement:     normalizeStatement(khata),
		DailyCashStatement: normalizeStatement(daily),
	}
	loadOrUpdateGolden(t, statementSnapshotPath("statements"), actual)
}

func normalizeStatement(s *LedgerStatement) goldenStatement {
	out := goldenStatement{
		OpeningBalance: s.OpeningBalance.String(),
		Lines:          make([]goldenStatementLine, 0, len(s.Lines)),
		TotalDebit:     s.TotalDebit.String(),
		TotalCredit:    s.TotalCredit.String(),
		ClosingBalance: s.ClosingBalance().String(),
	}
	for _, line := range s.Lines {
		out.Lines = append(out.Lines, goldenStatementLine{
			Id:             line.ID,
			DateTime:       line.TransactionDateTime.UTC().Format(time.RFC3339),
			Kind:           string(line.Kind),
			Reference:      line.ReferenceNumber,
			Debit:          line.Debit.String(),
			Credit:         line.Credit.String(),
			RunningBalance: line.RunningBalance.String(),
		})
	}
	return out
}

func statementSnapshotPath(name string) string {
	return filepath.Join("testdata", "golden", name+".json")
}

func loadOrUpdateGolden(t *testing.T, path string, actual any) {
	t.Helper()

	update := strings.TrimSpace(os.Getenv("UPDATE_GOLDEN")) != ""
	b, err := os.ReadFile(path)
	if err != nil {
		if update {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				t.Fatalf("mkdir golden dir: %v", err)
			}
			out, merr := json.MarshalIndent(actual, "", "  ")
			if merr != nil {
				t.Fatalf("marshal golden: %v", merr)
			}
			if werr := os.WriteFile(path, out, 0o644); werr != nil {
				t.Fatalf("write golden: %v", werr)
			}
			t.Logf("wrote golden snapshot: %s", path)
			return
		}
		t.Skipf("golden snapshot missing (%s). Re-run with UPDATE_GOLDEN=1 to generate.", path)
	}

	var expected any
	if err := json.Unmarshal(b, &expected); err != nil {
		t.Fatalf("unmarshal golden (%s): %v", path, err)
	}
	got := canonicalJSON(t, actual)
	want := canonicalJSON(t, expected)
	if got != want {
		prettyExpected, _ := json.MarshalIndent(expected, "", "  ")
		prettyActual, _ := json.MarshalIndent(actual, "", "  ")
		t.Fatalf("statement golden mismatch\n\nEXPECTED (%s):\n%s\n\nACTUAL:\n%s\n", path, string(prettyExpected), string(prettyActual))
	}
}

// canonicalJSON round-trips through map[string]any so field order never
// matters in the compare.
func canonicalJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	var norm any
	if err := json.Unmarshal(b, &norm); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	nb, err := json.Marshal(norm)
	if err != nil {
		t.Fatalf("re-marshal json: %v", err)
	}
	return string(nb)
}
