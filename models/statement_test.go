package models

import (
	"errors"
	"testing"
	"time"
)

func money(t *testing.T, s string) Money {
	t.Helper()
	m, err := NewMoneyFromString(s)
	if err != nil {
		t.Fatalf("NewMoneyFromString(%q) error: %v", s, err)
	}
	return m
}

func date(t *testing.T, s string) DateString {
	t.Helper()
	d, err := ParseDateString(s, "Asia/Karachi")
	if err != nil {
		t.Fatalf("ParseDateString(%q) error: %v", s, err)
	}
	return d
}

func khatarow(t *testing.T, id int, day string, hour int, kind TransactionKind, debit, credit string) LedgerTransaction {
	t.Helper()
	d := date(t, day)
	counterparty := CounterpartyCustomer
	return LedgerTransaction{
		ID:                  id,
		TransactionDateTime: d.Time().Add(time.Duration(hour) * time.Hour),
		TransactionDate:     d,
		Kind:                kind,
		ReferenceNumber:     string(kind) + "-" + day,
		Debit:               money(t, debit),
		Credit:              money(t, credit),
		CounterpartyType:    &counterparty,
	}
}

func TestBuildStatement_InvoiceThenPayment(t *testing.T) {
	// Fed out of order on purpose; the projector sorts.
	entries := []LedgerTransaction{
		khatarow(t, 2, "2025-01-02", 10, TransactionKindPayment, "0", "2000.00"),
		khatarow(t, 1, "2025-01-01", 9, TransactionKindInvoice, "5000.00", "0"),
	}

	statement, err := BuildStatement(entries, Money{})
	if err != nil {
		t.Fatalf("BuildStatement error: %v", err)
	}
	if len(statement.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(statement.Lines))
	}
	if got := statement.Lines[0].RunningBalance.String(); got != "5000.00" {
		t.Fatalf("first running balance expected 5000.00, got %s", got)
	}
	if got := statement.Lines[1].RunningBalance.String(); got != "3000.00" {
		t.Fatalf("second running balance expected 3000.00, got %s", got)
	}
	if got := statement.ClosingBalance().String(); got != "3000.00" {
		t.Fatalf("closing expected 3000.00, got %s", got)
	}
}

// runningBalance[n] == sum(debit[0..n]) - sum(credit[0..n]) for every n.
func TestBuildStatement_BalanceInvariant(t *testing.T) {
	entries := []LedgerTransaction{
		khatarow(t, 1, "2025-02-01", 9, TransactionKindInvoice, "1250.75", "0"),
		khatarow(t, 2, "2025-02-01", 11, TransactionKindPayment, "0", "300.25"),
		khatarow(t, 3, "2025-02-02", 10, TransactionKindInvoice, "9999.99", "0"),
		khatarow(t, 4, "2025-02-03", 8, TransactionKindAdjustment, "0", "450.00"),
		khatarow(t, 5, "2025-02-03", 9, TransactionKindPayment, "0", "10000.00"),
	}
	statement, err := BuildStatement(entries, Money{})
	if err != nil {
		t.Fatalf("BuildStatement error: %v", err)
	}

	running := Money{}
	for i, line := range statement.Lines {
		running = running.Add(line.Debit).Sub(line.Credit)
		if line.RunningBalance.Cmp(running) != 0 {
			t.Fatalf("line %d: running balance %s, independent sum %s", i, line.RunningBalance, running)
		}
	}
	// Over-payment leaves the khata negative: the store owes the customer.
	if !statement.ClosingBalance().IsNegative() {
		t.Fatalf("expected negative closing (customer credit), got %s", statement.ClosingBalance())
	}
}

func TestBuildStatement_StableTieBreakById(t *testing.T) {
	// Same instant; insertion ids break the tie.
	entries := []LedgerTransaction{
		khatarow(t, 7, "2025-03-01", 9, TransactionKindPayment, "0", "100.00"),
		khatarow(t, 3, "2025-03-01", 9, TransactionKindInvoice, "100.00", "0"),
	}
	statement, err := BuildStatement(entries, Money{})
	if err != nil {
		t.Fatalf("BuildStatement error: %v", err)
	}
	if statement.Lines[0].ID != 3 || statement.Lines[1].ID != 7 {
		t.Fatalf("tie break by id failed: got order %d, %d", statement.Lines[0].ID, statement.Lines[1].ID)
	}
}

func TestBuildStatement_DuplicateId(t *testing.T) {
	entries := []LedgerTransaction{
		khatarow(t, 1, "2025-03-01", 9, TransactionKindManualIncome, "100.00", "0"),
		khatarow(t, 1, "2025-03-01", 10, TransactionKindManualIncome, "100.00", "0"),
	}
	_, err := BuildStatement(entries, Money{})
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}
}

func TestBuildStatement_InputNotMutated(t *testing.T) {
	entries := []LedgerTransaction{
		khatarow(t, 2, "2025-03-02", 9, TransactionKindPayment, "0", "50.00"),
		khatarow(t, 1, "2025-03-01", 9, TransactionKindInvoice, "50.00", "0"),
	}
	if _, err := BuildStatement(entries, Money{}); err != nil {
		t.Fatalf("BuildStatement error: %v", err)
	}
	if entries[0].ID != 2 {
		t.Fatal("BuildStatement must not reorder the caller's slice")
	}
}

func TestStatement_Reversed(t *testing.T) {
	entries := []LedgerTransaction{
		khatarow(t, 1, "2025-04-01", 9, TransactionKindInvoice, "500.00", "0"),
		khatarow(t, 2, "2025-04-02", 9, TransactionKindPayment, "0", "200.00"),
	}
	statement, err := BuildStatement(entries, Money{})
	if err != nil {
		t.Fatalf("BuildStatement error: %v", err)
	}

	reversed := statement.Reversed()
	if reversed.Lines[0].ID != 2 || reversed.Lines[1].ID != 1 {
		t.Fatal("Reversed should be newest-first")
	}
	// Balances travel with their lines; nothing recomputes.
	if got := reversed.Lines[0].RunningBalance.String(); got != "300.00" {
		t.Fatalf("newest line balance expected 300.00, got %s", got)
	}
	if got := reversed.Lines[1].RunningBalance.String(); got != "500.00" {
		t.Fatalf("oldest line balance expected 500.00, got %s", got)
	}
	if reversed.TotalDebit.Cmp(statement.TotalDebit) != 0 || reversed.TotalCredit.Cmp(statement.TotalCredit) != 0 {
		t.Fatal("Reversed must carry totals unchanged")
	}
}

func TestBuildDailyCashStatement_ClassifiesAndOrients(t *testing.T) {
	counterpartyVendor := CounterpartyVendor
	vendorPayment := khatarow(t, 4, "2025-05-01", 14, TransactionKindPayment, "3000.00", "0")
	vendorPayment.CounterpartyType = &counterpartyVendor

	manualIncome := khatarow(t, 3, "2025-05-01", 12, TransactionKindManualIncome, "1500.00", "0")
	manualIncome.CounterpartyType = nil

	entries := []LedgerTransaction{
		// Invoice is a receivable: must not move cash.
		khatarow(t, 1, "2025-05-01", 9, TransactionKindInvoice, "99999.00", "0"),
		// Customer payment: khata credit, cash in.
		khatarow(t, 2, "2025-05-01", 10, TransactionKindPayment, "0", "2000.00"),
		manualIncome,
		// Vendor payment: khata debit, cash out.
		vendorPayment,
	}

	opening := money(t, "1000.00")
	statement, err := BuildDailyCashStatement(entries, opening)
	if err != nil {
		t.Fatalf("BuildDailyCashStatement error: %v", err)
	}
	if len(statement.Lines) != 3 {
		t.Fatalf("expected 3 cash lines, got %d", len(statement.Lines))
	}
	if got := statement.TotalDebit.String(); got != "3500.00" {
		t.Fatalf("incoming expected 3500.00 (payment 2000 + income 1500), got %s", got)
	}
	if got := statement.TotalCredit.String(); got != "3000.00" {
		t.Fatalf("outgoing expected 3000.00 (vendor payment), got %s", got)
	}
	if got := statement.ClosingBalance().String(); got != "1500.00" {
		t.Fatalf("closing expected 1500.00, got %s", got)
	}
}
