package models

import (
	"strings"
	"testing"
)

func TestInvoiceItem_LineAmount(t *testing.T) {
	cases := []struct {
		qty    string
		unit   UnitKind
		rate   string
		amount string
	}{
		// 1600.060 kg at 250.00/kg: the 60 grams are worth 15.02 (rounded).
		{"1600-60", UnitKgGm, "250.00", "400015.00"},
		{"500.10", UnitKgDecimal, "198.50", "99269.85"},
		{"25", UnitPiece, "1150.00", "28750.00"},
		{"40", UnitFoot, "95.50", "3820.00"},
	}
	for _, tc := range cases {
		item := &InvoiceItem{Qty: tc.qty, Unit: tc.unit, Rate: money(t, tc.rate)}
		amount, err := item.LineAmount()
		if err != nil {
			t.Fatalf("LineAmount(%q %s) error: %v", tc.qty, tc.unit, err)
		}
		if amount.String() != tc.amount {
			t.Fatalf("LineAmount(%q %s @ %s) expected %s, got %s", tc.qty, tc.unit, tc.rate, tc.amount, amount)
		}
	}
}

func TestInvoice_StatusDerivation(t *testing.T) {
	invoice := &Invoice{
		InvoiceNumber: "IV-002",
		Items: []*InvoiceItem{
			{Qty: "100", Unit: UnitKgGm, Rate: money(t, "250.00")},
			{Qty: "10", Unit: UnitPiece, Rate: money(t, "500.00")},
		},
	}
	if err := invoice.RefreshTotals(); err != nil {
		t.Fatalf("RefreshTotals error: %v", err)
	}
	if got := invoice.TotalAmount.String(); got != "30000.00" {
		t.Fatalf("total expected 30000.00, got %s", got)
	}
	if invoice.Status != InvoiceStatusUnpaid {
		t.Fatalf("fresh invoice expected Unpaid, got %s", invoice.Status)
	}

	if err := invoice.ApplyPaymentAllocation(money(t, "10000.00")); err != nil {
		t.Fatalf("first allocation error: %v", err)
	}
	if invoice.Status != InvoiceStatusPartialPaid {
		t.Fatalf("after partial payment expected Partial Paid, got %s", invoice.Status)
	}
	if got := invoice.Outstanding().String(); got != "20000.00" {
		t.Fatalf("outstanding expected 20000.00, got %s", got)
	}

	if err := invoice.ApplyPaymentAllocation(money(t, "20000.00")); err != nil {
		t.Fatalf("final allocation error: %v", err)
	}
	if invoice.Status != InvoiceStatusPaid {
		t.Fatalf("after full payment expected Paid, got %s", invoice.Status)
	}
}

func TestInvoice_OverAllocationRejected(t *testing.T) {
	invoice := &Invoice{
		InvoiceNumber: "IV-003",
		Items: []*InvoiceItem{
			{Qty: "10", Unit: UnitPiece, Rate: money(t, "100.00")},
		},
	}
	if err := invoice.RefreshTotals(); err != nil {
		t.Fatalf("RefreshTotals error: %v", err)
	}

	err := invoice.ApplyPaymentAllocation(money(t, "1000.01"))
	if err == nil {
		t.Fatal("over-allocation must be rejected")
	}
	if !strings.Contains(err.Error(), "exceeds outstanding") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !invoice.PaidAmount.IsZero() {
		t.Fatal("rejected allocation must not change paid amount")
	}

	if err := invoice.ApplyPaymentAllocation(Money{}); err == nil {
		t.Fatal("zero allocation must be rejected")
	}
}
