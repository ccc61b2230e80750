package models

import "testing"

func movement(t *testing.T, id int, direction StockDirection, qty string, day string) StockHistory {
	t.Helper()
	return StockHistory{
		ID:           id,
		ProductId:    1,
		Direction:    direction,
		Qty:          qty,
		Unit:         UnitKgGm,
		MovementDate: date(t, day),
	}
}

func TestFoldStockMovements(t *testing.T) {
	opening, err := ParseQuantity("0", UnitKgGm)
	if err != nil {
		t.Fatalf("ParseQuantity error: %v", err)
	}
	movements := []StockHistory{
		movement(t, 1, StockDirectionIn, "1600-60", "2025-07-01"),
		movement(t, 2, StockDirectionOut, "600-100", "2025-07-02"),
		movement(t, 3, StockDirectionIn, "0-40", "2025-07-03"),
	}

	onHand, err := FoldStockMovements(UnitKgGm, opening, movements)
	if err != nil {
		t.Fatalf("FoldStockMovements error: %v", err)
	}
	if onHand.CanonicalString() != "1000" {
		t.Fatalf("expected 1000 (kg), got %q", onHand.CanonicalString())
	}
}

func TestFoldStockMovements_FloorsAtZero(t *testing.T) {
	opening, _ := ParseQuantity("5", UnitKgGm)
	movements := []StockHistory{
		movement(t, 1, StockDirectionOut, "12", "2025-07-01"),
		movement(t, 2, StockDirectionIn, "3-500", "2025-07-02"),
	}
	onHand, err := FoldStockMovements(UnitKgGm, opening, movements)
	if err != nil {
		t.Fatalf("FoldStockMovements error: %v", err)
	}
	// The over-draw floors at zero first; the later arrival stands alone.
	if onHand.CanonicalString() != "3-500" {
		t.Fatalf("expected 3-500, got %q", onHand.CanonicalString())
	}
}

func TestFoldStockMovements_BadRowSurfaces(t *testing.T) {
	opening, _ := ParseQuantity("0", UnitKgGm)
	movements := []StockHistory{
		movement(t, 1, StockDirectionIn, "not-a-qty", "2025-07-01"),
	}
	if _, err := FoldStockMovements(UnitKgGm, opening, movements); err == nil {
		t.Fatal("corrupt history rows must fail the fold, not coerce to zero")
	}
}
