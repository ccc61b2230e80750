package models

import "testing"

func TestInvalidationSet_MergeNormalize(t *testing.T) {
	var set InvalidationSet
	if !set.IsEmpty() {
		t.Fatal("fresh set should be empty")
	}

	set.AddDate(date(t, "2025-08-01"))
	set.AddDate(date(t, "2025-08-02"))
	set.AddCustomer(7)

	var other InvalidationSet
	other.AddDate(date(t, "2025-08-02"))
	other.AddCustomer(7)
	other.AddCustomer(9)

	set.Merge(other)
	set.Normalize()

	if len(set.Dates) != 2 {
		t.Fatalf("expected 2 distinct dates, got %d", len(set.Dates))
	}
	if len(set.CustomerIds) != 2 {
		t.Fatalf("expected 2 distinct customers, got %d", len(set.CustomerIds))
	}
	if set.IsEmpty() {
		t.Fatal("set with entries must not report empty")
	}
}
