package core

import (
	"errors"
	"testing"
	"time"
)

func TestCategoriesOrder(t *testing.T) {
	want := []Category{Food, Travel, Rent, Investment, Lending, Misc}
	got := Categories()
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("category %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	// Callers must not be able to mutate the shared set.
	got[0] = "Hacked"
	if Categories()[0] != Food {
		t.Fatalf("Categories returned a shared slice")
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(c.String())
		if err != nil || got != c {
			t.Fatalf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	for _, bad := range []string{"", "food", "FOOD", " Food", "Groceries"} {
		if _, err := ParseCategory(bad); !errors.Is(err, ErrUnknownCategory) {
			t.Fatalf("ParseCategory(%q) expected ErrUnknownCategory, got %v", bad, err)
		}
	}
}

func TestPendingEntryValidate(t *testing.T) {
	if err := (PendingEntry{Amount: "10", Note: "Tea"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []struct {
		entry PendingEntry
		want  error
	}{
		{PendingEntry{Amount: "", Note: "Tea"}, ErrInvalidAmount},
		{PendingEntry{Amount: "1a", Note: "Tea"}, ErrInvalidAmount},
		{PendingEntry{Amount: "10", Note: "  "}, ErrEmptyNote},
	}
	for i, tc := range bads {
		if err := tc.entry.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestExpenseRecordRowAndValidate(t *testing.T) {
	at := time.Date(2025, 3, 9, 14, 5, 7, 0, time.Local)
	r := NewExpenseRecord(PendingEntry{Amount: "99", Note: "Lunch"}, Food, at)
	if err := r.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	row := r.Row()
	want := []string{"2025-03-09 14:05:07", "99", "Food", "Lunch"}
	if len(row) != len(want) {
		t.Fatalf("expected %d cells, got %d", len(want), len(row))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("cell %d: expected %q, got %q", i, want[i], row[i])
		}
	}

	r.Category = "Groceries"
	if err := r.Validate(); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	r.Category = Food
	r.Timestamp = time.Time{}
	if err := r.Validate(); !errors.Is(err, ErrZeroTimestamp) {
		t.Fatalf("expected ErrZeroTimestamp, got %v", err)
	}
}
