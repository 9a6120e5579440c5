package core

import (
	"errors"
	"testing"
)

func TestAmountCents(t *testing.T) {
	valid := map[string]int64{
		"0":   0,
		"1":   100,
		"250": 25000,
		"007": 700,
	}
	for in, want := range valid {
		got, err := AmountCents(in)
		if err != nil || got != want {
			t.Errorf("AmountCents(%q) = %d, %v; want %d", in, got, err, want)
		}
	}

	for _, in := range []string{"", "12.5", "-1", "abc", "₹250", "٢٥٠", "99999999999999999999", "92233720368547759"} {
		if _, err := AmountCents(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("AmountCents(%q) error = %v, want ErrInvalidAmount", in, err)
		}
	}
}
