// Package core provides the expense domain: the category set, pending entries,
// finalized records and the free-text parser.
//
// This file contains the conversion of a parsed amount into integer cents for
// backends that store numeric columns.
package core

import (
	"strconv"
)

// maxWholeUnits is the largest whole amount that still fits in int64 cents.
const maxWholeUnits = (1<<63 - 1) / 100

// AmountCents converts a parsed amount (a run of decimal digits) into cents.
//
// Amounts are unit-less whole numbers, so the result is always a multiple of 100.
// Returns ErrInvalidAmount for anything that is not an ASCII digit run or overflows.
//
// Examples:
//
//	AmountCents("250") -> 25000, nil
//	AmountCents("007") -> 700, nil
//	AmountCents("12.5") -> 0, ErrInvalidAmount
func AmountCents(amount string) (int64, error) {
	for _, r := range amount {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(amount, 10, 64)
	if err != nil || v > maxWholeUnits {
		return 0, ErrInvalidAmount
	}
	return v * 100, nil
}
