package core

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CurrencySymbol is the optional amount prefix accepted by ParseExpense and
// used when echoing amounts back to the user.
const CurrencySymbol = "₹"

// expensePattern matches the first run of decimal digits (any script) anywhere
// in the text, optionally preceded by the currency symbol, and captures the
// rest of that line.
var expensePattern = regexp.MustCompile(regexp.QuoteMeta(CurrencySymbol) + `?(\p{Nd}+)\s*(.*)`)

// ParseExpense extracts an amount and a note from a free-text message.
//
// Only the first digit run is taken as the amount, kept as typed: "12.50 tea"
// yields amount "12" and note ".50 tea". An empty note becomes "Misc".
// The note is capitalized: first letter upper case, the rest lower case.
// Text without any digit returns ErrNotAnExpense.
func ParseExpense(text string) (PendingEntry, error) {
	m := expensePattern.FindStringSubmatch(text)
	if m == nil {
		return PendingEntry{}, ErrNotAnExpense
	}
	note := capitalize(strings.TrimSpace(m[2]))
	if note == "" {
		note = Misc.String()
	}
	return PendingEntry{Amount: m[1], Note: note}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
