package core

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// TimestampLayout is the wall-clock format written to the first column of a record row.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	Food       Category = "Food"
	Travel     Category = "Travel"
	Rent       Category = "Rent"
	Investment Category = "Investment"
	Lending    Category = "Lending"
	Misc       Category = "Misc"
)

type (
	Category string

	// PendingEntry is an expense that still waits for its category.
	PendingEntry struct {
		Amount string
		Note   string
	}

	// ExpenseRecord is a categorized expense ready to be appended to the sink.
	ExpenseRecord struct {
		Timestamp time.Time
		Amount    string
		Category  Category
		Note      string
	}
)

// categories is the ordered category set offered to the user.
var categories = []Category{Food, Travel, Rent, Investment, Lending, Misc}

var (
	ErrNotAnExpense    = errors.New("not an expense")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyNote       = errors.New("empty note")
	ErrZeroTimestamp   = errors.New("zero timestamp")
)

// Categories returns a copy of the category set in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory returns the category whose name is exactly s.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

func (p PendingEntry) Validate() error {
	if !isDigits(p.Amount) {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(p.Note) == "" {
		return ErrEmptyNote
	}
	return nil
}

// NewExpenseRecord finalizes a pending entry with the chosen category at time now.
func NewExpenseRecord(p PendingEntry, c Category, now time.Time) ExpenseRecord {
	return ExpenseRecord{
		Timestamp: now,
		Amount:    p.Amount,
		Category:  c,
		Note:      p.Note,
	}
}

func (r ExpenseRecord) Validate() error {
	if r.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	if !r.Category.Valid() {
		return ErrUnknownCategory
	}
	return PendingEntry{Amount: r.Amount, Note: r.Note}.Validate()
}

// Row returns the record cells in sink column order: timestamp, amount, category, note.
func (r ExpenseRecord) Row() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		r.Amount,
		r.Category.String(),
		r.Note,
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
