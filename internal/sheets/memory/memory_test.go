package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"spesebot/internal/core"
)

func TestMemoryStoreAppend(t *testing.T) {
	s := New()
	r := core.NewExpenseRecord(core.PendingEntry{Amount: "12", Note: "Tea"}, core.Food, time.Now())

	ref, err := s.Append(context.Background(), r)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	ref, err = s.Append(context.Background(), r)
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if got := s.Records(); len(got) != 2 || got[0] != r {
		t.Fatalf("unexpected records: %v", got)
	}
}

func TestMemoryStoreRejectsInvalidRecord(t *testing.T) {
	s := New()
	_, err := s.Append(context.Background(), core.ExpenseRecord{Timestamp: time.Now(), Amount: "1", Category: "Nope", Note: "x"})
	if !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if len(s.Records()) != 0 {
		t.Fatalf("invalid record must not be stored")
	}
}

func TestMemoryStoreFailWith(t *testing.T) {
	s := New()
	boom := errors.New("backend down")
	s.FailWith(boom)

	r := core.NewExpenseRecord(core.PendingEntry{Amount: "1", Note: "x"}, core.Misc, time.Now())
	if _, err := s.Append(context.Background(), r); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}

	s.FailWith(nil)
	if _, err := s.Append(context.Background(), r); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
}
