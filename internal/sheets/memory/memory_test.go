package memory

import (
	"context"
	"testing"

	"pennypal/internal/core"
)

func TestStoreAppend(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, core.Expense{ID: 5, Description: "t", Amount: core.Money{Cents: 123}})
	if err != nil || ref != "mem:expenses:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if _, err := s.Append(ctx, core.Expense{}); err == nil {
		t.Fatal("expense without id should be rejected")
	}

	ref, err = s.AppendActivity(ctx, core.Activity{UserID: "u", Entity: core.EntityExpense, Action: core.ActionCreated})
	if err != nil || ref != "mem:activity:1" {
		t.Fatalf("unexpected activity append: ref=%q err=%v", ref, err)
	}

	if got := len(s.Expenses()); got != 1 {
		t.Errorf("Expenses() len = %d, want 1", got)
	}
	if got := len(s.Activities()); got != 1 {
		t.Errorf("Activities() len = %d, want 1", got)
	}
}

func TestStoreFailNext(t *testing.T) {
	s := New()
	s.FailNext(1)
	if _, err := s.AppendActivity(context.Background(), core.Activity{}); err == nil {
		t.Fatal("expected injected failure")
	}
	if _, err := s.AppendActivity(context.Background(), core.Activity{}); err != nil {
		t.Fatalf("second append should succeed: %v", err)
	}
	if got := len(s.Activities()); got != 1 {
		t.Errorf("Activities() len = %d, want 1", got)
	}
}
