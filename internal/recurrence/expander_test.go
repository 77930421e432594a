package recurrence

import (
	"errors"
	"strings"
	"testing"
	"time"

	"pennypal/internal/core"
)

var now = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func monthly(start core.Date) core.Expense {
	return core.Expense{
		ID:          42,
		UserID:      "u1",
		CategoryID:  1,
		Amount:      core.Money{Cents: 1000},
		Type:        core.Recurring,
		StartDate:   start,
		ExpenseDate: start,
		Frequency:   core.Monthly,
	}
}

func join(dates []core.Date) string {
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

func TestExpand(t *testing.T) {
	jan1, apr30 := core.NewDate(2024, 1, 1), core.NewDate(2024, 4, 30)

	ended := monthly(core.NewDate(2024, 1, 15))
	ended.EndDate = core.NewDate(2024, 2, 20)

	leap := monthly(core.NewDate(2020, 2, 29))
	leap.Frequency = core.Yearly

	endOfMonth := monthly(core.NewDate(2024, 1, 31))

	later := monthly(core.NewDate(2024, 1, 10))
	later.ExpenseDate = core.NewDate(2024, 3, 10)

	tests := []struct {
		name    string
		expense core.Expense
		window  Window
		opts    Options
		want    string
	}{
		{
			name:    "monthly count",
			expense: monthly(core.NewDate(2024, 1, 15)),
			window:  Window{Start: jan1, End: apr30},
			want:    "2024-01-15,2024-02-15,2024-03-15,2024-04-15",
		},
		{
			name:    "end date truncates",
			expense: ended,
			window:  Window{Start: jan1, End: apr30},
			want:    "2024-01-15,2024-02-15",
		},
		{
			name:    "yearly leap day clamps",
			expense: leap,
			window:  Window{Start: core.NewDate(2020, 1, 1), End: core.NewDate(2024, 12, 31)},
			want:    "2020-02-29,2021-02-28,2022-02-28,2023-02-28,2024-02-29",
		},
		{
			name:    "month end does not drift",
			expense: endOfMonth,
			window:  Window{Start: jan1, End: apr30},
			want:    "2024-01-31,2024-02-29,2024-03-31,2024-04-30",
		},
		{
			name:    "occurrences before window start are skipped",
			expense: monthly(core.NewDate(2023, 11, 5)),
			window:  Window{Start: core.NewDate(2024, 2, 1), End: core.NewDate(2024, 3, 31)},
			want:    "2024-02-05,2024-03-05",
		},
		{
			name:    "anchor is the later of start and expense date",
			expense: later,
			window:  Window{Start: jan1, End: apr30},
			want:    "2024-03-10,2024-04-10",
		},
		{
			name:    "open window stops at now",
			expense: monthly(core.NewDate(2024, 4, 20)),
			window:  Window{},
			want:    "2024-04-20,2024-05-20",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Now = now
			got, err := Expand(tt.expense, tt.window, tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if join(got) != tt.want {
				t.Fatalf("got %s, want %s", join(got), tt.want)
			}
		})
	}
}

func TestExpandIncludeUpcoming(t *testing.T) {
	e := monthly(core.NewDate(2024, 5, 1))
	got, err := Expand(e, Window{End: core.NewDate(2024, 5, 31)}, Options{IncludeUpcoming: true, Now: now})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 14 {
		t.Fatalf("expected 14 occurrences through 2025-06-15, got %d (%s)", len(got), join(got))
	}
	if last := got[len(got)-1].String(); last != "2025-06-01" {
		t.Fatalf("unexpected last occurrence %s", last)
	}
}

func TestExpandErrors(t *testing.T) {
	oneTime := core.Expense{Type: core.OneTime, ExpenseDate: core.NewDate(2024, 1, 1)}
	if _, err := Expand(oneTime, Window{}, Options{Now: now}); !errors.Is(err, core.ErrNotRecurring) {
		t.Fatalf("expected ErrNotRecurring, got %v", err)
	}

	weekly := monthly(core.NewDate(2024, 1, 1))
	weekly.Frequency = "WEEKLY"
	if _, err := Expand(weekly, Window{}, Options{Now: now}); !errors.Is(err, core.ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}

	inverted := Window{Start: core.NewDate(2024, 3, 1), End: core.NewDate(2024, 2, 1)}
	if _, err := Expand(monthly(core.NewDate(2024, 1, 1)), inverted, Options{Now: now}); !errors.Is(err, core.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestExpandRejectsOversizedWindow(t *testing.T) {
	e := monthly(core.NewDate(1900, 1, 1))
	w := Window{End: core.NewDate(2999, 12, 31)}
	if _, err := Expand(e, w, Options{Now: now}); !errors.Is(err, core.ErrTooManyOccurrences) {
		t.Fatalf("expected ErrTooManyOccurrences, got %v", err)
	}
	if core.OutcomeOf(core.ErrTooManyOccurrences) != core.OutcomeValidationFailed {
		t.Error("oversized windows should be a client error")
	}

	// Starting long before the window still yields every in-window date.
	dates, err := Expand(e, Window{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 3, 31)}, Options{Now: now})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := join(dates); got != "2024-01-01,2024-02-01,2024-03-01" {
		t.Errorf("Expand() = %s", got)
	}
}

func TestOccurrencesSkipBaseDate(t *testing.T) {
	e := monthly(core.NewDate(2024, 1, 15))
	occ, err := Occurrences(e, Window{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 4, 30)}, Options{Now: now})
	if err != nil {
		t.Fatal(err)
	}
	if len(occ) != 3 {
		t.Fatalf("expected 3 virtual occurrences, got %d", len(occ))
	}
	seen := map[string]bool{}
	for _, o := range occ {
		if o.Date.Equal(e.ExpenseDate) {
			t.Fatalf("base date %s emitted as virtual occurrence", o.Date)
		}
		if seen[o.SyntheticID()] {
			t.Fatalf("duplicate occurrence %s", o.SyntheticID())
		}
		seen[o.SyntheticID()] = true
		if o.SourceExpenseID != e.ID || o.Amount != e.Amount {
			t.Fatalf("occurrence lost source fields: %+v", o)
		}
	}
}
