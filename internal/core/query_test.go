package core

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestBuildExpenseQueryBranches(t *testing.T) {
	jan1, jan31 := NewDate(2024, 1, 1), NewDate(2024, 1, 31)

	cases := []struct {
		name   string
		filter ExpenseFilter
		want   Branch
	}{
		{"no bounds", ExpenseFilter{}, AllExpenses{}},
		{"type only", ExpenseFilter{Type: Recurring}, TypeOnly{Type: Recurring}},
		{
			"both bounds",
			ExpenseFilter{StartDate: jan1, EndDate: jan31},
			Either{OneTime: OneTimeInRange{From: jan1, To: jan31}, Recurring: RecurringOverlap{Start: jan1, End: jan31}},
		},
		{
			"start only defaults end to now",
			ExpenseFilter{StartDate: jan1},
			Either{OneTime: OneTimeInRange{From: jan1}, Recurring: RecurringOverlap{Start: jan1, End: NewDate(2024, 6, 15)}},
		},
		{
			"end only defaults start to epoch",
			ExpenseFilter{EndDate: jan31},
			Either{OneTime: OneTimeInRange{To: jan31}, Recurring: RecurringOverlap{Start: Epoch, End: jan31}},
		},
		{
			"one-time drops recurring branch",
			ExpenseFilter{StartDate: jan1, EndDate: jan31, Type: OneTime},
			OneTimeInRange{From: jan1, To: jan31},
		},
		{
			"recurring drops one-time branch",
			ExpenseFilter{StartDate: jan1, EndDate: jan31, Type: Recurring},
			RecurringOverlap{Start: jan1, End: jan31},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := BuildExpenseQuery("u1", tc.filter, testNow)
			if q.UserID != "u1" {
				t.Fatalf("query not scoped to user: %+v", q)
			}
			if q.Branch != tc.want {
				t.Fatalf("branch = %#v, want %#v", q.Branch, tc.want)
			}
		})
	}
}

func TestRestrictMismatchedBranch(t *testing.T) {
	q := ExpenseQuery{UserID: "u1", Branch: OneTimeInRange{}}
	if _, ok := q.Restrict(Recurring).Branch.(NoExpenses); !ok {
		t.Fatal("restricting a one-time branch to recurring should match nothing")
	}
	if got := q.Restrict(""); got.Branch != q.Branch {
		t.Fatal("empty restriction should be a no-op")
	}
}

func TestExpenseQueryMatches(t *testing.T) {
	oneTime := Expense{ID: 1, UserID: "u1", CategoryID: 3, Type: OneTime, ExpenseDate: NewDate(2024, 1, 10)}
	openEnded := Expense{ID: 2, UserID: "u1", CategoryID: 3, Type: Recurring, StartDate: NewDate(2023, 6, 1), Frequency: Monthly}
	ended := Expense{ID: 3, UserID: "u1", CategoryID: 4, Type: Recurring, StartDate: NewDate(2023, 1, 1), EndDate: NewDate(2023, 12, 31), Frequency: Monthly}
	future := Expense{ID: 4, UserID: "u1", CategoryID: 4, Type: Recurring, StartDate: NewDate(2024, 2, 1), Frequency: Yearly}
	other := Expense{ID: 5, UserID: "u2", CategoryID: 3, Type: OneTime, ExpenseDate: NewDate(2024, 1, 10)}

	q := BuildExpenseQuery("u1", ExpenseFilter{StartDate: NewDate(2024, 1, 1), EndDate: NewDate(2024, 1, 31)}, testNow)
	want := map[int64]bool{1: true, 2: true, 3: false, 4: false, 5: false}
	for _, e := range []Expense{oneTime, openEnded, ended, future, other} {
		if got := q.Matches(e); got != want[e.ID] {
			t.Errorf("expense %d: Matches = %v, want %v", e.ID, got, want[e.ID])
		}
	}

	q.CategoryID = 4
	if q.Matches(oneTime) {
		t.Error("category filter should exclude expense 1")
	}
}

func TestPeriodExpenseQueryPolicies(t *testing.T) {
	start, end := NewDate(2024, 3, 1), NewDate(2024, 3, 31)
	openEnded := Expense{UserID: "u1", Type: Recurring, StartDate: NewDate(2023, 6, 1), Frequency: Monthly}
	contained := Expense{UserID: "u1", Type: Recurring, StartDate: NewDate(2024, 3, 2), EndDate: NewDate(2024, 3, 20), Frequency: Monthly}

	strict := PeriodExpenseQuery("u1", start, end, StrictBothBounds)
	if strict.Matches(openEnded) {
		t.Error("strict policy must not count open-ended recurring expenses")
	}
	if !strict.Matches(contained) {
		t.Error("strict policy should count a recurring expense inside the window")
	}

	overlap := PeriodExpenseQuery("u1", start, end, LifespanOverlap)
	if !overlap.Matches(openEnded) || !overlap.Matches(contained) {
		t.Error("overlap policy should count both recurring expenses")
	}
}

func TestParseRecurringPolicy(t *testing.T) {
	if p, err := ParseRecurringPolicy(""); err != nil || p != StrictBothBounds {
		t.Fatalf("default policy = %q, %v", p, err)
	}
	if _, err := ParseRecurringPolicy("loose"); OutcomeOf(err) != OutcomeValidationFailed {
		t.Fatalf("expected validation error, got %v", err)
	}
}
