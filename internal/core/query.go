package core

import "time"

// Branch is one arm of an ExpenseQuery. Storage backends switch on the
// concrete type to render it; Matches is the in-memory predicate.
type Branch interface {
	Matches(e Expense) bool
	isBranch()
}

// AllExpenses places no date or type constraint.
type AllExpenses struct{}

// NoExpenses matches nothing; it is what remains after restricting a branch
// to the other expense type.
type NoExpenses struct{}

// TypeOnly constrains the expense type only.
type TypeOnly struct {
	Type ExpenseType
}

// OneTimeInRange matches one-time expenses whose expense_date lies in
// [From, To]. An empty bound is unbounded on that side.
type OneTimeInRange struct {
	From Date
	To   Date
}

// RecurringOverlap matches recurring expenses whose lifespan
// [start_date, end_date or open] intersects [Start, End].
type RecurringOverlap struct {
	Start Date
	End   Date
}

// RecurringContained matches recurring expenses whose start_date and end_date
// both lie in [From, To]. Open-ended expenses never match.
type RecurringContained struct {
	From Date
	To   Date
}

// Either is the disjunction of a one-time arm and a recurring arm.
type Either struct {
	OneTime   OneTimeInRange
	Recurring Branch
}

func (AllExpenses) isBranch()        {}
func (NoExpenses) isBranch()         {}
func (TypeOnly) isBranch()           {}
func (OneTimeInRange) isBranch()     {}
func (RecurringOverlap) isBranch()   {}
func (RecurringContained) isBranch() {}
func (Either) isBranch()             {}

func (AllExpenses) Matches(Expense) bool { return true }

func (NoExpenses) Matches(Expense) bool { return false }

func (b TypeOnly) Matches(e Expense) bool { return e.Type == b.Type }

func (b OneTimeInRange) Matches(e Expense) bool {
	return e.Type == OneTime && e.ExpenseDate.Within(b.From, b.To)
}

func (b RecurringOverlap) Matches(e Expense) bool {
	if e.Type != Recurring || e.StartDate.After(b.End) {
		return false
	}
	return e.EndDate.IsEmpty() || !e.EndDate.Before(b.Start)
}

func (b RecurringContained) Matches(e Expense) bool {
	return e.Type == Recurring &&
		e.StartDate.Within(b.From, b.To) &&
		e.EndDate.Within(b.From, b.To)
}

func (b Either) Matches(e Expense) bool {
	return b.OneTime.Matches(e) || (b.Recurring != nil && b.Recurring.Matches(e))
}

// ExpenseQuery selects a user's expenses. Results are ordered by
// expense_date descending, then id descending.
type ExpenseQuery struct {
	UserID     string
	CategoryID int64
	Branch     Branch
}

// Matches reports whether e satisfies every part of the query.
func (q ExpenseQuery) Matches(e Expense) bool {
	if e.UserID != q.UserID {
		return false
	}
	if q.CategoryID != 0 && e.CategoryID != q.CategoryID {
		return false
	}
	if q.Branch == nil {
		return true
	}
	return q.Branch.Matches(e)
}

// Restrict narrows the query to one expense type. An Either drops the arm of
// the other type entirely; arms of the wrong type collapse to NoExpenses.
func (q ExpenseQuery) Restrict(t ExpenseType) ExpenseQuery {
	if t == "" {
		return q
	}
	q.Branch = restrictBranch(q.Branch, t)
	return q
}

func restrictBranch(b Branch, t ExpenseType) Branch {
	switch v := b.(type) {
	case nil, AllExpenses:
		return TypeOnly{Type: t}
	case TypeOnly:
		if v.Type != t {
			return NoExpenses{}
		}
		return v
	case OneTimeInRange:
		if t != OneTime {
			return NoExpenses{}
		}
		return v
	case RecurringOverlap, RecurringContained:
		if t != Recurring {
			return NoExpenses{}
		}
		return v
	case Either:
		if t == OneTime {
			return v.OneTime
		}
		return restrictBranch(v.Recurring, t)
	default:
		return NoExpenses{}
	}
}

// BuildExpenseQuery assembles the list query from user filters. Without date
// bounds it filters by type only; with any bound it is the disjunction of
// one-time expenses in range and recurring expenses overlapping
// [start ?? epoch, end ?? now], restricted to the requested type.
func BuildExpenseQuery(userID string, f ExpenseFilter, now time.Time) ExpenseQuery {
	q := ExpenseQuery{UserID: userID, CategoryID: f.CategoryID, Branch: AllExpenses{}}
	if !f.HasDateBound() {
		return q.Restrict(f.Type)
	}

	start := f.StartDate
	if start.IsEmpty() {
		start = Epoch
	}
	end := f.EndDate
	if end.IsEmpty() {
		end = DateOf(now)
	}
	q.Branch = Either{
		OneTime:   OneTimeInRange{From: f.StartDate, To: f.EndDate},
		Recurring: RecurringOverlap{Start: start, End: end},
	}
	return q.Restrict(f.Type)
}

// RecurringPolicy selects how recurring expenses are counted in period
// summaries.
type RecurringPolicy string

const (
	// StrictBothBounds counts a recurring expense only when both start_date
	// and end_date lie inside the window.
	StrictBothBounds RecurringPolicy = "strict_both_bounds"
	// LifespanOverlap counts a recurring expense whose lifespan intersects the
	// window, as the list and monthly report do.
	LifespanOverlap RecurringPolicy = "lifespan_overlap"
)

// ParseRecurringPolicy validates a policy name; empty selects StrictBothBounds.
func ParseRecurringPolicy(s string) (RecurringPolicy, error) {
	switch p := RecurringPolicy(s); p {
	case "":
		return StrictBothBounds, nil
	case StrictBothBounds, LifespanOverlap:
		return p, nil
	default:
		return "", Invalid("recurring_policy", "must be %q or %q", StrictBothBounds, LifespanOverlap)
	}
}

// PeriodExpenseQuery selects the expenses summed for [start, end]: one-time
// expenses in range plus recurring expenses chosen by the policy.
func PeriodExpenseQuery(userID string, start, end Date, policy RecurringPolicy) ExpenseQuery {
	var recurring Branch = RecurringContained{From: start, To: end}
	if policy == LifespanOverlap {
		recurring = RecurringOverlap{Start: start, End: end}
	}
	return ExpenseQuery{
		UserID: userID,
		Branch: Either{
			OneTime:   OneTimeInRange{From: start, To: end},
			Recurring: recurring,
		},
	}
}
