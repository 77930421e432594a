package storage

import (
	"fmt"
	"strings"

	"pennypal/internal/core"
)

// whereClause accumulates SQL conditions with ? placeholders.
type whereClause struct {
	conds []string
	args  []any
}

func (w *whereClause) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return "1=1"
	}
	return strings.Join(w.conds, " AND ")
}

// renderExpenseQuery turns an ExpenseQuery into a WHERE clause.
func renderExpenseQuery(q core.ExpenseQuery) (string, []any, error) {
	var w whereClause
	w.add("user_id = ?", q.UserID)
	if q.CategoryID != 0 {
		w.add("category_id = ?", q.CategoryID)
	}
	branch, args, err := renderBranch(q.Branch)
	if err != nil {
		return "", nil, err
	}
	w.add(branch, args...)
	return w.String(), w.args, nil
}

func renderBranch(b core.Branch) (string, []any, error) {
	switch v := b.(type) {
	case nil, core.AllExpenses:
		return "1=1", nil, nil
	case core.NoExpenses:
		return "1=0", nil, nil
	case core.TypeOnly:
		return "type = ?", []any{string(v.Type)}, nil
	case core.OneTimeInRange:
		var w whereClause
		w.add("type = ?", string(core.OneTime))
		w.add("expense_date IS NOT NULL")
		if !v.From.IsEmpty() {
			w.add("expense_date >= ?", v.From)
		}
		if !v.To.IsEmpty() {
			w.add("expense_date <= ?", v.To)
		}
		return "(" + w.String() + ")", w.args, nil
	case core.RecurringOverlap:
		return "(type = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?))",
			[]any{string(core.Recurring), v.End, v.Start}, nil
	case core.RecurringContained:
		return "(type = ? AND start_date >= ? AND start_date <= ? AND end_date IS NOT NULL AND end_date >= ? AND end_date <= ?)",
			[]any{string(core.Recurring), v.From, v.To, v.From, v.To}, nil
	case core.Either:
		oneTime, oneArgs, err := renderBranch(v.OneTime)
		if err != nil {
			return "", nil, err
		}
		var rb core.Branch = core.NoExpenses{}
		if v.Recurring != nil {
			rb = v.Recurring
		}
		recurring, recArgs, err := renderBranch(rb)
		if err != nil {
			return "", nil, err
		}
		return "(" + oneTime + " OR " + recurring + ")", append(oneArgs, recArgs...), nil
	default:
		return "", nil, fmt.Errorf("unsupported query branch %T", b)
	}
}
