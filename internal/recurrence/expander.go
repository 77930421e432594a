// Package recurrence expands recurring expenses into dated occurrences.
//
// Each frequency has its own Stepper; occurrences are computed from the
// anchor date (the n-th occurrence is anchor + n periods) so clamping on a
// short month never shifts later occurrences.
package recurrence

import (
	"fmt"
	"time"

	"pennypal/internal/core"
)

// Stepper computes the n-th occurrence after an anchor date.
type Stepper interface {
	Step(anchor core.Date, n int) core.Date
}

// MonthlyStepper adds calendar months, clamping to the month's last day.
type MonthlyStepper struct{}

func (MonthlyStepper) Step(anchor core.Date, n int) core.Date { return anchor.AddMonths(n) }

// YearlyStepper adds calendar years; Feb 29 becomes Feb 28 in common years.
type YearlyStepper struct{}

func (YearlyStepper) Step(anchor core.Date, n int) core.Date { return anchor.AddYears(n) }

var steppers = map[core.Frequency]Stepper{
	core.Monthly: MonthlyStepper{},
	core.Yearly:  YearlyStepper{},
}

// StepperFor returns the stepper for a frequency.
func StepperFor(f core.Frequency) (Stepper, error) {
	s, ok := steppers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, f)
	}
	return s, nil
}

// Window bounds an expansion. Empty dates are open.
type Window struct {
	Start core.Date
	End   core.Date
}

// Options tune an expansion.
type Options struct {
	// IncludeUpcoming extends the horizon to at least one year past Now.
	IncludeUpcoming bool
	Now             time.Time
}

// upcomingHorizon is how far ahead IncludeUpcoming looks.
const upcomingHorizon = 1 // year

// maxOccurrences caps the dates a single expansion may return.
const maxOccurrences = 10_000

// Expand returns the occurrence dates of a recurring expense within w.
func Expand(e core.Expense, w Window, opts Options) ([]core.Date, error) {
	if e.Type != core.Recurring {
		return nil, core.ErrNotRecurring
	}
	stepper, err := StepperFor(e.Frequency)
	if err != nil {
		return nil, err
	}
	if e.StartDate.IsEmpty() {
		return nil, core.Invalid("start_date", "is required for RECURRING expenses")
	}
	if !w.Start.IsEmpty() && !w.End.IsEmpty() && w.Start.After(w.End) {
		return nil, core.ErrInvalidWindow
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	limit := horizon(w, opts.IncludeUpcoming, core.DateOf(now))
	anchor := core.MaxDate(e.StartDate, e.ExpenseDate)

	var dates []core.Date
	for n := 0; ; n++ {
		current := stepper.Step(anchor, n)
		if current.After(limit) {
			break
		}
		if !e.EndDate.IsEmpty() && current.After(e.EndDate) {
			break
		}
		if !w.Start.IsEmpty() && current.Before(w.Start) {
			continue
		}
		if len(dates) == maxOccurrences {
			return nil, fmt.Errorf("%w: expense %d", core.ErrTooManyOccurrences, e.ID)
		}
		dates = append(dates, current)
	}
	return dates, nil
}

func horizon(w Window, includeUpcoming bool, today core.Date) core.Date {
	if includeUpcoming {
		return core.MaxDate(w.End, today.AddYears(upcomingHorizon))
	}
	if w.End.IsEmpty() {
		return today
	}
	return w.End
}

// Occurrences expands e into virtual occurrences, skipping the occurrence on
// the stored expense_date, which the base row already represents.
func Occurrences(e core.Expense, w Window, opts Options) ([]core.VirtualOccurrence, error) {
	dates, err := Expand(e, w, opts)
	if err != nil {
		return nil, err
	}
	out := make([]core.VirtualOccurrence, 0, len(dates))
	for _, d := range dates {
		if d.Equal(e.ExpenseDate) {
			continue
		}
		out = append(out, core.VirtualOccurrence{
			SourceExpenseID: e.ID,
			UserID:          e.UserID,
			CategoryID:      e.CategoryID,
			Amount:          e.Amount,
			Description:     e.Description,
			Frequency:       e.Frequency,
			Date:            d,
		})
	}
	return out, nil
}
