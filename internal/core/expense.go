package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ExpenseType distinguishes single-date expenses from repeating ones.
type ExpenseType string

const (
	OneTime   ExpenseType = "ONE_TIME"
	Recurring ExpenseType = "RECURRING"
)

// ParseExpenseType accepts the canonical upper-case names, case-insensitively.
func ParseExpenseType(s string) (ExpenseType, error) {
	switch t := ExpenseType(strings.ToUpper(strings.TrimSpace(s))); t {
	case OneTime, Recurring:
		return t, nil
	default:
		return "", Invalid("type", "must be ONE_TIME or RECURRING")
	}
}

// Frequency is the cadence of a recurring expense.
type Frequency string

const (
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

// ParseFrequency accepts MONTHLY or YEARLY, case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToUpper(strings.TrimSpace(s))); f {
	case Monthly, Yearly:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
}

// IsValid reports whether f is a supported cadence.
func (f Frequency) IsValid() bool {
	return f == Monthly || f == Yearly
}

// MarshalJSON writes null for an unset frequency.
func (f Frequency) MarshalJSON() ([]byte, error) {
	if f == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(f))
}

func (f *Frequency) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*f = ""
		return nil
	}
	parsed, err := ParseFrequency(s)
	if err != nil {
		return Invalid("frequency", "must be MONTHLY or YEARLY")
	}
	*f = parsed
	return nil
}

// Expense is a stored expense row.
type Expense struct {
	ID            int64       `json:"id"`
	UserID        string      `json:"user_id"`
	CategoryID    int64       `json:"category_id"`
	Amount        Money       `json:"amount"`
	Description   string      `json:"description"`
	Type          ExpenseType `json:"type"`
	ExpenseDate   Date        `json:"expense_date"`
	StartDate     Date        `json:"start_date"`
	EndDate       Date        `json:"end_date"`
	Frequency     Frequency   `json:"frequency"`
	LastProcessed Date        `json:"last_processed"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// IsRecurring reports whether the expense repeats.
func (e Expense) IsRecurring() bool {
	return e.Type == Recurring
}

// EffectiveDate is the date used for ordering a stored row.
func (e Expense) EffectiveDate() Date {
	if e.ExpenseDate.IsEmpty() {
		return e.StartDate
	}
	return e.ExpenseDate
}

// Normalize clears the fields that do not apply to the expense type and fills
// the defaults: a recurring expense without expense_date uses start_date.
func (e *Expense) Normalize() {
	e.Description = strings.TrimSpace(e.Description)
	switch e.Type {
	case OneTime:
		e.StartDate = Date{}
		e.EndDate = Date{}
		e.Frequency = ""
	case Recurring:
		if e.ExpenseDate.IsEmpty() {
			e.ExpenseDate = e.StartDate
		}
	}
}

// Validate checks the per-type field invariants.
func (e Expense) Validate() error {
	if e.UserID == "" {
		return Invalid("user_id", "is required")
	}
	if e.CategoryID <= 0 {
		return Invalid("category_id", "is required")
	}
	if err := e.Amount.Validate(); err != nil {
		return Invalid("amount", "must be greater than zero")
	}
	if utf8.RuneCountInString(e.Description) > 500 {
		return Invalid("description", "must be at most 500 characters")
	}
	switch e.Type {
	case OneTime:
		if e.ExpenseDate.IsEmpty() {
			return Invalid("expense_date", "is required for ONE_TIME expenses")
		}
		if !e.StartDate.IsEmpty() || !e.EndDate.IsEmpty() || e.Frequency != "" {
			return Invalid("type", "ONE_TIME expenses cannot have start_date, end_date or frequency")
		}
	case Recurring:
		if e.StartDate.IsEmpty() {
			return Invalid("start_date", "is required for RECURRING expenses")
		}
		if e.StartDate.Before(MinStartDate) {
			return Invalid("start_date", "must be on or after %s", MinStartDate)
		}
		if !e.Frequency.IsValid() {
			return Invalid("frequency", "must be MONTHLY or YEARLY")
		}
		if !e.EndDate.IsEmpty() && e.EndDate.Before(e.StartDate) {
			return Invalid("end_date", "must not be before start_date")
		}
	default:
		return Invalid("type", "must be ONE_TIME or RECURRING")
	}
	return nil
}

// MinStartDate is the earliest accepted start_date of a recurring expense.
var MinStartDate = NewDate(1900, 1, 1)

// ExpenseFilter carries the optional list filters.
type ExpenseFilter struct {
	StartDate       Date
	EndDate         Date
	CategoryID      int64
	Type            ExpenseType
	IncludeUpcoming bool
}

// HasDateBound reports whether either date bound is set.
func (f ExpenseFilter) HasDateBound() bool {
	return !f.StartDate.IsEmpty() || !f.EndDate.IsEmpty()
}

// Validate rejects an inverted window.
func (f ExpenseFilter) Validate() error {
	if !f.StartDate.IsEmpty() && !f.EndDate.IsEmpty() && f.StartDate.After(f.EndDate) {
		return ErrInvalidWindow
	}
	return nil
}
