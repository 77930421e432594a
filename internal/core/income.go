package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Income is a stored income row. Incomes do not recur.
type Income struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	CategoryID  int64     `json:"category_id"`
	Amount      Money     `json:"amount"`
	Date        Date      `json:"date"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (i *Income) Normalize() {
	i.Source = strings.TrimSpace(i.Source)
	i.Description = strings.TrimSpace(i.Description)
}

func (i Income) Validate() error {
	if i.UserID == "" {
		return Invalid("user_id", "is required")
	}
	if i.CategoryID <= 0 {
		return Invalid("category_id", "is required")
	}
	if err := i.Amount.Validate(); err != nil {
		return Invalid("amount", "must be greater than zero")
	}
	if i.Date.IsEmpty() {
		return Invalid("date", "is required")
	}
	if i.Source == "" {
		return Invalid("source", "is required")
	}
	if utf8.RuneCountInString(i.Source) > 200 {
		return Invalid("source", "must be at most 200 characters")
	}
	if utf8.RuneCountInString(i.Description) > 500 {
		return Invalid("description", "must be at most 500 characters")
	}
	return nil
}

// IncomeFilter carries the optional income list filters.
type IncomeFilter struct {
	StartDate  Date
	EndDate    Date
	CategoryID int64
}

// Matches reports whether i satisfies the filter.
func (f IncomeFilter) Matches(i Income) bool {
	if f.CategoryID != 0 && i.CategoryID != f.CategoryID {
		return false
	}
	return i.Date.Within(f.StartDate, f.EndDate)
}
