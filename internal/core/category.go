package core

import (
	"strings"
	"unicode/utf8"
)

// CategoryKind separates expense categories from income categories.
type CategoryKind string

const (
	ExpenseCategory CategoryKind = "expense"
	IncomeCategory  CategoryKind = "income"
)

// ParseCategoryKind accepts "expense" or "income"; empty means expense.
func ParseCategoryKind(s string) (CategoryKind, error) {
	switch k := CategoryKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return ExpenseCategory, nil
	case ExpenseCategory, IncomeCategory:
		return k, nil
	default:
		return "", Invalid("kind", "must be expense or income")
	}
}

// Category groups expenses or incomes. A category without a user is a global
// default visible to everybody.
type Category struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Kind     CategoryKind `json:"kind"`
	UserID   *string      `json:"user_id"`
	IsCustom bool         `json:"is_custom"`
}

// IsGlobal reports whether the category is a shared default.
func (c Category) IsGlobal() bool {
	return c.UserID == nil
}

// VisibleTo reports whether userID may reference the category.
func (c Category) VisibleTo(userID string) bool {
	return c.UserID == nil || *c.UserID == userID
}

// OwnedBy reports whether userID may modify the category.
func (c Category) OwnedBy(userID string) bool {
	return c.UserID != nil && *c.UserID == userID
}

func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	if c.Kind == "" {
		c.Kind = ExpenseCategory
	}
}

func (c Category) Validate() error {
	if c.Name == "" {
		return Invalid("name", "is required")
	}
	if utf8.RuneCountInString(c.Name) > 100 {
		return Invalid("name", "must be at most 100 characters")
	}
	if c.Kind != ExpenseCategory && c.Kind != IncomeCategory {
		return Invalid("kind", "must be expense or income")
	}
	return nil
}
