package storage

import (
	"context"

	"pennypal/internal/core"
)

// Ports implemented by every storage backend (SQL and memory).
type (
	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		// GetExpense returns core.ErrExpenseNotFound when the id does not
		// exist or belongs to another user.
		GetExpense(ctx context.Context, userID string, id int64) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, userID string, id int64) error
		// ListExpenses returns the matching rows ordered by effective date
		// descending, then id descending.
		ListExpenses(ctx context.Context, q core.ExpenseQuery) ([]core.Expense, error)
		SumExpenses(ctx context.Context, q core.ExpenseQuery) (core.Money, error)
	}

	IncomeStore interface {
		CreateIncome(ctx context.Context, i core.Income) (core.Income, error)
		GetIncome(ctx context.Context, userID string, id int64) (core.Income, error)
		UpdateIncome(ctx context.Context, i core.Income) (core.Income, error)
		DeleteIncome(ctx context.Context, userID string, id int64) error
		ListIncomes(ctx context.Context, userID string, f core.IncomeFilter) ([]core.Income, error)
		// SumIncomes totals incomes dated in [start, end].
		SumIncomes(ctx context.Context, userID string, start, end core.Date) (core.Money, error)
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		GetCategory(ctx context.Context, id int64) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, id int64) error
		// ListCategories returns global categories plus the user's own,
		// ordered by name.
		ListCategories(ctx context.Context, userID string, kind core.CategoryKind) ([]core.Category, error)
	}

	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUser(ctx context.Context, id string) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		GetUserByGoogleID(ctx context.Context, googleID string) (core.User, error)
		UpdateUser(ctx context.Context, u core.User) (core.User, error)
	}

	ActivityStore interface {
		RecordActivity(ctx context.Context, a core.Activity) (core.Activity, error)
		ListActivity(ctx context.Context, userID string, limit int) ([]core.Activity, error)
	}

	// Store bundles every port plus lifecycle.
	Store interface {
		ExpenseStore
		IncomeStore
		CategoryStore
		UserStore
		ActivityStore
		Ping(ctx context.Context) error
		Close() error
	}
)

// DefaultCategory is a global category seeded at startup.
type DefaultCategory struct {
	Name string
	Kind core.CategoryKind
}

// DefaultCategories mirrors the rows seeded by the SQL migrations.
var DefaultCategories = []DefaultCategory{
	{"Food", core.ExpenseCategory},
	{"Transport", core.ExpenseCategory},
	{"Housing", core.ExpenseCategory},
	{"Utilities", core.ExpenseCategory},
	{"Entertainment", core.ExpenseCategory},
	{"Health", core.ExpenseCategory},
	{"Shopping", core.ExpenseCategory},
	{"Education", core.ExpenseCategory},
	{"Subscriptions", core.ExpenseCategory},
	{"Other", core.ExpenseCategory},
	{"Salary", core.IncomeCategory},
	{"Freelance", core.IncomeCategory},
	{"Investments", core.IncomeCategory},
	{"Gifts", core.IncomeCategory},
	{"Other", core.IncomeCategory},
}
