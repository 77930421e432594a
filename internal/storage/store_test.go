package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"pennypal/internal/core"
	"pennypal/internal/storage"
	"pennypal/internal/storage/memory"
)

// StoreTestSuite runs the same contract against every backend.
type StoreTestSuite struct {
	suite.Suite
	open  func(t *testing.T) storage.Store
	store storage.Store
	ctx   context.Context
	user  core.User
	food  core.Category
	wage  core.Category
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.open(s.T())

	user, err := s.store.CreateUser(s.ctx, core.User{ID: "11111111-1111-1111-1111-111111111111", Email: "ada@example.com", Name: "Ada", Currency: "USD"})
	require.NoError(s.T(), err)
	s.user = user

	s.food = s.category(core.ExpenseCategory, "Food")
	s.wage = s.category(core.IncomeCategory, "Salary")
}

func (s *StoreTestSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *StoreTestSuite) category(kind core.CategoryKind, name string) core.Category {
	list, err := s.store.ListCategories(s.ctx, s.user.ID, kind)
	require.NoError(s.T(), err)
	for _, c := range list {
		if c.Name == name {
			return c
		}
	}
	s.T().Fatalf("seeded category %s/%s missing", kind, name)
	return core.Category{}
}

func (s *StoreTestSuite) oneTime(date core.Date, cents int64) core.Expense {
	e, err := s.store.CreateExpense(s.ctx, core.Expense{
		UserID: s.user.ID, CategoryID: s.food.ID, Amount: core.Money{Cents: cents},
		Type: core.OneTime, ExpenseDate: date, Description: "lunch",
	})
	require.NoError(s.T(), err)
	return e
}

func (s *StoreTestSuite) recurring(start, end core.Date, cents int64) core.Expense {
	e, err := s.store.CreateExpense(s.ctx, core.Expense{
		UserID: s.user.ID, CategoryID: s.food.ID, Amount: core.Money{Cents: cents},
		Type: core.Recurring, StartDate: start, ExpenseDate: start, EndDate: end, Frequency: core.Monthly,
	})
	require.NoError(s.T(), err)
	return e
}

func (s *StoreTestSuite) TestSeededCategories() {
	expense, err := s.store.ListCategories(s.ctx, s.user.ID, core.ExpenseCategory)
	require.NoError(s.T(), err)
	income, err := s.store.ListCategories(s.ctx, s.user.ID, core.IncomeCategory)
	require.NoError(s.T(), err)
	assert.Len(s.T(), append(expense, income...), len(storage.DefaultCategories))
	for _, c := range expense {
		assert.True(s.T(), c.IsGlobal())
		assert.False(s.T(), c.IsCustom)
	}
}

func (s *StoreTestSuite) TestExpenseRoundTrip() {
	created := s.recurring(core.NewDate(2024, 1, 31), core.NewDate(2024, 6, 30), 1999)
	assert.NotZero(s.T(), created.ID)
	assert.False(s.T(), created.CreatedAt.IsZero())

	got, err := s.store.GetExpense(s.ctx, s.user.ID, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), core.Recurring, got.Type)
	assert.Equal(s.T(), core.Monthly, got.Frequency)
	assert.Equal(s.T(), "2024-01-31", got.StartDate.String())
	assert.Equal(s.T(), "2024-06-30", got.EndDate.String())
	assert.Equal(s.T(), int64(1999), got.Amount.Cents)

	got.Amount = core.Money{Cents: 2500}
	got.EndDate = core.Date{}
	updated, err := s.store.UpdateExpense(s.ctx, got)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2500), updated.Amount.Cents)
	assert.True(s.T(), updated.EndDate.IsEmpty())

	require.NoError(s.T(), s.store.DeleteExpense(s.ctx, s.user.ID, created.ID))
	_, err = s.store.GetExpense(s.ctx, s.user.ID, created.ID)
	assert.ErrorIs(s.T(), err, core.ErrExpenseNotFound)
}

func (s *StoreTestSuite) TestExpenseOwnership() {
	e := s.oneTime(core.NewDate(2024, 1, 10), 500)
	_, err := s.store.GetExpense(s.ctx, "someone-else", e.ID)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
	assert.ErrorIs(s.T(), s.store.DeleteExpense(s.ctx, "someone-else", e.ID), core.ErrNotFound)
}

func (s *StoreTestSuite) TestInvalidReference() {
	_, err := s.store.CreateExpense(s.ctx, core.Expense{
		UserID: s.user.ID, CategoryID: 999999, Amount: core.Money{Cents: 100},
		Type: core.OneTime, ExpenseDate: core.NewDate(2024, 1, 1),
	})
	require.Error(s.T(), err)
	assert.True(s.T(), errors.Is(err, core.ErrInvalidReference), "got %v", err)
}

func (s *StoreTestSuite) TestListExpensesQuery() {
	inRange := s.oneTime(core.NewDate(2024, 1, 10), 100)
	s.oneTime(core.NewDate(2024, 2, 10), 200)
	openEnded := s.recurring(core.NewDate(2023, 6, 1), core.Date{}, 300)
	s.recurring(core.NewDate(2023, 1, 1), core.NewDate(2023, 12, 31), 400)

	q := core.BuildExpenseQuery(s.user.ID, core.ExpenseFilter{
		StartDate: core.NewDate(2024, 1, 1), EndDate: core.NewDate(2024, 1, 31),
	}, core.NewDate(2024, 6, 1).Time)
	list, err := s.store.ListExpenses(s.ctx, q)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), inRange.ID, list[0].ID, "ordered by effective date descending")
	assert.Equal(s.T(), openEnded.ID, list[1].ID)

	only, err := s.store.ListExpenses(s.ctx, q.Restrict(core.Recurring))
	require.NoError(s.T(), err)
	require.Len(s.T(), only, 1)
	assert.Equal(s.T(), openEnded.ID, only[0].ID)

	all, err := s.store.ListExpenses(s.ctx, core.BuildExpenseQuery(s.user.ID, core.ExpenseFilter{}, core.NewDate(2024, 6, 1).Time))
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 4)
}

func (s *StoreTestSuite) TestSumExpensesPolicies() {
	start, end := core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31)
	s.oneTime(core.NewDate(2024, 3, 5), 1000)
	s.recurring(core.NewDate(2023, 6, 1), core.Date{}, 500)
	s.recurring(core.NewDate(2024, 3, 2), core.NewDate(2024, 3, 20), 250)

	strict, err := s.store.SumExpenses(s.ctx, core.PeriodExpenseQuery(s.user.ID, start, end, core.StrictBothBounds))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1250), strict.Cents)

	overlap, err := s.store.SumExpenses(s.ctx, core.PeriodExpenseQuery(s.user.ID, start, end, core.LifespanOverlap))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1750), overlap.Cents)
}

func (s *StoreTestSuite) TestIncomes() {
	for _, d := range []core.Date{core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31), core.NewDate(2024, 4, 1)} {
		_, err := s.store.CreateIncome(s.ctx, core.Income{
			UserID: s.user.ID, CategoryID: s.wage.ID, Amount: core.Money{Cents: 10000}, Date: d, Source: "Acme",
		})
		require.NoError(s.T(), err)
	}

	sum, err := s.store.SumIncomes(s.ctx, s.user.ID, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(20000), sum.Cents)

	list, err := s.store.ListIncomes(s.ctx, s.user.ID, core.IncomeFilter{StartDate: core.NewDate(2024, 3, 15)})
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), "2024-04-01", list[0].Date.String())

	list[0].Source = "Globex"
	updated, err := s.store.UpdateIncome(s.ctx, list[0])
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Globex", updated.Source)

	require.NoError(s.T(), s.store.DeleteIncome(s.ctx, s.user.ID, updated.ID))
	assert.ErrorIs(s.T(), s.store.DeleteIncome(s.ctx, s.user.ID, updated.ID), core.ErrIncomeNotFound)
}

func (s *StoreTestSuite) TestCustomCategories() {
	owner := s.user.ID
	created, err := s.store.CreateCategory(s.ctx, core.Category{Name: "Pets", Kind: core.ExpenseCategory, UserID: &owner, IsCustom: true})
	require.NoError(s.T(), err)
	assert.True(s.T(), created.OwnedBy(owner))

	_, err = s.store.CreateCategory(s.ctx, core.Category{Name: "Pets", Kind: core.ExpenseCategory, UserID: &owner, IsCustom: true})
	assert.ErrorIs(s.T(), err, core.ErrDuplicate)

	other, err := s.store.ListCategories(s.ctx, "someone-else", core.ExpenseCategory)
	require.NoError(s.T(), err)
	for _, c := range other {
		assert.NotEqual(s.T(), created.ID, c.ID, "custom category leaked to another user")
	}

	created.Name = "Animals"
	renamed, err := s.store.UpdateCategory(s.ctx, created)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Animals", renamed.Name)

	_, err = s.store.CreateExpense(s.ctx, core.Expense{
		UserID: owner, CategoryID: created.ID, Amount: core.Money{Cents: 100},
		Type: core.OneTime, ExpenseDate: core.NewDate(2024, 1, 1),
	})
	require.NoError(s.T(), err)
	assert.ErrorIs(s.T(), s.store.DeleteCategory(s.ctx, created.ID), core.ErrDuplicate, "referenced category cannot be deleted")
}

func (s *StoreTestSuite) TestGlobalCategoryNamesUnique() {
	_, err := s.store.CreateCategory(s.ctx, core.Category{Name: "Food", Kind: core.ExpenseCategory})
	assert.ErrorIs(s.T(), err, core.ErrDuplicate, "seeded global name must stay unique")

	owner := s.user.ID
	_, err = s.store.CreateCategory(s.ctx, core.Category{Name: "Food", Kind: core.ExpenseCategory, UserID: &owner, IsCustom: true})
	require.NoError(s.T(), err, "a user may shadow a global name")

	_, err = s.store.CreateCategory(s.ctx, core.Category{Name: "Food", Kind: core.IncomeCategory})
	require.NoError(s.T(), err, "uniqueness is per kind")
}

func (s *StoreTestSuite) TestUsers() {
	_, err := s.store.CreateUser(s.ctx, core.User{ID: "22222222-2222-2222-2222-222222222222", Email: s.user.Email, Currency: "USD"})
	assert.ErrorIs(s.T(), err, core.ErrDuplicate)

	byEmail, err := s.store.GetUserByEmail(s.ctx, "ada@example.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.user.ID, byEmail.ID)

	byEmail.GoogleID = "g-123"
	byEmail.Currency = "EUR"
	_, err = s.store.UpdateUser(s.ctx, byEmail)
	require.NoError(s.T(), err)

	byGoogle, err := s.store.GetUserByGoogleID(s.ctx, "g-123")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "EUR", byGoogle.Currency)

	_, err = s.store.GetUser(s.ctx, "missing")
	assert.ErrorIs(s.T(), err, core.ErrUserNotFound)
}

func (s *StoreTestSuite) TestActivity() {
	for i := int64(1); i <= 3; i++ {
		_, err := s.store.RecordActivity(s.ctx, core.Activity{
			UserID: s.user.ID, Action: core.ActionCreated, Entity: core.EntityExpense, EntityID: i, AmountCents: i * 100,
		})
		require.NoError(s.T(), err)
	}
	list, err := s.store.ListActivity(s.ctx, s.user.ID, 2)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), int64(3), list[0].EntityID)
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{open: func(t *testing.T) storage.Store {
		repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "pennypal.db"))
		require.NoError(t, err)
		return repo
	}})
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{open: func(*testing.T) storage.Store {
		return memory.New()
	}})
}
