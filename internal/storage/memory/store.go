// Package memory provides an in-process Store used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pennypal/internal/core"
	"pennypal/internal/storage"
)

// Store keeps every table in maps guarded by one RWMutex.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	expenses   map[int64]core.Expense
	incomes    map[int64]core.Income
	categories map[int64]core.Category
	users      map[string]core.User
	activity   []core.Activity
	nextID     int64
}

var _ storage.Store = (*Store)(nil)

// New returns a store seeded with the default global categories.
func New() *Store {
	s := &Store{
		now:        time.Now,
		expenses:   make(map[int64]core.Expense),
		incomes:    make(map[int64]core.Income),
		categories: make(map[int64]core.Category),
		users:      make(map[string]core.User),
	}
	for _, d := range storage.DefaultCategories {
		s.nextID++
		s.categories[s.nextID] = core.Category{ID: s.nextID, Name: d.Name, Kind: d.Kind}
	}
	return s
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// checkRefs emulates the foreign keys of the SQL schema. Caller holds mu.
func (s *Store) checkRefs(userID string, categoryID int64) error {
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("%w: user %s", core.ErrInvalidReference, userID)
	}
	if _, ok := s.categories[categoryID]; !ok {
		return fmt.Errorf("%w: category %d", core.ErrInvalidReference, categoryID)
	}
	return nil
}

// Expenses

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRefs(e.UserID, e.CategoryID); err != nil {
		return core.Expense{}, err
	}
	e.ID = s.id()
	e.CreatedAt = s.timestamp()
	e.UpdatedAt = e.CreatedAt
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) GetExpense(_ context.Context, userID string, id int64) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.expenses[e.ID]
	if !ok || old.UserID != e.UserID {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	if err := s.checkRefs(e.UserID, e.CategoryID); err != nil {
		return core.Expense{}, err
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = s.timestamp()
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return core.ErrExpenseNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, q core.ExpenseQuery) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if q.Matches(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].EffectiveDate(), out[j].EffectiveDate()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) SumExpenses(ctx context.Context, q core.ExpenseQuery) (core.Money, error) {
	list, err := s.ListExpenses(ctx, q)
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, e := range list {
		total = total.Add(e.Amount)
	}
	return total, nil
}

// Incomes

func (s *Store) CreateIncome(_ context.Context, i core.Income) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRefs(i.UserID, i.CategoryID); err != nil {
		return core.Income{}, err
	}
	i.ID = s.id()
	i.CreatedAt = s.timestamp()
	i.UpdatedAt = i.CreatedAt
	s.incomes[i.ID] = i
	return i, nil
}

func (s *Store) GetIncome(_ context.Context, userID string, id int64) (core.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.incomes[id]
	if !ok || i.UserID != userID {
		return core.Income{}, core.ErrIncomeNotFound
	}
	return i, nil
}

func (s *Store) UpdateIncome(_ context.Context, i core.Income) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.incomes[i.ID]
	if !ok || old.UserID != i.UserID {
		return core.Income{}, core.ErrIncomeNotFound
	}
	if err := s.checkRefs(i.UserID, i.CategoryID); err != nil {
		return core.Income{}, err
	}
	i.CreatedAt = old.CreatedAt
	i.UpdatedAt = s.timestamp()
	s.incomes[i.ID] = i
	return i, nil
}

func (s *Store) DeleteIncome(_ context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.incomes[id]
	if !ok || i.UserID != userID {
		return core.ErrIncomeNotFound
	}
	delete(s.incomes, id)
	return nil
}

func (s *Store) ListIncomes(_ context.Context, userID string, f core.IncomeFilter) ([]core.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Income
	for _, i := range s.incomes {
		if i.UserID == userID && f.Matches(i) {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].Date.Equal(out[b].Date) {
			return out[a].Date.After(out[b].Date)
		}
		return out[a].ID > out[b].ID
	})
	return out, nil
}

func (s *Store) SumIncomes(ctx context.Context, userID string, start, end core.Date) (core.Money, error) {
	list, err := s.ListIncomes(ctx, userID, core.IncomeFilter{StartDate: start, EndDate: end})
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, i := range list {
		total = total.Add(i.Amount)
	}
	return total, nil
}

// Categories

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.UserID != nil {
		if _, ok := s.users[*c.UserID]; !ok {
			return core.Category{}, fmt.Errorf("%w: user %s", core.ErrInvalidReference, *c.UserID)
		}
	}
	if s.duplicateCategory(c) {
		return core.Category{}, fmt.Errorf("category %q: %w", c.Name, core.ErrDuplicate)
	}
	c.ID = s.id()
	s.categories[c.ID] = c
	return c, nil
}

// duplicateCategory applies UNIQUE(kind, name) per owner, global categories
// included. Caller holds mu.
func (s *Store) duplicateCategory(c core.Category) bool {
	for _, other := range s.categories {
		if other.ID != c.ID && other.Kind == c.Kind && other.Name == c.Name && sameOwner(other.UserID, c.UserID) {
			return true
		}
	}
	return false
}

func sameOwner(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, core.ErrCategoryNotFound
	}
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.categories[c.ID]
	if !ok {
		return core.Category{}, core.ErrCategoryNotFound
	}
	old.Name = c.Name
	if s.duplicateCategory(old) {
		return core.Category{}, fmt.Errorf("category %q: %w", c.Name, core.ErrDuplicate)
	}
	s.categories[c.ID] = old
	return old, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return core.ErrCategoryNotFound
	}
	for _, e := range s.expenses {
		if e.CategoryID == id {
			return fmt.Errorf("category %d is still referenced: %w", id, core.ErrDuplicate)
		}
	}
	for _, i := range s.incomes {
		if i.CategoryID == id {
			return fmt.Errorf("category %d is still referenced: %w", id, core.ErrDuplicate)
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) ListCategories(_ context.Context, userID string, kind core.CategoryKind) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.Kind == kind && c.VisibleTo(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Users

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return core.User{}, fmt.Errorf("user %s: %w", u.ID, core.ErrDuplicate)
	}
	if err := s.checkUniqueUser(u); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = s.timestamp()
	s.users[u.ID] = u
	return u, nil
}

// checkUniqueUser applies the email and google_id unique constraints.
func (s *Store) checkUniqueUser(u core.User) error {
	for _, other := range s.users {
		if other.ID == u.ID {
			continue
		}
		if other.Email == u.Email {
			return fmt.Errorf("email %s: %w", u.Email, core.ErrDuplicate)
		}
		if u.GoogleID != "" && other.GoogleID == u.GoogleID {
			return fmt.Errorf("google account: %w", core.ErrDuplicate)
		}
	}
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) findUser(match func(core.User) bool) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return core.User{}, core.ErrUserNotFound
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	return s.findUser(func(u core.User) bool { return u.Email == email })
}

func (s *Store) GetUserByGoogleID(_ context.Context, googleID string) (core.User, error) {
	return s.findUser(func(u core.User) bool { return googleID != "" && u.GoogleID == googleID })
}

func (s *Store) UpdateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.users[u.ID]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	if err := s.checkUniqueUser(u); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = old.CreatedAt
	s.users[u.ID] = u
	return u, nil
}

// Activity

func (s *Store) RecordActivity(_ context.Context, a core.Activity) (core.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	if a.OccurredAt.IsZero() {
		a.OccurredAt = s.timestamp()
	}
	s.activity = append(s.activity, a)
	return a, nil
}

func (s *Store) ListActivity(_ context.Context, userID string, limit int) ([]core.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	limit = storage.ClampActivityLimit(limit)
	var out []core.Activity
	for _, a := range s.activity {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
