package services

import (
	"context"
	"fmt"
	"time"

	"pennypal/internal/core"
	"pennypal/internal/recurrence"
	"pennypal/internal/storage"
)

// ExpenseInput is a create or partial update request; nil fields are left
// unchanged on update.
type ExpenseInput struct {
	CategoryID  *int64            `json:"category_id"`
	Amount      *core.Money       `json:"amount"`
	Description *string           `json:"description"`
	Type        *core.ExpenseType `json:"type"`
	ExpenseDate *core.Date        `json:"expense_date"`
	StartDate   *core.Date        `json:"start_date"`
	EndDate     *core.Date        `json:"end_date"`
	Frequency   *core.Frequency   `json:"frequency"`
}

// apply copies the set fields onto e. A change of type or start date without
// an explicit expense_date resets the base date of a recurring row.
func (in ExpenseInput) apply(e *core.Expense) {
	resetBase := false
	if in.CategoryID != nil {
		e.CategoryID = *in.CategoryID
	}
	if in.Amount != nil {
		e.Amount = *in.Amount
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.Type != nil && *in.Type != e.Type {
		e.Type = *in.Type
		resetBase = true
	}
	if in.StartDate != nil && !in.StartDate.Equal(e.StartDate) {
		e.StartDate = *in.StartDate
		resetBase = true
	}
	if in.EndDate != nil {
		e.EndDate = *in.EndDate
	}
	if in.Frequency != nil {
		e.Frequency = *in.Frequency
	}
	if in.ExpenseDate != nil {
		e.ExpenseDate = *in.ExpenseDate
	} else if resetBase && e.Type == core.Recurring {
		e.ExpenseDate = core.Date{}
	}
}

// ExpenseService owns expense CRUD and the expense list with virtual
// occurrences of recurring expenses.
type ExpenseService struct {
	store      storage.ExpenseStore
	categories *CategoryService
	events     EventPublisher
	now        func() time.Time
}

func NewExpenseService(store storage.ExpenseStore, categories *CategoryService, events EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:      store,
		categories: categories,
		events:     events,
		now:        time.Now,
	}
}

// Create validates and stores a new expense. Type defaults to ONE_TIME.
func (s *ExpenseService) Create(ctx context.Context, userID string, in ExpenseInput) (core.Expense, error) {
	e := core.Expense{UserID: userID, Type: core.OneTime}
	in.apply(&e)
	e.Normalize()
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if _, err := s.categories.Resolve(ctx, userID, e.CategoryID, core.ExpenseCategory); err != nil {
		return core.Expense{}, err
	}

	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	publish(ctx, s.events, userID, core.ActionCreated, core.EntityExpense, created.ID, created.Amount.Cents)
	return created, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID string, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, userID, id)
}

// Update applies a partial update and re-validates the whole row.
func (s *ExpenseService) Update(ctx context.Context, userID string, id int64, in ExpenseInput) (core.Expense, error) {
	e, err := s.store.GetExpense(ctx, userID, id)
	if err != nil {
		return core.Expense{}, err
	}
	previousCategory := e.CategoryID

	in.apply(&e)
	e.Normalize()
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.CategoryID != previousCategory {
		if _, err := s.categories.Resolve(ctx, userID, e.CategoryID, core.ExpenseCategory); err != nil {
			return core.Expense{}, err
		}
	}

	updated, err := s.store.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	publish(ctx, s.events, userID, core.ActionUpdated, core.EntityExpense, id, updated.Amount.Cents)
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	publish(ctx, s.events, userID, core.ActionDeleted, core.EntityExpense, id, 0)
	return nil
}

// List returns the stored expenses matching f. When f has a date bound or
// asks for upcoming occurrences, every recurring row is also expanded into
// virtual occurrences within [f.StartDate, f.EndDate].
func (s *ExpenseService) List(ctx context.Context, userID string, f core.ExpenseFilter) ([]core.LedgerEntry, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	now := s.now()

	rows, err := s.store.ListExpenses(ctx, core.BuildExpenseQuery(userID, f, now))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	entries := make([]core.LedgerEntry, 0, len(rows))
	for _, e := range rows {
		entries = append(entries, core.StoredEntry(e))
	}

	if f.IncludeUpcoming || f.HasDateBound() {
		window := recurrence.Window{Start: f.StartDate, End: f.EndDate}
		opts := recurrence.Options{IncludeUpcoming: f.IncludeUpcoming, Now: now}
		for _, e := range rows {
			if !e.IsRecurring() {
				continue
			}
			occ, err := recurrence.Occurrences(e, window, opts)
			if err != nil {
				return nil, fmt.Errorf("expand expense %d: %w", e.ID, err)
			}
			for _, v := range occ {
				entries = append(entries, core.VirtualEntry(v))
			}
		}
	}

	core.SortLedger(entries)
	return entries, nil
}
