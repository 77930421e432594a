package services

import (
	"context"
	"fmt"

	"pennypal/internal/core"
	"pennypal/internal/storage"
)

// IncomeInput is a create or partial update request for an income.
type IncomeInput struct {
	CategoryID  *int64      `json:"category_id"`
	Amount      *core.Money `json:"amount"`
	Date        *core.Date  `json:"date"`
	Source      *string     `json:"source"`
	Description *string     `json:"description"`
}

func (in IncomeInput) apply(i *core.Income) {
	if in.CategoryID != nil {
		i.CategoryID = *in.CategoryID
	}
	if in.Amount != nil {
		i.Amount = *in.Amount
	}
	if in.Date != nil {
		i.Date = *in.Date
	}
	if in.Source != nil {
		i.Source = *in.Source
	}
	if in.Description != nil {
		i.Description = *in.Description
	}
}

type IncomeService struct {
	store      storage.IncomeStore
	categories *CategoryService
	events     EventPublisher
}

func NewIncomeService(store storage.IncomeStore, categories *CategoryService, events EventPublisher) *IncomeService {
	return &IncomeService{store: store, categories: categories, events: events}
}

func (s *IncomeService) Create(ctx context.Context, userID string, in IncomeInput) (core.Income, error) {
	i := core.Income{UserID: userID}
	in.apply(&i)
	i.Normalize()
	if err := i.Validate(); err != nil {
		return core.Income{}, err
	}
	if _, err := s.categories.Resolve(ctx, userID, i.CategoryID, core.IncomeCategory); err != nil {
		return core.Income{}, err
	}

	created, err := s.store.CreateIncome(ctx, i)
	if err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}
	publish(ctx, s.events, userID, core.ActionCreated, core.EntityIncome, created.ID, created.Amount.Cents)
	return created, nil
}

func (s *IncomeService) Get(ctx context.Context, userID string, id int64) (core.Income, error) {
	return s.store.GetIncome(ctx, userID, id)
}

func (s *IncomeService) Update(ctx context.Context, userID string, id int64, in IncomeInput) (core.Income, error) {
	i, err := s.store.GetIncome(ctx, userID, id)
	if err != nil {
		return core.Income{}, err
	}
	previousCategory := i.CategoryID

	in.apply(&i)
	i.Normalize()
	if err := i.Validate(); err != nil {
		return core.Income{}, err
	}
	if i.CategoryID != previousCategory {
		if _, err := s.categories.Resolve(ctx, userID, i.CategoryID, core.IncomeCategory); err != nil {
			return core.Income{}, err
		}
	}

	updated, err := s.store.UpdateIncome(ctx, i)
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	publish(ctx, s.events, userID, core.ActionUpdated, core.EntityIncome, id, updated.Amount.Cents)
	return updated, nil
}

func (s *IncomeService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.store.DeleteIncome(ctx, userID, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	publish(ctx, s.events, userID, core.ActionDeleted, core.EntityIncome, id, 0)
	return nil
}

// List returns incomes ordered by date descending.
func (s *IncomeService) List(ctx context.Context, userID string, f core.IncomeFilter) ([]core.Income, error) {
	if !f.StartDate.IsEmpty() && !f.EndDate.IsEmpty() && f.StartDate.After(f.EndDate) {
		return nil, core.ErrInvalidWindow
	}
	list, err := s.store.ListIncomes(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	if list == nil {
		list = []core.Income{}
	}
	return list, nil
}
