package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"pennypal/internal/core"
	"pennypal/internal/storage"
)

// SummaryService computes income and expense balances. Nothing is cached;
// every call reads storage.
type SummaryService struct {
	expenses storage.ExpenseStore
	incomes  storage.IncomeStore
	policy   core.RecurringPolicy
	now      func() time.Time
}

func NewSummaryService(expenses storage.ExpenseStore, incomes storage.IncomeStore, policy core.RecurringPolicy) *SummaryService {
	if policy == "" {
		policy = core.StrictBothBounds
	}
	return &SummaryService{
		expenses: expenses,
		incomes:  incomes,
		policy:   policy,
		now:      time.Now,
	}
}

// Policy reports how recurring expenses are counted.
func (s *SummaryService) Policy() core.RecurringPolicy { return s.policy }

// Summary totals incomes and expenses in [start, end].
func (s *SummaryService) Summary(ctx context.Context, userID string, start, end core.Date) (core.PeriodSummary, error) {
	if start.IsEmpty() || end.IsEmpty() {
		return core.PeriodSummary{}, core.Invalid("start", "start and end are required")
	}
	if start.After(end) {
		return core.PeriodSummary{}, core.ErrInvalidWindow
	}

	var income, expense core.Money
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		income, err = s.incomes.SumIncomes(gctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("sum incomes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expense, err = s.expenses.SumExpenses(gctx, core.PeriodExpenseQuery(userID, start, end, s.policy))
		if err != nil {
			return fmt.Errorf("sum expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.PeriodSummary{}, err
	}
	return core.NewPeriodSummary(income, expense), nil
}

// MonthlySummary is Summary over one calendar month.
func (s *SummaryService) MonthlySummary(ctx context.Context, userID string, month, year int) (core.PeriodSummary, error) {
	start, end, err := core.MonthBounds(year, month)
	if err != nil {
		return core.PeriodSummary{}, err
	}
	return s.Summary(ctx, userID, start, end)
}

// Alert flags the current month when expenses strictly exceed income.
func (s *SummaryService) Alert(ctx context.Context, userID string) (core.BudgetAlert, error) {
	today := core.DateOf(s.now())
	sum, err := s.MonthlySummary(ctx, userID, int(today.Month()), today.Year())
	if err != nil {
		return core.BudgetAlert{}, err
	}

	if sum.TotalExpense.Cents > sum.TotalIncome.Cents {
		over := sum.TotalExpense.Sub(sum.TotalIncome)
		return core.BudgetAlert{
			Alert:   true,
			Message: fmt.Sprintf("You have exceeded your income this month by %s.", over),
		}, nil
	}
	return core.BudgetAlert{
		Alert:   false,
		Message: fmt.Sprintf("You are within budget this month with a surplus of %s.", sum.NetBalance),
	}, nil
}
