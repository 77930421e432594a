package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pennypal/internal/core"
	"pennypal/internal/pdf"
	"pennypal/internal/storage"
)

// ReportService builds monthly expense reports and the PDF exports.
type ReportService struct {
	expenses   storage.ExpenseStore
	users      storage.UserStore
	categories *CategoryService
	now        func() time.Time
}

func NewReportService(expenses storage.ExpenseStore, users storage.UserStore, categories *CategoryService) *ReportService {
	return &ReportService{
		expenses:   expenses,
		users:      users,
		categories: categories,
		now:        time.Now,
	}
}

// MonthlyReport aggregates the expenses of [monthStart, monthEnd]. A
// recurring expense whose lifespan overlaps the window contributes one item
// dated monthStart with its full amount.
func (s *ReportService) MonthlyReport(ctx context.Context, userID string, monthStart, monthEnd core.Date) (core.MonthlyReport, error) {
	if monthStart.IsEmpty() || monthEnd.IsEmpty() || monthStart.After(monthEnd) {
		return core.MonthlyReport{}, core.ErrInvalidWindow
	}

	q := core.BuildExpenseQuery(userID, core.ExpenseFilter{StartDate: monthStart, EndDate: monthEnd}, s.now())
	rows, err := s.expenses.ListExpenses(ctx, q)
	if err != nil {
		return core.MonthlyReport{}, fmt.Errorf("list report expenses: %w", err)
	}

	names, err := s.categories.Names(ctx, userID, core.ExpenseCategory)
	if err != nil {
		return core.MonthlyReport{}, err
	}

	report := core.MonthlyReport{
		MonthStart: monthStart,
		MonthEnd:   monthEnd,
		ByCategory: []core.CategoryTotal{},
		Items:      make([]core.ReportItem, 0, len(rows)),
	}
	buckets := make(map[int64]*core.CategoryTotal)

	for _, e := range rows {
		date := e.ExpenseDate
		if e.IsRecurring() {
			date = monthStart
		}
		report.Items = append(report.Items, core.ReportItem{
			ExpenseID:   e.ID,
			CategoryID:  e.CategoryID,
			Description: e.Description,
			Amount:      e.Amount,
			Date:        date,
			Type:        e.Type,
			Virtual:     e.IsRecurring(),
		})
		report.Total = report.Total.Add(e.Amount)

		b, ok := buckets[e.CategoryID]
		if !ok {
			b = &core.CategoryTotal{CategoryID: e.CategoryID, CategoryName: names[e.CategoryID]}
			buckets[e.CategoryID] = b
		}
		b.Total = b.Total.Add(e.Amount)
		b.Count++
	}

	sort.Slice(report.Items, func(i, j int) bool {
		a, b := report.Items[i], report.Items[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ExpenseID < b.ExpenseID
	})

	for _, b := range buckets {
		report.ByCategory = append(report.ByCategory, *b)
	}
	sort.Slice(report.ByCategory, func(i, j int) bool {
		a, b := report.ByCategory[i], report.ByCategory[j]
		if a.Total.Cents != b.Total.Cents {
			return a.Total.Cents > b.Total.Cents
		}
		return a.CategoryID < b.CategoryID
	})

	return report, nil
}

// MonthlyReportPDF renders MonthlyReport as a PDF document.
func (s *ReportService) MonthlyReportPDF(ctx context.Context, userID string, monthStart, monthEnd core.Date) ([]byte, error) {
	report, err := s.MonthlyReport(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	names, err := s.categories.Names(ctx, userID, core.ExpenseCategory)
	if err != nil {
		return nil, err
	}
	return pdf.RenderMonthlyReport(pdf.MonthlyReport{
		Report:        report,
		CategoryNames: names,
		UserName:      user.Name,
		Currency:      user.Currency,
		GeneratedAt:   s.now(),
	})
}

// Receipt renders a single expense as a PDF receipt.
func (s *ReportService) Receipt(ctx context.Context, userID string, expenseID int64) ([]byte, error) {
	e, err := s.expenses.GetExpense(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	categoryName := fmt.Sprintf("Category %d", e.CategoryID)
	if c, err := s.categories.Get(ctx, userID, e.CategoryID); err == nil {
		categoryName = c.Name
	}
	return pdf.RenderReceipt(pdf.Receipt{
		Expense:      e,
		CategoryName: categoryName,
		UserName:     user.Name,
		Currency:     user.Currency,
		GeneratedAt:  s.now(),
	})
}
