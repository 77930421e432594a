package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pennypal/internal/core"
)

func TestReportService_MonthlyReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec := env.recurring(t, catFood, 10000, core.Monthly, core.NewDate(2024, 1, 31), core.Date{})
	yearly := env.recurring(t, catFood, 2500, core.Yearly, core.NewDate(2023, 7, 1), core.NewDate(2024, 3, 10))
	late := env.oneTime(t, catTransport, 3000, core.NewDate(2024, 3, 15))
	early := env.oneTime(t, catTransport, 4500, core.NewDate(2024, 3, 5))
	env.oneTime(t, catTransport, 9999, core.NewDate(2024, 2, 29))
	env.recurring(t, catTransport, 9999, core.Monthly, core.NewDate(2024, 4, 1), core.Date{})

	start, end, err := core.ParseMonth("2024-03")
	require.NoError(t, err)
	report, err := env.reports.MonthlyReport(ctx, env.userID, start, end)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", report.MonthStart.String())
	assert.Equal(t, "2024-03-31", report.MonthEnd.String())
	assert.Equal(t, int64(10000+2500+3000+4500), report.Total.Cents)

	// each recurring expense appears once, dated at the month start
	require.Len(t, report.Items, 4)
	assert.Equal(t, rec.ID, report.Items[0].ExpenseID)
	assert.Equal(t, yearly.ID, report.Items[1].ExpenseID)
	for _, it := range report.Items[:2] {
		assert.Equal(t, "2024-03-01", it.Date.String())
		assert.True(t, it.Virtual)
	}
	assert.Equal(t, early.ID, report.Items[2].ExpenseID)
	assert.Equal(t, late.ID, report.Items[3].ExpenseID)

	require.Len(t, report.ByCategory, 2)
	assert.Equal(t, core.CategoryTotal{CategoryID: catFood, CategoryName: "Food", Total: core.Money{Cents: 12500}, Count: 2}, report.ByCategory[0])
	assert.Equal(t, core.CategoryTotal{CategoryID: catTransport, CategoryName: "Transport", Total: core.Money{Cents: 7500}, Count: 2}, report.ByCategory[1])
}

func TestReportService_CategoryTiesBreakByID(t *testing.T) {
	env := newTestEnv(t)
	env.oneTime(t, catTransport, 5000, core.NewDate(2024, 3, 1))
	env.oneTime(t, catFood, 5000, core.NewDate(2024, 3, 2))

	start, end, _ := core.ParseMonth("2024-03")
	report, err := env.reports.MonthlyReport(context.Background(), env.userID, start, end)
	require.NoError(t, err)

	require.Len(t, report.ByCategory, 2)
	assert.Equal(t, catFood, report.ByCategory[0].CategoryID)
	assert.Equal(t, catTransport, report.ByCategory[1].CategoryID)
}

func TestReportService_Deterministic(t *testing.T) {
	env := newTestEnv(t)
	env.recurring(t, catFood, 100, core.Monthly, core.NewDate(2024, 1, 1), core.Date{})
	env.oneTime(t, catTransport, 200, core.NewDate(2024, 3, 9))

	start, end, _ := core.ParseMonth("2024-03")
	first, err := env.reports.MonthlyReport(context.Background(), env.userID, start, end)
	require.NoError(t, err)
	second, err := env.reports.MonthlyReport(context.Background(), env.userID, start, end)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReportService_EmptyMonth(t *testing.T) {
	env := newTestEnv(t)
	start, end, _ := core.ParseMonth("2020-02")

	report, err := env.reports.MonthlyReport(context.Background(), env.userID, start, end)
	require.NoError(t, err)
	assert.Zero(t, report.Total.Cents)
	assert.NotNil(t, report.Items)
	assert.NotNil(t, report.ByCategory)

	_, err = env.reports.MonthlyReport(context.Background(), env.userID, end, start)
	assert.ErrorIs(t, err, core.ErrInvalidWindow)
}

func TestReportService_PDFs(t *testing.T) {
	env := newTestEnv(t)
	e := env.oneTime(t, catFood, 1234, core.NewDate(2024, 3, 9))

	start, end, _ := core.ParseMonth("2024-03")
	doc, err := env.reports.MonthlyReportPDF(context.Background(), env.userID, start, end)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))

	receipt, err := env.reports.Receipt(context.Background(), env.userID, e.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(receipt, []byte("%PDF-")))

	_, err = env.reports.Receipt(context.Background(), env.userID, 424242)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
