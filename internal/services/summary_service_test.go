package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pennypal/internal/core"
)

func seedMarch(t *testing.T, env *testEnv) {
	env.income(t, 100000, core.NewDate(2024, 3, 10))
	env.income(t, 5000, core.NewDate(2024, 4, 1))
	env.oneTime(t, catFood, 30000, core.NewDate(2024, 3, 5))
	env.recurring(t, catFood, 20000, core.Monthly, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	env.recurring(t, catTransport, 15000, core.Monthly, core.NewDate(2024, 1, 1), core.Date{})
}

func TestSummaryService_StrictPolicy(t *testing.T) {
	env := newTestEnv(t)
	seedMarch(t, env)

	sum, err := env.summary.MonthlySummary(context.Background(), env.userID, 3, 2024)
	require.NoError(t, err)

	assert.Equal(t, int64(100000), sum.TotalIncome.Cents)
	// open-ended recurring expenses are not counted
	assert.Equal(t, int64(50000), sum.TotalExpense.Cents)
	assert.Equal(t, int64(50000), sum.NetBalance.Cents)
}

func TestSummaryService_LifespanOverlapPolicy(t *testing.T) {
	env := newTestEnv(t)
	env.summary = NewSummaryService(env.store, env.store, core.LifespanOverlap)
	seedMarch(t, env)

	sum, err := env.summary.Summary(context.Background(), env.userID, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	require.NoError(t, err)
	assert.Equal(t, int64(65000), sum.TotalExpense.Cents)
	assert.Equal(t, core.LifespanOverlap, env.summary.Policy())
}

func TestSummaryService_NegativeBalance(t *testing.T) {
	env := newTestEnv(t)
	env.income(t, 1000, core.NewDate(2024, 2, 1))
	env.oneTime(t, catFood, 2500, core.NewDate(2024, 2, 2))

	sum, err := env.summary.Summary(context.Background(), env.userID, core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, int64(-1500), sum.NetBalance.Cents)
	assert.True(t, sum.NetBalance.IsNegative())
}

func TestSummaryService_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.summary.Summary(ctx, env.userID, core.NewDate(2024, 2, 1), core.NewDate(2024, 1, 1))
	assert.ErrorIs(t, err, core.ErrInvalidWindow)

	_, err = env.summary.Summary(ctx, env.userID, core.Date{}, core.NewDate(2024, 1, 1))
	assert.Equal(t, core.OutcomeValidationFailed, core.OutcomeOf(err))

	_, err = env.summary.MonthlySummary(ctx, env.userID, 13, 2024)
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

func TestSummaryService_Alert(t *testing.T) {
	tests := []struct {
		name     string
		income   int64
		expense  int64
		alert    bool
		contains string
	}{
		{"overspent", 1000, 1500, true, "by 5.00"},
		{"surplus", 2000, 1500, false, "surplus of 5.00"},
		{"exactly even", 1500, 1500, false, "surplus of 0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			// fixedNow is in June 2024
			env.income(t, tt.income, core.NewDate(2024, 6, 1))
			env.oneTime(t, catFood, tt.expense, core.NewDate(2024, 6, 2))

			got, err := env.summary.Alert(context.Background(), env.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.alert, got.Alert)
			assert.Contains(t, got.Message, tt.contains)
		})
	}
}
