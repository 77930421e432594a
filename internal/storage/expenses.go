package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"pennypal/internal/core"
)

const expenseColumns = `id, user_id, category_id, amount_cents, description, type,
	expense_date, start_date, end_date, frequency, last_processed, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e         core.Expense
		frequency sql.NullString
		created   scanTime
		updated   scanTime
	)
	err := row.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Amount.Cents, &e.Description, &e.Type,
		&e.ExpenseDate, &e.StartDate, &e.EndDate, &frequency, &e.LastProcessed, &created, &updated)
	if err != nil {
		return core.Expense{}, err
	}
	e.Frequency = core.Frequency(frequency.String)
	e.CreatedAt = created.Time
	e.UpdatedAt = updated.Time
	return e, nil
}

func (r *SQLRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	now := r.timestamp()
	row := r.queryRow(ctx, `INSERT INTO expenses
		(user_id, category_id, amount_cents, description, type, expense_date, start_date, end_date, frequency, last_processed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+expenseColumns,
		e.UserID, e.CategoryID, e.Amount.Cents, e.Description, string(e.Type),
		e.ExpenseDate, e.StartDate, e.EndDate, nullFrequency(e.Frequency), e.LastProcessed, now, now)

	created, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", translateError(err))
	}

	slog.DebugContext(ctx, "Expense saved",
		"id", created.ID,
		"type", created.Type,
		"amount_cents", created.Amount.Cents,
		"dialect", r.dialect)
	return created, nil
}

func (r *SQLRepository) GetExpense(ctx context.Context, userID string, id int64) (core.Expense, error) {
	row := r.queryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

func (r *SQLRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	row := r.queryRow(ctx, `UPDATE expenses SET
		category_id = ?, amount_cents = ?, description = ?, type = ?, expense_date = ?,
		start_date = ?, end_date = ?, frequency = ?, last_processed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING `+expenseColumns,
		e.CategoryID, e.Amount.Cents, e.Description, string(e.Type), e.ExpenseDate,
		e.StartDate, e.EndDate, nullFrequency(e.Frequency), e.LastProcessed, r.timestamp(),
		e.ID, e.UserID)

	updated, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", e.ID, translateError(err))
	}
	return updated, nil
}

func (r *SQLRepository) DeleteExpense(ctx context.Context, userID string, id int64) error {
	res, err := r.exec(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrExpenseNotFound
	}
	return nil
}

func (r *SQLRepository) ListExpenses(ctx context.Context, q core.ExpenseQuery) ([]core.Expense, error) {
	where, args, err := renderExpenseQuery(q)
	if err != nil {
		return nil, err
	}
	rows, err := r.query(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE `+where+
		` ORDER BY COALESCE(expense_date, start_date) DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) SumExpenses(ctx context.Context, q core.ExpenseQuery) (core.Money, error) {
	where, args, err := renderExpenseQuery(q)
	if err != nil {
		return core.Money{}, err
	}
	var cents int64
	err = r.queryRow(ctx, `SELECT CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT) FROM expenses WHERE `+where, args...).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}
