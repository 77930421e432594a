package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pennypal/internal/core"
)

const incomeColumns = `id, user_id, category_id, amount_cents, date, source, description, created_at, updated_at`

func scanIncome(row rowScanner) (core.Income, error) {
	var (
		i       core.Income
		created scanTime
		updated scanTime
	)
	err := row.Scan(&i.ID, &i.UserID, &i.CategoryID, &i.Amount.Cents, &i.Date, &i.Source, &i.Description, &created, &updated)
	if err != nil {
		return core.Income{}, err
	}
	i.CreatedAt = created.Time
	i.UpdatedAt = updated.Time
	return i, nil
}

func (r *SQLRepository) CreateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	now := r.timestamp()
	row := r.queryRow(ctx, `INSERT INTO incomes
		(user_id, category_id, amount_cents, date, source, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+incomeColumns,
		i.UserID, i.CategoryID, i.Amount.Cents, i.Date, i.Source, i.Description, now, now)
	created, err := scanIncome(row)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", translateError(err))
	}
	return created, nil
}

func (r *SQLRepository) GetIncome(ctx context.Context, userID string, id int64) (core.Income, error) {
	i, err := scanIncome(r.queryRow(ctx, `SELECT `+incomeColumns+` FROM incomes WHERE id = ? AND user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, core.ErrIncomeNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("get income %d: %w", id, err)
	}
	return i, nil
}

func (r *SQLRepository) UpdateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	row := r.queryRow(ctx, `UPDATE incomes SET
		category_id = ?, amount_cents = ?, date = ?, source = ?, description = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING `+incomeColumns,
		i.CategoryID, i.Amount.Cents, i.Date, i.Source, i.Description, r.timestamp(), i.ID, i.UserID)
	updated, err := scanIncome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, core.ErrIncomeNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("update income %d: %w", i.ID, translateError(err))
	}
	return updated, nil
}

func (r *SQLRepository) DeleteIncome(ctx context.Context, userID string, id int64) error {
	res, err := r.exec(ctx, `DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete income %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrIncomeNotFound
	}
	return nil
}

func (r *SQLRepository) ListIncomes(ctx context.Context, userID string, f core.IncomeFilter) ([]core.Income, error) {
	var w whereClause
	w.add("user_id = ?", userID)
	if f.CategoryID != 0 {
		w.add("category_id = ?", f.CategoryID)
	}
	if !f.StartDate.IsEmpty() {
		w.add("date >= ?", f.StartDate)
	}
	if !f.EndDate.IsEmpty() {
		w.add("date <= ?", f.EndDate)
	}

	rows, err := r.query(ctx, `SELECT `+incomeColumns+` FROM incomes WHERE `+w.String()+` ORDER BY date DESC, id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		i, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *SQLRepository) SumIncomes(ctx context.Context, userID string, start, end core.Date) (core.Money, error) {
	var cents int64
	err := r.queryRow(ctx, `SELECT CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT) FROM incomes
		WHERE user_id = ? AND date >= ? AND date <= ?`, userID, start, end).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum incomes: %w", err)
	}
	return core.Money{Cents: cents}, nil
}
