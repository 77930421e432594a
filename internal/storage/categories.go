package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pennypal/internal/core"
)

const categoryColumns = `id, name, kind, user_id, is_custom`

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c      core.Category
		userID sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Kind, &userID, &c.IsCustom); err != nil {
		return core.Category{}, err
	}
	if userID.Valid {
		c.UserID = &userID.String
	}
	return c, nil
}

func categoryOwner(c core.Category) sql.NullString {
	if c.UserID == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *c.UserID, Valid: true}
}

func (r *SQLRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row := r.queryRow(ctx, `INSERT INTO categories (name, kind, user_id, is_custom)
		VALUES (?, ?, ?, ?) RETURNING `+categoryColumns,
		c.Name, string(c.Kind), categoryOwner(c), c.IsCustom)
	created, err := scanCategory(row)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", translateError(err))
	}
	return created, nil
}

func (r *SQLRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(r.queryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (r *SQLRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row := r.queryRow(ctx, `UPDATE categories SET name = ? WHERE id = ? RETURNING `+categoryColumns, c.Name, c.ID)
	updated, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, translateError(err))
	}
	return updated, nil
}

func (r *SQLRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.exec(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, core.ErrInvalidReference) {
			return fmt.Errorf("category %d is still referenced: %w", id, core.ErrDuplicate)
		}
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}

func (r *SQLRepository) ListCategories(ctx context.Context, userID string, kind core.CategoryKind) ([]core.Category, error) {
	rows, err := r.query(ctx, `SELECT `+categoryColumns+` FROM categories
		WHERE kind = ? AND (user_id IS NULL OR user_id = ?)
		ORDER BY name ASC, id ASC`, string(kind), userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
