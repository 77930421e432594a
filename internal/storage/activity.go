package storage

import (
	"context"
	"fmt"

	"pennypal/internal/core"
)

const activityColumns = `id, user_id, action, entity, entity_id, amount_cents, occurred_at`

// MaxActivityLimit caps ListActivity.
const MaxActivityLimit = 200

func scanActivity(row rowScanner) (core.Activity, error) {
	var (
		a  core.Activity
		at scanTime
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Action, &a.Entity, &a.EntityID, &a.AmountCents, &at); err != nil {
		return core.Activity{}, err
	}
	a.OccurredAt = at.Time
	return a, nil
}

func (r *SQLRepository) RecordActivity(ctx context.Context, a core.Activity) (core.Activity, error) {
	if a.OccurredAt.IsZero() {
		a.OccurredAt = r.timestamp()
	}
	row := r.queryRow(ctx, `INSERT INTO activity_log (user_id, action, entity, entity_id, amount_cents, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING `+activityColumns,
		a.UserID, a.Action, a.Entity, a.EntityID, a.AmountCents, a.OccurredAt.UTC())
	recorded, err := scanActivity(row)
	if err != nil {
		return core.Activity{}, fmt.Errorf("record activity: %w", translateError(err))
	}
	return recorded, nil
}

func (r *SQLRepository) ListActivity(ctx context.Context, userID string, limit int) ([]core.Activity, error) {
	limit = ClampActivityLimit(limit)
	rows, err := r.query(ctx, `SELECT `+activityColumns+` FROM activity_log
		WHERE user_id = ? ORDER BY occurred_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []core.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ClampActivityLimit maps non-positive or oversized limits to MaxActivityLimit.
func ClampActivityLimit(limit int) int {
	if limit <= 0 || limit > MaxActivityLimit {
		return MaxActivityLimit
	}
	return limit
}
