package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pennypal/internal/core"
)

const userColumns = `id, email, name, avatar_url, currency, password_hash, google_id, created_at`

func scanUser(row rowScanner) (core.User, error) {
	var (
		u        core.User
		hash     sql.NullString
		googleID sql.NullString
		created  scanTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.Currency, &hash, &googleID, &created); err != nil {
		return core.User{}, err
	}
	u.PasswordHash = hash.String
	u.GoogleID = googleID.String
	u.CreatedAt = created.Time
	return u, nil
}

func (r *SQLRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	row := r.queryRow(ctx, `INSERT INTO users (id, email, name, avatar_url, currency, password_hash, google_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+userColumns,
		u.ID, u.Email, u.Name, u.AvatarURL, u.Currency, nullString(u.PasswordHash), nullString(u.GoogleID), r.timestamp())
	created, err := scanUser(row)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", translateError(err))
	}
	return created, nil
}

func (r *SQLRepository) getUserBy(ctx context.Context, column string, value string) (core.User, error) {
	u, err := scanUser(r.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by %s: %w", column, err)
	}
	return u, nil
}

func (r *SQLRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	return r.getUserBy(ctx, "id", id)
}

func (r *SQLRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.getUserBy(ctx, "email", email)
}

func (r *SQLRepository) GetUserByGoogleID(ctx context.Context, googleID string) (core.User, error) {
	return r.getUserBy(ctx, "google_id", googleID)
}

func (r *SQLRepository) UpdateUser(ctx context.Context, u core.User) (core.User, error) {
	row := r.queryRow(ctx, `UPDATE users SET
		email = ?, name = ?, avatar_url = ?, currency = ?, password_hash = ?, google_id = ?
		WHERE id = ? RETURNING `+userColumns,
		u.Email, u.Name, u.AvatarURL, u.Currency, nullString(u.PasswordHash), nullString(u.GoogleID), u.ID)
	updated, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("update user: %w", translateError(err))
	}
	return updated, nil
}
