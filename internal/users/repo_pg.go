package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, username, password_hash, provider, email, created_at)
VALUES ($1, $2, $3, $4, $5, now())`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Username,
		nullableString(user.PasswordHash),
		user.Provider,
		nullableString(user.Email),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, username, password_hash, provider, email, created_at
FROM users
WHERE id = $1
LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	const query = `
SELECT id, username, password_hash, provider, email, created_at
FROM users
WHERE lower(username) = lower($1)
LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, username))
}

func scanUser(row *sql.Row) (User, error) {
	var user User
	var passwordHash sql.NullString
	var email sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Username,
		&passwordHash,
		&user.Provider,
		&email,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if passwordHash.Valid {
		user.PasswordHash = passwordHash.String
	}
	if email.Valid {
		user.Email = email.String
	}
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
