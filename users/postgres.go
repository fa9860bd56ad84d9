package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"stockroom/models"
)

// PostgresDirectory reads credentials from the app_users table.
type PostgresDirectory struct {
	pool *pgxpool.Pool
	cost int
}

func NewPostgresDirectory(pool *pgxpool.Pool, opts ...Option) *PostgresDirectory {
	o := buildOptions(opts)
	return &PostgresDirectory{pool: pool, cost: o.cost}
}

// EnsureSchema creates the app_users table when it is missing.
func (d *PostgresDirectory) EnsureSchema(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS app_users (
			username      TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create app_users: %w", err)
	}
	return nil
}

func (d *PostgresDirectory) FindUser(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := d.pool.QueryRow(ctx,
		`SELECT username, password_hash, role FROM app_users WHERE username = $1`,
		username,
	).Scan(&u.Username, &u.PasswordHash, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (d *PostgresDirectory) AddUser(ctx context.Context, username, password, role string) (bool, error) {
	hash, err := hashPassword(password, d.cost)
	if err != nil {
		return false, err
	}

	tag, err := d.pool.Exec(ctx,
		`INSERT INTO app_users (username, password_hash, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO NOTHING`,
		username, hash, role,
	)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
