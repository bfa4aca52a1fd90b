package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"smartgrid/internal/models"
)

// UserRepository handles persistence of account records.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository returns repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, password_hash, created_at, updated_at, last_login, login_count, partition_key`

// Insert persists a new account record.
func (r *UserRepository) Insert(ctx context.Context, u *models.User) error {
	if r.db == nil {
		return fmt.Errorf("failed to create user: %w", ErrNotConfigured)
	}
	const query = `
		INSERT INTO users (id, first_name, last_name, email, password_hash, created_at, updated_at, last_login, login_count, partition_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Email,
		u.PasswordHash,
		u.CreatedAt,
		u.UpdatedAt,
		u.LastLogin,
		u.LoginCount,
		u.PartitionKey,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail fetches an account by its lower-cased email, or nil when no
// account matches.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to find user by email: %w", ErrNotConfigured)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	return r.getOne(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

// GetByID fetches an account by identifier. The physical layout groups
// accounts by email domain, so this is a filtered scan on the id column
// rather than a keyed lookup.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to find user by id: %w", ErrNotConfigured)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return r.getOne(ctx, query, id)
}

// Replace writes the full account record back under its id.
func (r *UserRepository) Replace(ctx context.Context, u *models.User) error {
	if r.db == nil {
		return fmt.Errorf("failed to update user: %w", ErrNotConfigured)
	}
	const query = `
		UPDATE users
		SET first_name = $2,
		    last_name = $3,
		    email = $4,
		    password_hash = $5,
		    updated_at = $6,
		    last_login = $7,
		    login_count = $8,
		    partition_key = $9
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Email,
		u.PasswordHash,
		u.UpdatedAt,
		u.LastLogin,
		u.LoginCount,
		u.PartitionKey,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes an account by id. A missing id reports false, not an
// error.
func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	if r.db == nil {
		return false, fmt.Errorf("failed to delete user: %w", ErrNotConfigured)
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return affected > 0, nil
}

// List returns a page of accounts, most recently created first.
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", ErrNotConfigured)
	}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	return scanUsers(rows)
}

// ListActiveSince returns accounts whose last login is at or after the
// cutoff, most recent first.
func (r *UserRepository) ListActiveSince(ctx context.Context, cutoff time.Time) ([]models.User, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve active users: %w", ErrNotConfigured)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE last_login >= $1 ORDER BY last_login DESC`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve active users: %w", err)
	}
	return scanUsers(rows)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastLogin,
		&u.LoginCount,
		&u.PartitionKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func scanUsers(rows *sql.Rows) ([]models.User, error) {
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID,
			&u.FirstName,
			&u.LastName,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
			&u.UpdatedAt,
			&u.LastLogin,
			&u.LoginCount,
			&u.PartitionKey,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}
