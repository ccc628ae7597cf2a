package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/shared"
)

const userColumns = "id, username, email, password, is_admin, is_manager"

// UserRepository implements [models.Repository] for user [models.User] persistence.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database and sets its ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `INSERT INTO users (username, email, password, is_admin, is_manager) VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.IsAdmin, user.IsManager)
	if err != nil {
		return insertErr("user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}
	user.ID = id
	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return r.scanOne(row, fmt.Sprint(id))
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return r.scanOne(row, email)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return r.scanOne(row, username)
}

// Update modifies an existing user in the database
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `
		UPDATE users
		SET username = ?, email = ?, password = ?, is_admin = ?, is_manager = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.IsAdmin, user.IsManager, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user: %v", shared.ErrConflict, err)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOne(result, "user", user.ID)
}

// UpdatePassword replaces the stored password hash for a user
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE users SET password = ? WHERE id = ?", hash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return expectOne(result, "user", id)
}

// Delete removes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOne(result, "user", id)
}

// List retrieves all users matching the given criteria.
//
// Supported criteria: "is_admin" (bool), "is_manager" (bool).
func (r *UserRepository) List(ctx context.Context, criteria map[string]any) ([]*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE 1 = 1"
	args := []any{}

	if admin, ok := criteria["is_admin"].(bool); ok {
		query += " AND is_admin = ?"
		args = append(args, admin)
	}
	if manager, ok := criteria["is_manager"].(bool); ok {
		query += " AND is_manager = ?"
		args = append(args, manager)
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return users, nil
}

func (r *UserRepository) scanOne(row *sql.Row, key string) (*models.User, error) {
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsManager); err != nil {
		return nil, err
	}
	return &u, nil
}
