package repository

import (
	"context"
	"errors"

	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles data access for login accounts.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	SELECT u.id, u.email, u.name, u.password_hash, u.role, u.active, u.customer_id,
	       c.name, u.created_at, u.updated_at
	FROM users u
	LEFT JOIN customers c ON c.id = u.customer_id
`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Active, &u.CustomerID,
		&u.CustomerName, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns the user with the given email, or ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, userColumns+` WHERE u.email = $1`, email))
}

// GetByID returns the user with the given id, or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, userColumns+` WHERE u.id = $1`, id))
}

// List returns all users, newest first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, userColumns+` ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts a new user and fills in its generated ID and timestamps.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, role, active, customer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query, u.Email, u.Name, u.PasswordHash, u.Role, u.Active, u.CustomerID).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// UserUpdate carries the mutable user fields; nil means leave unchanged.
type UserUpdate struct {
	Email         *string
	Name          *string
	PasswordHash  *string
	Role          *string
	Active        *bool
	CustomerID    *uuid.UUID
	ClearCustomer bool
}

// Update applies the non-nil fields of upd to the user with the given id.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, upd UserUpdate) (*models.User, error) {
	query := `
		UPDATE users SET
			email = COALESCE($2, email),
			name = COALESCE($3, name),
			password_hash = COALESCE($4, password_hash),
			role = COALESCE($5, role),
			active = COALESCE($6, active),
			customer_id = CASE WHEN $8 THEN NULL ELSE COALESCE($7, customer_id) END,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, upd.Email, upd.Name, upd.PasswordHash, upd.Role, upd.Active, upd.CustomerID, upd.ClearCustomer)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
