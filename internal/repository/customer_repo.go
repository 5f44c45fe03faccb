package repository

import (
	"context"

	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerRepository handles data access for customers.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository creates a new customer repository.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// UpsertByEmail creates a customer keyed by its email business key, or
// updates name and phone when the email already exists.
func (r *CustomerRepository) UpsertByEmail(ctx context.Context, name, email, phone string) (uuid.UUID, error) {
	query := `
		INSERT INTO customers (name, email, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, phone = EXCLUDED.phone, updated_at = now()
		RETURNING id
	`

	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, name, email, phone).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// ListWithSites returns all customers ordered by name, each with its sites.
func (r *CustomerRepository) ListWithSites(ctx context.Context) ([]models.Customer, error) {
	query := `
		SELECT id, name, email, phone, active, created_at, updated_at
		FROM customers
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Sites = []models.Site{}
		index[c.ID] = len(customers)
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	siteQuery := `
		SELECT id, drop_point_number, address, suburb, state, postcode, customer_id, created_at, updated_at
		FROM sites
		ORDER BY drop_point_number ASC
	`

	siteRows, err := r.pool.Query(ctx, siteQuery)
	if err != nil {
		return nil, err
	}
	defer siteRows.Close()

	for siteRows.Next() {
		var s models.Site
		if err := siteRows.Scan(&s.ID, &s.DropPointNumber, &s.Address, &s.Suburb, &s.State, &s.Postcode, &s.CustomerID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[s.CustomerID]; ok {
			customers[i].Sites = append(customers[i].Sites, s)
		}
	}
	if err := siteRows.Err(); err != nil {
		return nil, err
	}

	return customers, nil
}

// Count returns the total number of customers.
func (r *CustomerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count)
	return count, err
}
