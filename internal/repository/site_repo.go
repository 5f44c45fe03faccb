package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SiteFilter narrows site listings. DropPoint and CustomerName are matched
// as case-insensitive substrings.
type SiteFilter struct {
	CustomerID   *uuid.UUID
	DropPoint    string
	CustomerName string
}

// SiteRepository handles data access for delivery sites.
type SiteRepository struct {
	pool *pgxpool.Pool
}

// NewSiteRepository creates a new site repository.
func NewSiteRepository(pool *pgxpool.Pool) *SiteRepository {
	return &SiteRepository{pool: pool}
}

// UpsertByDropPoint creates a site keyed by its drop-point number, or
// updates the address fields and reassigns the owning customer when the
// drop point already exists.
func (r *SiteRepository) UpsertByDropPoint(ctx context.Context, dropPoint, address, suburb, state, postcode string, customerID uuid.UUID) (uuid.UUID, error) {
	query := `
		INSERT INTO sites (drop_point_number, address, suburb, state, postcode, customer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (drop_point_number) DO UPDATE
		SET address = EXCLUDED.address,
		    suburb = EXCLUDED.suburb,
		    state = EXCLUDED.state,
		    postcode = EXCLUDED.postcode,
		    customer_id = EXCLUDED.customer_id,
		    updated_at = now()
		RETURNING id
	`

	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, dropPoint, address, suburb, state, postcode, customerID).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// List returns sites with their owning customer, optionally filtered.
func (r *SiteRepository) List(ctx context.Context, filter SiteFilter) ([]models.Site, error) {
	query := `
		SELECT s.id, s.drop_point_number, s.address, s.suburb, s.state, s.postcode,
		       s.customer_id, s.created_at, s.updated_at,
		       c.id, c.name, c.email, c.phone, c.active, c.created_at, c.updated_at
		FROM sites s
		JOIN customers c ON c.id = s.customer_id
		WHERE ($1::uuid IS NULL OR s.customer_id = $1)
		  AND ($2 = '' OR s.drop_point_number ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR c.name ILIKE '%' || $3 || '%')
		ORDER BY s.drop_point_number ASC
	`

	rows, err := r.pool.Query(ctx, query, filter.CustomerID, filter.DropPoint, filter.CustomerName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []models.Site
	for rows.Next() {
		var s models.Site
		var c models.Customer
		if err := rows.Scan(
			&s.ID, &s.DropPointNumber, &s.Address, &s.Suburb, &s.State, &s.Postcode,
			&s.CustomerID, &s.CreatedAt, &s.UpdatedAt,
			&c.ID, &c.Name, &c.Email, &c.Phone, &c.Active, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		s.Customer = &c
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sites, nil
}

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// GetByID returns one site with its customer, tanks, and each tank's latest
// reading.
func (r *SiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	query := `
		SELECT s.id, s.drop_point_number, s.address, s.suburb, s.state, s.postcode,
		       s.customer_id, s.created_at, s.updated_at,
		       c.id, c.name, c.email, c.phone, c.active, c.created_at, c.updated_at
		FROM sites s
		JOIN customers c ON c.id = s.customer_id
		WHERE s.id = $1
	`

	var s models.Site
	var c models.Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.DropPointNumber, &s.Address, &s.Suburb, &s.State, &s.Postcode,
		&s.CustomerID, &s.CreatedAt, &s.UpdatedAt,
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.Customer = &c

	tankQuery := `
		SELECT t.id, t.tank_number, t.capacity, t.product, t.serial_number, t.tank_type,
		       t.site_id, t.created_at, t.updated_at,
		       r.id, r.reading, r.percentage, r.estimated_volume, r.submitted_at
		FROM tanks t
		LEFT JOIN LATERAL (
			SELECT id, reading, percentage, estimated_volume, submitted_at
			FROM tank_readings
			WHERE tank_id = t.id
			ORDER BY submitted_at DESC
			LIMIT 1
		) r ON TRUE
		WHERE t.site_id = $1
		ORDER BY t.tank_number ASC
	`

	rows, err := r.pool.Query(ctx, tankQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	s.Tanks = []models.Tank{}
	for rows.Next() {
		var t models.Tank
		var readingID *uuid.UUID
		var reading, percentage, volume *float64
		var submittedAt *time.Time
		if err := rows.Scan(
			&t.ID, &t.TankNumber, &t.Capacity, &t.Product, &t.SerialNumber, &t.TankType,
			&t.SiteID, &t.CreatedAt, &t.UpdatedAt,
			&readingID, &reading, &percentage, &volume, &submittedAt,
		); err != nil {
			return nil, err
		}
		if readingID != nil && reading != nil && submittedAt != nil {
			t.LatestReading = &models.TankReading{
				ID:              *readingID,
				Reading:         *reading,
				Percentage:      percentage,
				EstimatedVolume: volume,
				SubmittedAt:     *submittedAt,
				TankID:          t.ID,
				SiteID:          s.ID,
			}
		}
		s.Tanks = append(s.Tanks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Count returns the total number of sites.
func (r *SiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sites`).Scan(&count)
	return count, err
}
