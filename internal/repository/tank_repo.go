package repository

import (
	"context"
	"errors"

	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TankDetail is a tank joined with its site and owning customer, used when
// submitting readings (capacity for the percentage calculation, customer
// and site fields for the notification email).
type TankDetail struct {
	models.Tank
	DropPointNumber string
	SiteAddress     string
	CustomerName    string
}

// TankRepository handles data access for tanks.
type TankRepository struct {
	pool *pgxpool.Pool
}

// NewTankRepository creates a new tank repository.
func NewTankRepository(pool *pgxpool.Pool) *TankRepository {
	return &TankRepository{pool: pool}
}

// Upsert creates a tank keyed by the (site, tank-number) pair, or updates
// its capacity and descriptive fields when the pair already exists.
func (r *TankRepository) Upsert(ctx context.Context, siteID uuid.UUID, tankNumber string, capacity float64, product, serialNumber, tankType string) (uuid.UUID, error) {
	query := `
		INSERT INTO tanks (site_id, tank_number, capacity, product, serial_number, tank_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (site_id, tank_number) DO UPDATE
		SET capacity = EXCLUDED.capacity,
		    product = EXCLUDED.product,
		    serial_number = EXCLUDED.serial_number,
		    tank_type = EXCLUDED.tank_type,
		    updated_at = now()
		RETURNING id
	`

	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, siteID, tankNumber, capacity, product, serialNumber, tankType).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Count returns the total number of tanks.
func (r *TankRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tanks`).Scan(&count)
	return count, err
}

// GetDetail returns a tank with the site and customer fields denormalized.
func (r *TankRepository) GetDetail(ctx context.Context, id uuid.UUID) (*TankDetail, error) {
	query := `
		SELECT t.id, t.tank_number, t.capacity, t.product, t.serial_number, t.tank_type,
		       t.site_id, t.created_at, t.updated_at,
		       s.drop_point_number, s.address, c.name
		FROM tanks t
		JOIN sites s ON s.id = t.site_id
		JOIN customers c ON c.id = s.customer_id
		WHERE t.id = $1
	`

	var d TankDetail
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.TankNumber, &d.Capacity, &d.Product, &d.SerialNumber, &d.TankType,
		&d.SiteID, &d.CreatedAt, &d.UpdatedAt,
		&d.DropPointNumber, &d.SiteAddress, &d.CustomerName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
