package repository

import (
	"context"

	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TelemetryRepository handles data access for gauge-feed telemetry rows.
type TelemetryRepository struct {
	pool *pgxpool.Pool
}

// NewTelemetryRepository creates a new telemetry repository.
func NewTelemetryRepository(pool *pgxpool.Pool) *TelemetryRepository {
	return &TelemetryRepository{pool: pool}
}

// List returns the latest telemetry rows, newest first, capped at limit.
// search matches drop point or tank number as a case-insensitive substring;
// dropPoint filters on an exact drop point.
func (r *TelemetryRepository) List(ctx context.Context, search, dropPoint string, limit int) ([]models.TelemetryRow, error) {
	if limit < 1 {
		limit = 100
	}

	query := `
		SELECT id, drop_point_number, tank_number, reading, percentage,
		       temperature, pressure, battery_level, signal_strength, timestamp
		FROM telemetry_data
		WHERE ($1 = '' OR drop_point_number ILIKE '%' || $1 || '%' OR tank_number ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR drop_point_number = $2)
		ORDER BY timestamp DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, search, dropPoint, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var data []models.TelemetryRow
	for rows.Next() {
		var t models.TelemetryRow
		if err := rows.Scan(
			&t.ID, &t.DropPointNumber, &t.TankNumber, &t.Reading, &t.Percentage,
			&t.Temperature, &t.Pressure, &t.BatteryLevel, &t.SignalStrength, &t.Timestamp,
		); err != nil {
			return nil, err
		}
		data = append(data, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// Insert stores one telemetry row.
func (r *TelemetryRepository) Insert(ctx context.Context, t *models.TelemetryRow) error {
	query := `
		INSERT INTO telemetry_data
			(drop_point_number, tank_number, reading, percentage, temperature,
			 pressure, battery_level, signal_strength, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.pool.QueryRow(ctx, query,
		t.DropPointNumber, t.TankNumber, t.Reading, t.Percentage, t.Temperature,
		t.Pressure, t.BatteryLevel, t.SignalStrength, t.Timestamp,
	).Scan(&t.ID)
}
