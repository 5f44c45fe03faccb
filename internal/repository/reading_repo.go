package repository

import (
	"context"
	"time"

	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReadingRepository handles data access for tank readings.
type ReadingRepository struct {
	pool *pgxpool.Pool
}

// NewReadingRepository creates a new reading repository.
func NewReadingRepository(pool *pgxpool.Pool) *ReadingRepository {
	return &ReadingRepository{pool: pool}
}

// Create persists a new reading and fills in its generated ID.
func (r *ReadingRepository) Create(ctx context.Context, reading *models.TankReading) error {
	query := `
		INSERT INTO tank_readings
			(reading, percentage, estimated_volume, notes, submitted_at, exported, user_id, site_id, tank_id)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7, $8)
		RETURNING id, created_at
	`

	return r.pool.QueryRow(ctx, query,
		reading.Reading,
		reading.Percentage,
		reading.EstimatedVolume,
		reading.Notes,
		reading.SubmittedAt,
		reading.UserID,
		reading.SiteID,
		reading.TankID,
	).Scan(&reading.ID, &reading.CreatedAt)
}

const exportReadingColumns = `
	SELECT tr.id, tr.reading, tr.percentage, tr.estimated_volume, tr.notes,
	       tr.submitted_at, tr.exported, tr.exported_at,
	       tr.user_id, tr.site_id, tr.tank_id, tr.created_at,
	       c.name, s.drop_point_number, s.address,
	       t.tank_number, t.capacity,
	       u.name, u.email
	FROM tank_readings tr
	JOIN sites s ON s.id = tr.site_id
	JOIN customers c ON c.id = s.customer_id
	JOIN tanks t ON t.id = tr.tank_id
	JOIN users u ON u.id = tr.user_id
`

func scanExportReadings(rows pgx.Rows) ([]models.ExportReading, error) {
	var readings []models.ExportReading
	for rows.Next() {
		var er models.ExportReading
		if err := rows.Scan(
			&er.ID, &er.Reading, &er.Percentage, &er.EstimatedVolume, &er.Notes,
			&er.SubmittedAt, &er.Exported, &er.ExportedAt,
			&er.UserID, &er.SiteID, &er.TankID, &er.CreatedAt,
			&er.CustomerName, &er.DropPointNumber, &er.SiteAddress,
			&er.TankNumber, &er.TankCapacity,
			&er.SubmittedBy, &er.SubmittedByMail,
		); err != nil {
			return nil, err
		}
		readings = append(readings, er)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}

// List returns readings with denormalized customer/site/tank/user fields,
// newest first, optionally bounded by an inclusive submission-date range.
func (r *ReadingRepository) List(ctx context.Context, start, end *time.Time) ([]models.ExportReading, error) {
	query := exportReadingColumns + `
		WHERE ($1::timestamptz IS NULL OR tr.submitted_at >= $1)
		  AND ($2::timestamptz IS NULL OR tr.submitted_at <= $2)
		ORDER BY tr.submitted_at DESC
	`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExportReadings(rows)
}

// ListUnexported returns readings not yet flagged as exported, newest first,
// optionally bounded by an inclusive submission-date range.
func (r *ReadingRepository) ListUnexported(ctx context.Context, start, end *time.Time) ([]models.ExportReading, error) {
	query := exportReadingColumns + `
		WHERE tr.exported = FALSE
		  AND ($1::timestamptz IS NULL OR tr.submitted_at >= $1)
		  AND ($2::timestamptz IS NULL OR tr.submitted_at <= $2)
		ORDER BY tr.submitted_at DESC
	`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExportReadings(rows)
}

// MarkExported flags exactly the given readings as exported in one bulk
// update. Callers pass the IDs they rendered; readings created after the
// rendering query are untouched.
func (r *ReadingRepository) MarkExported(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE tank_readings
		SET exported = TRUE, exported_at = $2
		WHERE id = ANY($1)
	`, ids, at)
	return err
}

// LatestForTank returns the most recent reading for a tank, or ErrNotFound.
func (r *ReadingRepository) LatestForTank(ctx context.Context, tankID uuid.UUID) (*models.ExportReading, error) {
	query := exportReadingColumns + `
		WHERE tr.tank_id = $1
		ORDER BY tr.submitted_at DESC
		LIMIT 1
	`

	rows, err := r.pool.Query(ctx, query, tankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings, err := scanExportReadings(rows)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrNotFound
	}
	return &readings[0], nil
}

// CountUnexported returns how many readings are pending export.
func (r *ReadingRepository) CountUnexported(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tank_readings WHERE exported = FALSE`).Scan(&count)
	return count, err
}

// Count returns the total number of readings.
func (r *ReadingRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tank_readings`).Scan(&count)
	return count, err
}
