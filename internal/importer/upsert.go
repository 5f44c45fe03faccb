package importer

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence surface the import pipeline drives. Each method
// is an idempotent create-or-update keyed by the stated business identity:
// customer email, site drop-point number, (site, tank-number) pair. The
// production implementation lives in internal/repository.
type Store interface {
	UpsertCustomer(ctx context.Context, name, email, phone string) (uuid.UUID, error)
	UpsertSite(ctx context.Context, dropPoint, address, suburb, state, postcode string, customerID uuid.UUID) (uuid.UUID, error)
	UpsertTank(ctx context.Context, siteID uuid.UUID, tankNumber string, capacity float64, product, serialNumber, tankType string) (uuid.UUID, error)
}

// applyRecord upserts one normalized record. Ordering within a row is
// load-bearing: the site references the customer and each tank references
// the site, so customer → site → tanks must run sequentially. Each upsert
// is its own implicit transaction; a tank failure after customer and site
// succeeded leaves that row partially applied, which is the accepted cost
// of per-row isolation.
func applyRecord(ctx context.Context, store Store, rec *Record) error {
	customerID, err := store.UpsertCustomer(ctx, rec.CustomerName, rec.Email, rec.Phone)
	if err != nil {
		return err
	}

	siteID, err := store.UpsertSite(ctx, rec.DropPoint, rec.Address, rec.Suburb, rec.State, rec.Postcode, customerID)
	if err != nil {
		return err
	}

	for _, tank := range rec.Tanks {
		if _, err := store.UpsertTank(ctx, siteID, tank.TankNumber, tank.Capacity, rec.Product, rec.SerialNumber, rec.TankType); err != nil {
			return err
		}
	}

	return nil
}
