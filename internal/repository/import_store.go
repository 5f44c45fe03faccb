package repository

import (
	"context"

	"github.com/google/uuid"
)

// ImportStore adapts the customer, site and tank repositories to the upsert
// surface the import pipeline drives. Each upsert runs in its own implicit
// transaction.
type ImportStore struct {
	customers *CustomerRepository
	sites     *SiteRepository
	tanks     *TankRepository
}

// NewImportStore creates an ImportStore over the three entity repositories.
func NewImportStore(customers *CustomerRepository, sites *SiteRepository, tanks *TankRepository) *ImportStore {
	return &ImportStore{customers: customers, sites: sites, tanks: tanks}
}

func (s *ImportStore) UpsertCustomer(ctx context.Context, name, email, phone string) (uuid.UUID, error) {
	return s.customers.UpsertByEmail(ctx, name, email, phone)
}

func (s *ImportStore) UpsertSite(ctx context.Context, dropPoint, address, suburb, state, postcode string, customerID uuid.UUID) (uuid.UUID, error) {
	return s.sites.UpsertByDropPoint(ctx, dropPoint, address, suburb, state, postcode, customerID)
}

func (s *ImportStore) UpsertTank(ctx context.Context, siteID uuid.UUID, tankNumber string, capacity float64, product, serialNumber, tankType string) (uuid.UUID, error) {
	return s.tanks.Upsert(ctx, siteID, tankNumber, capacity, product, serialNumber, tankType)
}
