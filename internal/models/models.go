package models

import (
	"time"

	"github.com/google/uuid"
)

// Role values carried in JWT claims and the users table.
const (
	RoleAdmin    = "ADMIN"
	RoleDriver   = "DRIVER"
	RoleCustomer = "CUSTOMER"
)

// User is a login account. Customer users are linked to the customer whose
// sites they may submit readings for.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	CustomerID   *uuid.UUID `json:"customer_id,omitempty"`
	CustomerName *string    `json:"customer_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Customer is a billing entity owning one or more delivery sites.
// Email is the natural business key (UNIQUE); the import pipeline keys
// customer upserts on it.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	Sites     []Site    `json:"sites,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Site is a physical delivery location. DropPointNumber is the globally
// unique business key assigned by the gas supplier.
type Site struct {
	ID              uuid.UUID `json:"id"`
	DropPointNumber string    `json:"drop_point_number"`
	Address         string    `json:"address"`
	Suburb          string    `json:"suburb"`
	State           string    `json:"state"`
	Postcode        string    `json:"postcode"`
	CustomerID      uuid.UUID `json:"customer_id"`
	Customer        *Customer `json:"customer,omitempty"`
	Tanks           []Tank    `json:"tanks,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Tank is a storage vessel at a site. Tank numbers are unique within a site,
// not globally.
type Tank struct {
	ID            uuid.UUID    `json:"id"`
	TankNumber    string       `json:"tank_number"`
	Capacity      float64      `json:"capacity"` // litres
	Product       string       `json:"product"`
	SerialNumber  string       `json:"serial_number"`
	TankType      string       `json:"tank_type"`
	SiteID        uuid.UUID    `json:"site_id"`
	LatestReading *TankReading `json:"latest_reading,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TankReading is a level measurement submitted by a user. Once exported it
// is excluded from future export batches.
type TankReading struct {
	ID              uuid.UUID  `json:"id"`
	Reading         float64    `json:"reading"`
	Percentage      *float64   `json:"percentage,omitempty"`
	EstimatedVolume *float64   `json:"estimated_volume,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	Exported        bool       `json:"exported"`
	ExportedAt      *time.Time `json:"exported_at,omitempty"`
	UserID          uuid.UUID  `json:"user_id"`
	SiteID          uuid.UUID  `json:"site_id"`
	TankID          uuid.UUID  `json:"tank_id"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ExportReading is a reading joined with the denormalized customer, site,
// tank and user fields the export spreadsheet renders.
type ExportReading struct {
	TankReading
	CustomerName    string `json:"customer_name"`
	DropPointNumber string `json:"drop_point_number"`
	SiteAddress     string `json:"site_address"`
	TankNumber      string `json:"tank_number"`
	TankCapacity    float64 `json:"tank_capacity"`
	SubmittedBy     string `json:"submitted_by"`
	SubmittedByMail string `json:"submitted_by_email"`
}

// TelemetryRow mirrors a row of the external gauge feed; drivers read these
// to plan deliveries.
type TelemetryRow struct {
	ID              uuid.UUID `json:"id"`
	DropPointNumber string    `json:"drop_point_number"`
	TankNumber      string    `json:"tank_number"`
	Reading         float64   `json:"reading"`
	Percentage      *float64  `json:"percentage,omitempty"`
	Temperature     *float64  `json:"temperature,omitempty"`
	Pressure        *float64  `json:"pressure,omitempty"`
	BatteryLevel    *float64  `json:"battery_level,omitempty"`
	SignalStrength  *int      `json:"signal_strength,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Stats holds the admin dashboard counters.
type Stats struct {
	Users         int `json:"users"`
	Customers     int `json:"customers"`
	Sites         int `json:"sites"`
	Tanks         int `json:"tanks"`
	Readings      int `json:"readings"`
	PendingExport int `json:"pending_export"`
}
