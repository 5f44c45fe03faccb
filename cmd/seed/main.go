package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fuelsight/tank-telemetry/internal/config"
	"github.com/fuelsight/tank-telemetry/internal/db"
	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/fuelsight/tank-telemetry/internal/repository"
	"github.com/fuelsight/tank-telemetry/pkg/auth"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Seeds a development database with demo accounts, one customer with a site
// and two tanks, and a handful of telemetry rows. Safe to run repeatedly.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	siteRepo := repository.NewSiteRepository(pool)
	tankRepo := repository.NewTankRepository(pool)
	telemetryRepo := repository.NewTelemetryRepository(pool)

	customerID, err := customerRepo.UpsertByEmail(ctx, "Demo Gas Customer", "customer@lpgreadings.au", "0400 000 001")
	if err != nil {
		slog.Error("failed to seed customer", "error", err)
		os.Exit(1)
	}

	siteID, err := siteRepo.UpsertByDropPoint(ctx, "DP-001", "1 Depot Road", "Melbourne", "VIC", "3000", customerID)
	if err != nil {
		slog.Error("failed to seed site", "error", err)
		os.Exit(1)
	}

	for _, t := range []struct {
		number   string
		capacity float64
	}{
		{"T1", 5000},
		{"T2", 3000},
	} {
		if _, err := tankRepo.Upsert(ctx, siteID, t.number, t.capacity, "LPG", "", "Above Ground"); err != nil {
			slog.Error("failed to seed tank", "tank", t.number, "error", err)
			os.Exit(1)
		}
	}

	seedUser(ctx, userRepo, "admin@lpgreadings.au", "Admin", "admin123!", models.RoleAdmin, nil)
	seedUser(ctx, userRepo, "driver@lpgreadings.au", "Demo Driver", "driver123!", models.RoleDriver, nil)
	seedUser(ctx, userRepo, "customer@lpgreadings.au", "Demo Customer", "customer123!", models.RoleCustomer, &customerID)

	seedTelemetry(ctx, telemetryRepo)

	slog.Info("seed complete")
}

func seedUser(ctx context.Context, repo *repository.UserRepository, email, name, password, role string, customerID *uuid.UUID) {
	if existing, err := repo.GetByEmail(ctx, email); err == nil && existing != nil {
		slog.Info("user already exists, skipping", "email", email)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("failed to hash password", "email", email, "error", err)
		os.Exit(1)
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CustomerID:   customerID,
	}
	if err := repo.Create(ctx, user); err != nil {
		slog.Error("failed to seed user", "email", email, "error", err)
		os.Exit(1)
	}
	slog.Info("seeded user", "email", email, "role", role)
}

func seedTelemetry(ctx context.Context, repo *repository.TelemetryRepository) {
	now := time.Now()
	rows := []models.TelemetryRow{
		{DropPointNumber: "DP-001", TankNumber: "T1", Reading: 3750, Percentage: ptr(75.0), Temperature: ptr(18.5), BatteryLevel: ptr(92.0), SignalStrength: intPtr(4), Timestamp: now.Add(-2 * time.Hour)},
		{DropPointNumber: "DP-001", TankNumber: "T1", Reading: 3700, Percentage: ptr(74.0), Temperature: ptr(19.0), BatteryLevel: ptr(92.0), SignalStrength: intPtr(4), Timestamp: now.Add(-1 * time.Hour)},
		{DropPointNumber: "DP-001", TankNumber: "T2", Reading: 900, Percentage: ptr(30.0), Temperature: ptr(18.0), BatteryLevel: ptr(78.0), SignalStrength: intPtr(3), Timestamp: now.Add(-30 * time.Minute)},
	}

	for i := range rows {
		if err := repo.Insert(ctx, &rows[i]); err != nil {
			slog.Error("failed to seed telemetry row", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("seeded telemetry rows", "count", len(rows))
}

func ptr(f float64) *float64 { return &f }
func intPtr(i int) *int      { return &i }
