package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/o.rides/internal/db"
	"github.com/Simplici0/o.rides/internal/fare"
	"github.com/Simplici0/o.rides/internal/money"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	Pricing       fare.PricingConfig
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way: it creates the admin
// user once and mirrors the rate table into the reporting reference tables.
func Run(ctx context.Context, database *sql.DB, cfg Config) (Stats, error) {
	stats := Stats{}
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		if err := seedAdmin(ctx, tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
			return err
		}
		for _, f := range cfg.Pricing.VehicleFeatures {
			if err := syncVehicleFeature(ctx, tx, f, &stats); err != nil {
				return err
			}
		}
		for _, tier := range cfg.Pricing.SupportWorkerTiers {
			if err := syncSupportWorkerTier(ctx, tx, tier, &stats); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("seed: %w", err)
	}
	return stats, nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func syncVehicleFeature(ctx context.Context, tx *sql.Tx, f fare.VehicleFeature, stats *Stats) error {
	var (
		name, description string
		surcharge         int64
	)
	err := tx.QueryRowContext(ctx, `SELECT name, description, surcharge_pence FROM vehicle_features WHERE id = ?`, f.ID).
		Scan(&name, &description, &surcharge)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO vehicle_features (id, name, description, surcharge_pence)
			VALUES (?, ?, ?, ?)
		`, f.ID, f.Name, f.Description, money.Pence(f.Surcharge)); err != nil {
			return fmt.Errorf("insert vehicle feature %s: %w", f.ID, err)
		}
		stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("check vehicle feature %s: %w", f.ID, err)
	}

	if name == f.Name && description == f.Description && surcharge == money.Pence(f.Surcharge) {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE vehicle_features
		SET name = ?, description = ?, surcharge_pence = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, f.Name, f.Description, money.Pence(f.Surcharge), f.ID); err != nil {
		return fmt.Errorf("update vehicle feature %s: %w", f.ID, err)
	}
	stats.Updates++
	return nil
}

func syncSupportWorkerTier(ctx context.Context, tx *sql.Tx, tier fare.SupportWorkerTier, stats *Stats) error {
	var (
		rate        int64
		description string
	)
	err := tx.QueryRowContext(ctx, `SELECT hourly_rate_pence, description FROM support_worker_tiers WHERE worker_count = ?`, tier.Count).
		Scan(&rate, &description)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO support_worker_tiers (worker_count, hourly_rate_pence, description)
			VALUES (?, ?, ?)
		`, tier.Count, money.Pence(tier.HourlyRate), tier.Description); err != nil {
			return fmt.Errorf("insert support worker tier %d: %w", tier.Count, err)
		}
		stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("check support worker tier %d: %w", tier.Count, err)
	}

	if rate == money.Pence(tier.HourlyRate) && description == tier.Description {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE support_worker_tiers
		SET hourly_rate_pence = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE worker_count = ?
	`, money.Pence(tier.HourlyRate), tier.Description, tier.Count); err != nil {
		return fmt.Errorf("update support worker tier %d: %w", tier.Count, err)
	}
	stats.Updates++
	return nil
}
