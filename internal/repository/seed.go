package repository

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/knowelle28/autobook/internal/domain"
)

// SeedAdmin creates the bootstrap admin account when none exists.
// Returns true when an account was created.
func (r UserRepository) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	n, err := r.CountAdmins(ctx)
	if err != nil || n > 0 {
		return false, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	hashStr := string(hash)
	_, err = r.Create(ctx, CreateUserParams{
		Name:         "Admin",
		Email:        email,
		Role:         domain.RoleAdmin,
		PasswordHash: &hashStr,
	})
	if err != nil {
		if IsDuplicate(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SeedDefaults loads the demo car-shop catalog. Idempotent: services are
// matched by name, staff by email.
func (r ServiceRepository) SeedDefaults(ctx context.Context) error {
	defaults := []domain.Service{
		{Name: "Oil Change", Description: "Full synthetic oil change with filter replacement.", DurationMinutes: 30, PriceCents: 4500},
		{Name: "Tire Rotation & Balance", Description: "Rotate and balance all four tires.", DurationMinutes: 30, PriceCents: 3000},
		{Name: "Brake Inspection", Description: "Inspect and service brake pads, rotors, and fluid.", DurationMinutes: 60, PriceCents: 8000},
		{Name: "Full Detail & Wash", Description: "Interior and exterior deep clean and polish.", DurationMinutes: 90, PriceCents: 12000},
		{Name: "Engine Diagnostics", Description: "Computer scan and full engine health check.", DurationMinutes: 45, PriceCents: 6000},
		{Name: "AC Service & Recharge", Description: "Recharge refrigerant and inspect AC system components.", DurationMinutes: 60, PriceCents: 9500},
		{Name: "Battery Test & Replace", Description: "Test battery health and replace if needed.", DurationMinutes: 20, PriceCents: 3500},
	}

	for _, s := range defaults {
		_, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO services (name, description, duration_minutes, price_cents, created_at, updated_at)
			SELECT $1,$2,$3,$4, now(), now()
			WHERE NOT EXISTS (SELECT 1 FROM services WHERE name=$1 AND deleted_at IS NULL)
		`, s.Name, s.Description, s.DurationMinutes, s.PriceCents)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r StaffRepository) SeedDefaults(ctx context.Context) error {
	defaults := []domain.Staff{
		{Name: "Mike Torres", Email: "mike@autobook.com", Specialty: "Engine & Diagnostics"},
		{Name: "Sara Al-Rashid", Email: "sara@autobook.com", Specialty: "Brakes & Tires"},
		{Name: "James Kowalski", Email: "james@autobook.com", Specialty: "Detailing & AC"},
	}

	for _, s := range defaults {
		// Idempotent: staff.email is unique.
		_, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO staff (name, email, specialty, created_at, updated_at)
			VALUES ($1,$2,$3, now(), now())
			ON CONFLICT (email) DO NOTHING
		`, s.Name, s.Email, s.Specialty)
		if err != nil {
			return err
		}
	}
	return nil
}
