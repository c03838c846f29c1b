package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to Postgres...")
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection established")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			address TEXT NOT NULL,
			bin_type TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS bins (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES users(id),
			location TEXT NOT NULL,
			bin_type TEXT NOT NULL,
			capacity INT NOT NULL,
			fill_level INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id SERIAL PRIMARY KEY,
			bin_id INT NOT NULL REFERENCES bins(id),
			alert_type TEXT NOT NULL,
			message TEXT NOT NULL,
			is_resolved BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			id SERIAL PRIMARY KEY,
			key TEXT NOT NULL UNIQUE,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bins_user_id ON bins(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_bin_id ON alerts(bin_id)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_is_resolved ON alerts(is_resolved)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// SeedSettings inserts the bootstrap configuration unless the keys already exist.
// The alertThreshold seed (75) is intentionally different from the engine's
// compiled-in fallback (70); the engine fallback only applies when a setting
// row has never existed at all.
func SeedSettings(db *sqlx.DB) error {
	defaults := []struct{ key, value string }{
		{"alertThreshold", "75"},
		{"criticalThreshold", "85"},
		{"adminEmail", "thetownet@gmail.com"},
		{"updateInterval", "5"},
		{"dataRetention", "30"},
	}

	for _, d := range defaults {
		_, err := db.Exec(`
			INSERT INTO settings (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO NOTHING
		`, d.key, d.value)
		if err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", d.key, err)
		}
	}

	log.Println("✓ Settings seeded")
	return nil
}
