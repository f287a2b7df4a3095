// ===============================
// internal/database/migrations.go - Episode Catalog Schema
// ===============================

package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

type Migration struct {
	Version string
	Query   string
}

func RunMigrations(db *sqlx.DB) error {
	log.Println("Running episode catalog migrations...")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version TEXT UNIQUE NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations := []Migration{
		{
			Version: "001_episodes_table",
			Query: `
				-- Episodes table - the sole persisted entity. AUTOINCREMENT keeps
				-- ids strictly increasing and never reused after deletion.
				CREATE TABLE IF NOT EXISTS episodes (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					title TEXT NOT NULL,
					description TEXT,
					audio_url TEXT NOT NULL,
					play_count INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				);
			`,
		},
		{
			Version: "002_episodes_created_index",
			Query: `
				-- Newest-first listing is the only read pattern.
				CREATE INDEX IF NOT EXISTS idx_episodes_created ON episodes(created_at DESC, id DESC);
			`,
		},
	}

	for _, migration := range migrations {
		applied, err := isMigrationApplied(db, migration.Version)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", migration.Version, err)
		}
		if applied {
			continue
		}

		if _, err := db.Exec(migration.Query); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := db.Exec("INSERT INTO migrations (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		log.Printf("Applied migration %s", migration.Version)
	}

	return nil
}

func isMigrationApplied(db *sqlx.DB, version string) (bool, error) {
	var count int
	err := db.Get(&count, "SELECT COUNT(*) FROM migrations WHERE version = ?", version)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
