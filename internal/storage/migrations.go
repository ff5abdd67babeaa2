package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one schema change.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations are applied in order; applied versions are recorded in
// schema_migrations.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "Create profile and command tables",
		Up: `
			CREATE TABLE IF NOT EXISTS profile (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE TABLE IF NOT EXISTS command (
				profile_id INTEGER NOT NULL REFERENCES profile(id) ON DELETE CASCADE,
				ordinal INTEGER NOT NULL,
				hotkey TEXT NOT NULL DEFAULT '',
				virtual_key_code INTEGER NOT NULL DEFAULT 0,
				modifiers INTEGER NOT NULL DEFAULT 0,
				name TEXT NOT NULL DEFAULT '',
				file_path TEXT NOT NULL DEFAULT '',
				PRIMARY KEY (profile_id, ordinal)
			);
		`,
	},
	{
		Version: 2,
		Name:    "Index command chords",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_command_chord
				ON command(profile_id, virtual_key_code, modifiers);
		`,
	},
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		err := withTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.Up); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
				m.Version, m.Name,
			)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current migration version: %w", err)
	}
	return version, nil
}

func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
