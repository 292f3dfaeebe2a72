package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations[i] upgrades the database from user_version i to i+1.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS rsvps (
		id          TEXT PRIMARY KEY,
		guest_name  TEXT NOT NULL,
		attendance  TEXT NOT NULL CHECK (attendance IN ('yes', 'no')),
		guest_count INTEGER NOT NULL DEFAULT 2,
		message     TEXT,
		created_at  TEXT NOT NULL,
		ip_address  TEXT,
		user_agent  TEXT
	);
	CREATE INDEX IF NOT EXISTS rsvps_created_at ON rsvps (created_at);`,

	`ALTER TABLE rsvps ADD COLUMN actual_guest_count INTEGER;`,
}

func userVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}

// migrate brings the database up to target. Databases already past target
// are left alone.
func migrate(ctx context.Context, db *sql.DB, target int) error {
	current, err := userVersion(ctx, db)
	if err != nil {
		return err
	}

	for v := current; v < target && v < len(migrations); v++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", v+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", v+1, err)
		}
		// PRAGMA does not accept bound parameters
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, v+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set user_version %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", v+1, err)
		}
	}
	return nil
}
