package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: listing queries filter by campus and category as well.
	`CREATE INDEX IF NOT EXISTS idx_items_category ON items(category)`,
	// Migration 2: expiry sweeps on the verification token table.
	`CREATE INDEX IF NOT EXISTS idx_verification_tokens_expiry ON verification_tokens(expires_at)`,
}

// Migrate ensures the schema exists and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
