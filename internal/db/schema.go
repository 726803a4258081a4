package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    student_id    TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE,
    first_name    TEXT NOT NULL,
    last_name     TEXT NOT NULL,
    campus        TEXT NOT NULL,
    program       TEXT,
    password_hash TEXT NOT NULL,
    is_verified   INTEGER NOT NULL DEFAULT 0,
    role          TEXT NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'security')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id             INTEGER PRIMARY KEY,
    title          TEXT NOT NULL,
    category       TEXT NOT NULL CHECK (category IN
        ('wallet', 'phone', 'keys', 'id', 'clothing', 'bag', 'textbook', 'electronics', 'other')),
    description    TEXT,
    location_found TEXT NOT NULL,
    campus         TEXT NOT NULL,
    type           TEXT NOT NULL DEFAULT 'found' CHECK (type IN ('lost', 'found')),
    status         TEXT NOT NULL DEFAULT 'Reported' CHECK (status IN
        ('Reported', 'Open', 'Claimed', 'Returned', 'Disposed', 'Done', 'Pending', 'Verified')),
    distinguishing_features TEXT,
    date_lost      TEXT,
    date_found     TEXT,
    image_url      TEXT,
    user_id        INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_user ON items(user_id);
CREATE INDEX IF NOT EXISTS idx_items_listing ON items(type, status, campus);

CREATE TABLE IF NOT EXISTS claims (
    id                 INTEGER PRIMARY KEY,
    item_id            INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    claimer_id         INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    owner_id           INTEGER REFERENCES users(id) ON DELETE SET NULL,
    status             TEXT NOT NULL DEFAULT 'pending' CHECK (status IN
        ('pending', 'verified', 'rejected', 'completed')),
    verification_notes TEXT,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_claims_item ON claims(item_id);
CREATE INDEX IF NOT EXISTS idx_claims_claimer ON claims(claimer_id);

CREATE TABLE IF NOT EXISTS verification_tokens (
    token      TEXT PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
