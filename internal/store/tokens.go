package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// VerificationTokenTTL is how long an email verification token stays valid.
const VerificationTokenTTL = 24 * time.Hour

// VerificationToken is a single-use email verification token row.
type VerificationToken struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CreateVerificationToken issues a new opaque verification token for a user
// and persists it with a 24h expiry.
func CreateVerificationToken(ctx context.Context, db *sql.DB, userID int64) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating verification token: %w", err)
	}
	token := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT INTO verification_tokens (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, time.Now().Add(VerificationTokenTTL),
	)
	if err != nil {
		return "", fmt.Errorf("storing verification token: %w", err)
	}

	// Opportunistically clean up expired tokens.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE expires_at < ?`, time.Now(),
	)

	return token, nil
}

// GetVerificationToken returns a stored token, or nil if unknown.
func GetVerificationToken(ctx context.Context, db *sql.DB, token string) (*VerificationToken, error) {
	vt := &VerificationToken{}
	err := db.QueryRowContext(ctx,
		`SELECT token, user_id, created_at, expires_at
		 FROM verification_tokens WHERE token = ?`, token,
	).Scan(&vt.Token, &vt.UserID, &vt.CreatedAt, &vt.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting verification token: %w", err)
	}
	return vt, nil
}

// DeleteVerificationToken removes a token. Tokens are single-use: callers
// delete on successful verification and on first expired use.
func DeleteVerificationToken(ctx context.Context, db *sql.DB, token string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("deleting verification token: %w", err)
	}
	return nil
}

// RevokeToken adds a session token's JTI to the revocation list.
func RevokeToken(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	// Opportunistically clean up expired revocations.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, time.Now(),
	)

	return nil
}

// IsTokenRevoked checks if a session token's JTI has been revoked.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return count > 0, nil
}
