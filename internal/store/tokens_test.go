package store

import (
	"context"
	"testing"
	"time"

	"github.com/back2u/back2u/internal/db"
	"github.com/back2u/back2u/internal/model"
)

func TestVerificationTokenLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := testUser(t, database, "student@conestoga.ca", "8830001", model.RoleStudent)

	token, err := CreateVerificationToken(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("CreateVerificationToken: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64-char hex token, got %d chars", len(token))
	}

	vt, err := GetVerificationToken(ctx, database, token)
	if err != nil {
		t.Fatalf("GetVerificationToken: %v", err)
	}
	if vt == nil || vt.UserID != user.ID {
		t.Fatalf("unexpected token row: %+v", vt)
	}
	ttl := time.Until(vt.ExpiresAt)
	if ttl < 23*time.Hour || ttl > 25*time.Hour {
		t.Errorf("expected ~24h expiry, got %v", ttl)
	}

	if err := DeleteVerificationToken(ctx, database, token); err != nil {
		t.Fatalf("DeleteVerificationToken: %v", err)
	}
	vt, _ = GetVerificationToken(ctx, database, token)
	if vt != nil {
		t.Error("expected token to be gone after delete")
	}
}

func TestGetVerificationTokenUnknown(t *testing.T) {
	database := db.NewTestDB(t)

	vt, err := GetVerificationToken(context.Background(), database, "no-such-token")
	if err != nil {
		t.Fatalf("GetVerificationToken: %v", err)
	}
	if vt != nil {
		t.Errorf("expected nil for unknown token, got %+v", vt)
	}
}

func TestExpiredVerificationTokensSwept(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := testUser(t, database, "student@conestoga.ca", "8830002", model.RoleStudent)

	// Insert an already-expired token directly.
	_, err := database.ExecContext(ctx,
		`INSERT INTO verification_tokens (token, user_id, expires_at) VALUES (?, ?, ?)`,
		"stale-token", user.ID, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("inserting stale token: %v", err)
	}

	// Creating a fresh token sweeps expired rows.
	if _, err := CreateVerificationToken(ctx, database, user.ID); err != nil {
		t.Fatalf("CreateVerificationToken: %v", err)
	}

	vt, _ := GetVerificationToken(ctx, database, "stale-token")
	if vt != nil {
		t.Error("expected expired token to be swept")
	}
}

func TestRevokeAndCheckToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "test-jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected token not to be revoked")
	}

	err = RevokeToken(ctx, database, "test-jti-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	revoked, err = IsTokenRevoked(ctx, database, "test-jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected token to be revoked")
	}

	revoked, _ = IsTokenRevoked(ctx, database, "test-jti-2")
	if revoked {
		t.Error("expected different token not to be revoked")
	}
}

func TestRevokeTokenIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// Revoking the same token twice should not error (INSERT OR IGNORE).
	if err := RevokeToken(ctx, database, "test-jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("first RevokeToken: %v", err)
	}
	if err := RevokeToken(ctx, database, "test-jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("second RevokeToken: %v", err)
	}
}
