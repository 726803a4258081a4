package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/back2u/back2u/internal/model"
)

// ClaimPatch is a sparse update: only non-nil fields are written.
type ClaimPatch struct {
	Status            *string
	VerificationNotes *string
	OwnerID           *int64
}

const claimColumns = `c.id, c.item_id, c.claimer_id, c.owner_id, c.status,
	c.verification_notes, c.created_at, c.updated_at,
	i.title, u.first_name || ' ' || u.last_name, u.email`

func scanClaim(row interface{ Scan(...any) error }) (*model.Claim, error) {
	cl := &model.Claim{}
	var ownerID sql.NullInt64
	var notes sql.NullString
	err := row.Scan(&cl.ID, &cl.ItemID, &cl.ClaimerID, &ownerID, &cl.Status,
		&notes, &cl.CreatedAt, &cl.UpdatedAt,
		&cl.ItemTitle, &cl.ClaimerName, &cl.ClaimerEmail)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		cl.OwnerID = &ownerID.Int64
	}
	cl.VerificationNotes = notes.String
	return cl, nil
}

// CreateClaim creates a pending claim by claimerID on itemID.
func CreateClaim(ctx context.Context, db *sql.DB, itemID, claimerID int64, notes string) (*model.Claim, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimer_id, status, verification_notes)
		 VALUES (?, ?, ?, ?)`,
		itemID, claimerID, model.ClaimStatusPending, nullable(notes),
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	return GetClaim(ctx, db, id)
}

// GetClaim returns a claim by ID with item and claimer details joined,
// or nil if not found.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	cl, err := scanClaim(db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims c
		 JOIN items i ON i.id = c.item_id
		 JOIN users u ON u.id = c.claimer_id
		 WHERE c.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return cl, nil
}

// ListClaimsByItem returns all claims on an item, newest first.
func ListClaimsByItem(ctx context.Context, db *sql.DB, itemID int64) ([]model.Claim, error) {
	return listClaims(ctx, db, `c.item_id = ?`, itemID)
}

// ListClaimsByClaimer returns all claims made by a user, newest first.
func ListClaimsByClaimer(ctx context.Context, db *sql.DB, claimerID int64) ([]model.Claim, error) {
	return listClaims(ctx, db, `c.claimer_id = ?`, claimerID)
}

func listClaims(ctx context.Context, db *sql.DB, cond string, arg any) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+claimColumns+` FROM claims c
		 JOIN items i ON i.id = c.item_id
		 JOIN users u ON u.id = c.claimer_id
		 WHERE `+cond+` ORDER BY c.created_at DESC, c.id DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		cl, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *cl)
	}
	return claims, rows.Err()
}

// UpdateClaim applies a sparse patch and returns the row re-read from the
// database. A patch with no set fields returns the current row unchanged.
func UpdateClaim(ctx context.Context, db *sql.DB, id int64, patch ClaimPatch) (*model.Claim, error) {
	var sets []string
	var args []any

	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.VerificationNotes != nil {
		sets = append(sets, "verification_notes = ?")
		args = append(args, *patch.VerificationNotes)
	}
	if patch.OwnerID != nil {
		sets = append(sets, "owner_id = ?")
		args = append(args, *patch.OwnerID)
	}

	if len(sets) == 0 {
		return GetClaim(ctx, db, id)
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	_, err := db.ExecContext(ctx,
		`UPDATE claims SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("updating claim: %w", err)
	}

	return GetClaim(ctx, db, id)
}

// DeleteClaim hard-deletes a claim.
func DeleteClaim(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM claims WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting claim: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting claim: %w", err)
	}
	return n > 0, nil
}
