package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/back2u/back2u/internal/db"
	"github.com/back2u/back2u/internal/model"
)

func testItem(t *testing.T, database *sql.DB, userID int64) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, NewItem{
		Title: "Found wallet", Category: "wallet", LocationFound: "Library",
		Campus: "Main", Type: model.ItemTypeFound, Status: model.ItemStatusOpen,
		UserID: userID,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

func TestCreateAndGetClaim(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reporter := testUser(t, database, "reporter@conestoga.ca", "8820001", model.RoleStudent)
	claimer := testUser(t, database, "claimer@conestoga.ca", "8820002", model.RoleStudent)
	item := testItem(t, database, reporter.ID)

	claim, err := CreateClaim(ctx, database, item.ID, claimer.ID, "it has my student card inside")
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if claim.Status != model.ClaimStatusPending {
		t.Errorf("expected pending status, got %q", claim.Status)
	}
	if claim.OwnerID != nil {
		t.Errorf("expected nil owner on new claim, got %v", *claim.OwnerID)
	}
	if claim.ItemTitle != "Found wallet" || claim.ClaimerEmail != "claimer@conestoga.ca" {
		t.Errorf("expected joined fields, got %+v", claim)
	}
}

func TestUpdateClaimVerification(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reporter := testUser(t, database, "reporter@conestoga.ca", "8820003", model.RoleStudent)
	claimer := testUser(t, database, "claimer@conestoga.ca", "8820004", model.RoleStudent)
	item := testItem(t, database, reporter.ID)
	claim, _ := CreateClaim(ctx, database, item.ID, claimer.ID, "")

	status := model.ClaimStatusVerified
	notes := "matched description of contents"
	updated, err := UpdateClaim(ctx, database, claim.ID, ClaimPatch{
		Status:            &status,
		VerificationNotes: &notes,
		OwnerID:           &claimer.ID,
	})
	if err != nil {
		t.Fatalf("UpdateClaim: %v", err)
	}
	if updated.Status != model.ClaimStatusVerified {
		t.Errorf("expected verified status, got %q", updated.Status)
	}
	if updated.VerificationNotes != notes {
		t.Errorf("expected notes %q, got %q", notes, updated.VerificationNotes)
	}
	if updated.OwnerID == nil || *updated.OwnerID != claimer.ID {
		t.Errorf("expected owner %d, got %v", claimer.ID, updated.OwnerID)
	}
}

func TestListClaims(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reporter := testUser(t, database, "reporter@conestoga.ca", "8820005", model.RoleStudent)
	claimer1 := testUser(t, database, "claimer1@conestoga.ca", "8820006", model.RoleStudent)
	claimer2 := testUser(t, database, "claimer2@conestoga.ca", "8820007", model.RoleStudent)
	item := testItem(t, database, reporter.ID)
	other := testItem(t, database, reporter.ID)

	CreateClaim(ctx, database, item.ID, claimer1.ID, "")
	CreateClaim(ctx, database, item.ID, claimer2.ID, "")
	CreateClaim(ctx, database, other.ID, claimer1.ID, "")

	byItem, err := ListClaimsByItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("ListClaimsByItem: %v", err)
	}
	if len(byItem) != 2 {
		t.Errorf("expected 2 claims on item, got %d", len(byItem))
	}

	byClaimer, err := ListClaimsByClaimer(ctx, database, claimer1.ID)
	if err != nil {
		t.Fatalf("ListClaimsByClaimer: %v", err)
	}
	if len(byClaimer) != 2 {
		t.Errorf("expected 2 claims by claimer1, got %d", len(byClaimer))
	}
}

func TestDeleteClaim(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reporter := testUser(t, database, "reporter@conestoga.ca", "8820008", model.RoleStudent)
	claimer := testUser(t, database, "claimer@conestoga.ca", "8820009", model.RoleStudent)
	item := testItem(t, database, reporter.ID)
	claim, _ := CreateClaim(ctx, database, item.ID, claimer.ID, "")

	deleted, err := DeleteClaim(ctx, database, claim.ID)
	if err != nil {
		t.Fatalf("DeleteClaim: %v", err)
	}
	if !deleted {
		t.Fatal("expected claim to be deleted")
	}

	got, _ := GetClaim(ctx, database, claim.ID)
	if got != nil {
		t.Error("expected nil for deleted claim")
	}

	deleted, _ = DeleteClaim(ctx, database, claim.ID)
	if deleted {
		t.Error("second delete should report not found")
	}
}
