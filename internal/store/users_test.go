package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/back2u/back2u/internal/db"
	"github.com/back2u/back2u/internal/model"
)

func testUser(t *testing.T, database *sql.DB, email, studentID string, role model.Role) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, NewUser{
		StudentID:    studentID,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		Campus:       "Main",
		Program:      "Computer Programming",
		PasswordHash: "not-a-real-hash",
		IsVerified:   true,
		Role:         role,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u := testUser(t, database, "jdoe1234@conestogac.on.ca", "8801234", model.RoleStudent)
	if u.Role != model.RoleStudent {
		t.Errorf("expected role student, got %q", u.Role)
	}
	if !u.IsVerified {
		t.Error("expected verified user")
	}

	byEmail, err := GetUserByEmail(ctx, database, "jdoe1234@conestogac.on.ca")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail == nil || byEmail.ID != u.ID {
		t.Errorf("GetUserByEmail returned %+v, want id %d", byEmail, u.ID)
	}

	bySID, err := GetUserByStudentID(ctx, database, "8801234")
	if err != nil {
		t.Fatalf("GetUserByStudentID: %v", err)
	}
	if bySID == nil || bySID.ID != u.ID {
		t.Errorf("GetUserByStudentID returned %+v, want id %d", bySID, u.ID)
	}
}

func TestGetUserMissing(t *testing.T) {
	database := db.NewTestDB(t)

	u, err := GetUser(context.Background(), database, 999)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil for missing user, got %+v", u)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	testUser(t, database, "dup@conestoga.ca", "8800001", model.RoleStudent)

	_, err := CreateUser(ctx, database, NewUser{
		StudentID:    "8800002",
		Email:        "dup@conestoga.ca",
		FirstName:    "Other",
		LastName:     "User",
		Campus:       "Main",
		PasswordHash: "hash",
		Role:         model.RoleStudent,
	})
	if err == nil {
		t.Error("expected unique constraint error for duplicate email")
	}

	// Original row must be unmodified.
	u, _ := GetUserByEmail(ctx, database, "dup@conestoga.ca")
	if u == nil || u.StudentID != "8800001" {
		t.Errorf("original row changed: %+v", u)
	}
}

func TestDuplicateStudentIDRejected(t *testing.T) {
	database := db.NewTestDB(t)

	testUser(t, database, "first@conestoga.ca", "8800001", model.RoleStudent)

	_, err := CreateUser(context.Background(), database, NewUser{
		StudentID:    "8800001",
		Email:        "second@conestoga.ca",
		FirstName:    "Other",
		LastName:     "User",
		Campus:       "Main",
		PasswordHash: "hash",
		Role:         model.RoleStudent,
	})
	if err == nil {
		t.Error("expected unique constraint error for duplicate student id")
	}
}

func TestUpdateUserSparsePatch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u := testUser(t, database, "patch@conestoga.ca", "8800010", model.RoleStudent)

	campus := "Doon"
	updated, err := UpdateUser(ctx, database, u.ID, UserPatch{Campus: &campus})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Campus != "Doon" {
		t.Errorf("expected campus Doon, got %q", updated.Campus)
	}
	// Untouched fields keep their values.
	if updated.FirstName != "Test" || updated.Email != "patch@conestoga.ca" {
		t.Errorf("patch touched unrelated fields: %+v", updated)
	}

	// Empty patch is a no-op returning current state.
	same, err := UpdateUser(ctx, database, u.ID, UserPatch{})
	if err != nil {
		t.Fatalf("UpdateUser (empty patch): %v", err)
	}
	if same.Campus != "Doon" {
		t.Errorf("empty patch changed row: %+v", same)
	}
}

func TestSetVerified(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, database, NewUser{
		StudentID:    "8800020",
		Email:        "unverified@conestoga.ca",
		FirstName:    "New",
		LastName:     "Student",
		Campus:       "Waterloo",
		PasswordHash: "hash",
		IsVerified:   false,
		Role:         model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.IsVerified {
		t.Fatal("expected unverified user")
	}

	verified := true
	updated, err := UpdateUser(ctx, database, u.ID, UserPatch{IsVerified: &verified})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if !updated.IsVerified {
		t.Error("expected user to be verified after patch")
	}
}

func TestDeleteUserCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reporter := testUser(t, database, "reporter@conestoga.ca", "8800030", model.RoleStudent)
	claimer := testUser(t, database, "claimer@conestoga.ca", "8800031", model.RoleStudent)

	item, err := CreateItem(ctx, database, NewItem{
		Title: "Black wallet", Category: "wallet", LocationFound: "Library",
		Campus: "Main", Type: model.ItemTypeFound, Status: model.ItemStatusOpen,
		UserID: reporter.ID,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	claim, err := CreateClaim(ctx, database, item.ID, claimer.ID, "")
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}

	// Claim names the reporter as resolved owner.
	if _, err := UpdateClaim(ctx, database, claim.ID, ClaimPatch{OwnerID: &reporter.ID}); err != nil {
		t.Fatalf("UpdateClaim: %v", err)
	}

	if err := DeleteUser(ctx, database, reporter.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	// Reporter's item cascades, and with it the claim on that item.
	gone, _ := GetItem(ctx, database, item.ID)
	if gone != nil {
		t.Error("expected item to cascade away with reporter")
	}
	goneClaim, _ := GetClaim(ctx, database, claim.ID)
	if goneClaim != nil {
		t.Error("expected claim to cascade away with item")
	}
}

func TestDeleteOwnerNullsClaimOwner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reporter := testUser(t, database, "reporter@conestoga.ca", "8800040", model.RoleStudent)
	claimer := testUser(t, database, "claimer@conestoga.ca", "8800041", model.RoleStudent)
	owner := testUser(t, database, "owner@conestoga.ca", "8800042", model.RoleStudent)

	item, _ := CreateItem(ctx, database, NewItem{
		Title: "Phone", Category: "phone", LocationFound: "Cafeteria",
		Campus: "Doon", Type: model.ItemTypeFound, Status: model.ItemStatusOpen,
		UserID: reporter.ID,
	})
	claim, _ := CreateClaim(ctx, database, item.ID, claimer.ID, "")
	UpdateClaim(ctx, database, claim.ID, ClaimPatch{OwnerID: &owner.ID})

	if err := DeleteUser(ctx, database, owner.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	got, err := GetClaim(ctx, database, claim.ID)
	if err != nil {
		t.Fatalf("GetClaim: %v", err)
	}
	if got == nil {
		t.Fatal("claim should survive owner deletion")
	}
	if got.OwnerID != nil {
		t.Errorf("expected owner_id to be nulled, got %v", *got.OwnerID)
	}
}
