package lifecycle

import (
	"errors"
	"testing"

	"github.com/back2u/back2u/internal/model"
	"github.com/back2u/back2u/internal/store"
)

func strp(s string) *string { return &s }

var (
	student  = Actor{UserID: 1, Role: model.RoleStudent}
	other    = Actor{UserID: 2, Role: model.RoleStudent}
	security = Actor{UserID: 3, Role: model.RoleSecurity}
)

func ownedItem() *model.Item {
	return &model.Item{ID: 10, UserID: 1, Status: model.ItemStatusOpen}
}

func TestAuthorizeItemUpdateOwnership(t *testing.T) {
	item := ownedItem()
	patch := store.ItemPatch{Description: strp("red stripe on the side")}

	if err := AuthorizeItemUpdate(student, item, patch); err != nil {
		t.Errorf("owner editing own description: %v", err)
	}
	if err := AuthorizeItemUpdate(security, item, patch); err != nil {
		t.Errorf("security editing any item: %v", err)
	}
	if err := AuthorizeItemUpdate(other, item, patch); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner edit: got %v, want ErrForbidden", err)
	}
}

func TestAuthorizeItemUpdateStatusIsSecurityOnly(t *testing.T) {
	item := ownedItem()
	patch := store.ItemPatch{Status: strp(model.ItemStatusClaimed)}

	// Even the owner may not change status.
	if err := AuthorizeItemUpdate(student, item, patch); !errors.Is(err, ErrForbidden) {
		t.Errorf("owner status change: got %v, want ErrForbidden", err)
	}
	if err := AuthorizeItemUpdate(other, item, patch); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner status change: got %v, want ErrForbidden", err)
	}
	if err := AuthorizeItemUpdate(security, item, patch); err != nil {
		t.Errorf("security status change: %v", err)
	}
}

func TestAuthorizeItemUpdateValidation(t *testing.T) {
	item := ownedItem()

	var ve *ValidationError
	err := AuthorizeItemUpdate(student, item, store.ItemPatch{Category: strp("laptop")})
	if !errors.As(err, &ve) {
		t.Errorf("bad category: got %v, want ValidationError", err)
	}

	err = AuthorizeItemUpdate(security, item, store.ItemPatch{Status: strp("open")})
	if !errors.As(err, &ve) {
		t.Errorf("lowercase status: got %v, want ValidationError", err)
	}

	err = AuthorizeItemUpdate(student, item, store.ItemPatch{DateLost: strp("31-01-2024")})
	if !errors.As(err, &ve) {
		t.Errorf("bad date: got %v, want ValidationError", err)
	}
}

func TestAuthorizeItemUpdateMissingItem(t *testing.T) {
	err := AuthorizeItemUpdate(security, nil, store.ItemPatch{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing item: got %v, want ErrNotFound", err)
	}
}

func TestAuthorizeItemStatusChange(t *testing.T) {
	item := ownedItem()

	if err := AuthorizeItemStatusChange(security, item, model.ItemStatusReturned); err != nil {
		t.Errorf("security: %v", err)
	}
	if err := AuthorizeItemStatusChange(student, item, model.ItemStatusReturned); !errors.Is(err, ErrForbidden) {
		t.Errorf("student: got %v, want ErrForbidden", err)
	}

	// Flat set: any member is reachable from any other.
	claimed := &model.Item{ID: 11, UserID: 1, Status: model.ItemStatusClaimed}
	if err := AuthorizeItemStatusChange(security, claimed, model.ItemStatusReported); err != nil {
		t.Errorf("Claimed to Reported should be allowed: %v", err)
	}

	var ve *ValidationError
	if err := AuthorizeItemStatusChange(security, item, "Archived"); !errors.As(err, &ve) {
		t.Errorf("unknown status: got %v, want ValidationError", err)
	}
}

func TestAuthorizeItemDelete(t *testing.T) {
	if err := AuthorizeItemDelete(security); err != nil {
		t.Errorf("security delete: %v", err)
	}
	if err := AuthorizeItemDelete(student); !errors.Is(err, ErrForbidden) {
		t.Errorf("student delete: got %v, want ErrForbidden", err)
	}
}

func TestValidateNewItem(t *testing.T) {
	valid := store.NewItem{
		Title: "Backpack", Category: "bag", LocationFound: "Library",
		Campus: "Main", Type: model.ItemTypeFound, Status: model.ItemStatusOpen,
		DateFound: "2024-03-10",
	}
	if err := ValidateNewItem(valid); err != nil {
		t.Errorf("valid item: %v", err)
	}

	bad := store.NewItem{Category: "laptop", Campus: "Guelph", Type: "stolen", Status: "open", DateLost: "bad"}
	err := ValidateNewItem(bad)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	// One message per violated rule: title, category, location, campus, type, status, date.
	if len(ve.Messages) != 7 {
		t.Errorf("expected 7 messages, got %d: %v", len(ve.Messages), ve.Messages)
	}
}

func TestAuthorizeClaimUpdate(t *testing.T) {
	claim := &model.Claim{ID: 20, ClaimerID: 1, Status: model.ClaimStatusPending}

	patch := store.ClaimPatch{Status: strp(model.ClaimStatusVerified)}
	if err := AuthorizeClaimUpdate(security, claim, patch); err != nil {
		t.Errorf("security update: %v", err)
	}
	if err := AuthorizeClaimUpdate(student, claim, patch); !errors.Is(err, ErrForbidden) {
		t.Errorf("claimant update: got %v, want ErrForbidden", err)
	}

	var ve *ValidationError
	err := AuthorizeClaimUpdate(security, claim, store.ClaimPatch{Status: strp("Verified")})
	if !errors.As(err, &ve) {
		t.Errorf("bad claim status: got %v, want ValidationError", err)
	}
}

func TestAuthorizeClaimDelete(t *testing.T) {
	pending := &model.Claim{ID: 20, ClaimerID: 1, Status: model.ClaimStatusPending}
	verified := &model.Claim{ID: 21, ClaimerID: 1, Status: model.ClaimStatusVerified}

	if err := AuthorizeClaimDelete(student, pending); err != nil {
		t.Errorf("claimant cancelling pending claim: %v", err)
	}
	if err := AuthorizeClaimDelete(student, verified); !errors.Is(err, ErrForbidden) {
		t.Errorf("claimant cancelling verified claim: got %v, want ErrForbidden", err)
	}
	if err := AuthorizeClaimDelete(other, pending); !errors.Is(err, ErrForbidden) {
		t.Errorf("other user deleting claim: got %v, want ErrForbidden", err)
	}
	if err := AuthorizeClaimDelete(security, verified); err != nil {
		t.Errorf("security deleting any claim: %v", err)
	}
	if err := AuthorizeClaimDelete(security, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing claim: got %v, want ErrNotFound", err)
	}
}
