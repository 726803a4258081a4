// Package lifecycle is the single authority for item and claim mutation
// rules: which role may write which field, whose records a caller may touch,
// and which status values are legal. Handlers route every state change
// through here so the rules hold no matter which endpoint is hit.
package lifecycle

import (
	"errors"
	"strings"

	"github.com/back2u/back2u/internal/model"
	"github.com/back2u/back2u/internal/store"
)

// Actor identifies the authenticated caller for authorization decisions.
type Actor struct {
	UserID int64
	Role   model.Role
}

// Sentinel errors mapped to HTTP statuses at the API boundary.
var (
	ErrForbidden = errors.New("not authorized")
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("already exists")
)

// ValidationError carries one message per violated rule.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Validation wraps messages into a *ValidationError, or returns nil when
// there are none.
func Validation(messages ...string) error {
	if len(messages) == 0 {
		return nil
	}
	return &ValidationError{Messages: messages}
}

// AuthorizeItemUpdate gates a general item update. Free-form fields may be
// edited by the reporting user or by security; a status change is reserved
// for security regardless of ownership. Patch values are validated against
// the closed sets.
func AuthorizeItemUpdate(actor Actor, item *model.Item, patch store.ItemPatch) error {
	if item == nil {
		return ErrNotFound
	}

	if patch.Status != nil && actor.Role != model.RoleSecurity {
		return ErrForbidden
	}
	if item.UserID != actor.UserID && actor.Role != model.RoleSecurity {
		return ErrForbidden
	}

	return validateItemPatch(patch)
}

// AuthorizeItemStatusChange gates the status-only endpoint: security only,
// and the value must be a member of the status set.
func AuthorizeItemStatusChange(actor Actor, item *model.Item, status string) error {
	if actor.Role != model.RoleSecurity {
		return ErrForbidden
	}
	if item == nil {
		return ErrNotFound
	}
	if !model.ValidItemStatus(status) {
		return Validation("Invalid status")
	}
	return nil
}

// AuthorizeItemDelete gates item deletion: security only.
func AuthorizeItemDelete(actor Actor) error {
	if actor.Role != model.RoleSecurity {
		return ErrForbidden
	}
	return nil
}

// AuthorizeSecurityItemWrite gates the full create/update endpoints that may
// set status, type, dates, and the owning user.
func AuthorizeSecurityItemWrite(actor Actor) error {
	if actor.Role != model.RoleSecurity {
		return ErrForbidden
	}
	return nil
}

// ValidateNewItem checks a new item's enum fields and dates.
func ValidateNewItem(ni store.NewItem) error {
	var msgs []string
	if ni.Title == "" {
		msgs = append(msgs, "Title is required")
	}
	if !model.ValidItemCategory(ni.Category) {
		msgs = append(msgs, "Invalid category")
	}
	if ni.LocationFound == "" {
		msgs = append(msgs, "Location is required")
	}
	if !model.ValidCampus(ni.Campus) {
		msgs = append(msgs, "Invalid campus")
	}
	if !model.ValidItemType(ni.Type) {
		msgs = append(msgs, "Invalid type")
	}
	if !model.ValidItemStatus(ni.Status) {
		msgs = append(msgs, "Invalid status")
	}
	if ni.DateLost != "" && !model.ValidDate(ni.DateLost) {
		msgs = append(msgs, "Invalid date_lost format. Use YYYY-MM-DD")
	}
	if ni.DateFound != "" && !model.ValidDate(ni.DateFound) {
		msgs = append(msgs, "Invalid date_found format. Use YYYY-MM-DD")
	}
	return Validation(msgs...)
}

func validateItemPatch(patch store.ItemPatch) error {
	var msgs []string
	if patch.Title != nil && *patch.Title == "" {
		msgs = append(msgs, "Title cannot be empty")
	}
	if patch.Category != nil && !model.ValidItemCategory(*patch.Category) {
		msgs = append(msgs, "Invalid category")
	}
	if patch.Campus != nil && !model.ValidCampus(*patch.Campus) {
		msgs = append(msgs, "Invalid campus")
	}
	if patch.Type != nil && !model.ValidItemType(*patch.Type) {
		msgs = append(msgs, "Invalid type")
	}
	if patch.Status != nil && !model.ValidItemStatus(*patch.Status) {
		msgs = append(msgs, "Invalid status")
	}
	if patch.DateLost != nil && *patch.DateLost != "" && !model.ValidDate(*patch.DateLost) {
		msgs = append(msgs, "Invalid date_lost format. Use YYYY-MM-DD")
	}
	if patch.DateFound != nil && *patch.DateFound != "" && !model.ValidDate(*patch.DateFound) {
		msgs = append(msgs, "Invalid date_found format. Use YYYY-MM-DD")
	}
	return Validation(msgs...)
}

// AuthorizeClaimUpdate gates claim status/notes/owner mutation: security only.
// The status set is flat, so any member may be set.
func AuthorizeClaimUpdate(actor Actor, claim *model.Claim, patch store.ClaimPatch) error {
	if actor.Role != model.RoleSecurity {
		return ErrForbidden
	}
	if claim == nil {
		return ErrNotFound
	}
	if patch.Status != nil && !model.ValidClaimStatus(*patch.Status) {
		return Validation("Invalid status")
	}
	return nil
}

// AuthorizeClaimDelete gates claim deletion: security may delete any claim;
// a claimant may cancel their own claim only while it is still pending.
func AuthorizeClaimDelete(actor Actor, claim *model.Claim) error {
	if claim == nil {
		return ErrNotFound
	}
	if actor.Role == model.RoleSecurity {
		return nil
	}
	if claim.ClaimerID != actor.UserID {
		return ErrForbidden
	}
	if claim.Status != model.ClaimStatusPending {
		return ErrForbidden
	}
	return nil
}
