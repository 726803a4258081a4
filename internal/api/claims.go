package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/back2u/back2u/internal/lifecycle"
	"github.com/back2u/back2u/internal/model"
	"github.com/back2u/back2u/internal/store"
)

// ClaimHandler handles the item claim endpoints.
type ClaimHandler struct {
	DB  *sql.DB
	Dev bool
}

type createClaimRequest struct {
	ItemID            int64  `json:"item_id"`
	VerificationNotes string `json:"verification_notes"`
}

// Create handles POST /api/claims. Any authenticated user may claim an
// existing item; claims start pending until security verifies them.
func (h *ClaimHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ItemID == 0 {
		jsonError(w, http.StatusBadRequest, "Item ID is required")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, req.ItemID)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}

	claim, err := store.CreateClaim(r.Context(), h.DB, req.ItemID, claims.UserID, clean(req.VerificationNotes))
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	slog.Info("claim submitted", "id", claim.ID, "item", req.ItemID, "user", claims.Email)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "Claim submitted successfully. Security will verify your claim.",
		"claim":   claim,
	})
}

// Get handles GET /api/claims/{id}. Visible to the claimant and to security.
func (h *ClaimHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	claim, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if claim == nil {
		jsonError(w, http.StatusNotFound, "Claim not found")
		return
	}
	if claim.ClaimerID != claims.UserID && claims.Role != model.RoleSecurity {
		errStatus(w, lifecycle.ErrForbidden, h.Dev)
		return
	}

	jsonResponse(w, http.StatusOK, claim)
}

// MyClaims handles GET /api/claims/my-claims.
func (h *ClaimHandler) MyClaims(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	list, err := store.ListClaimsByClaimer(r.Context(), h.DB, claims.UserID)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(list),
		"data":    list,
	})
}

type claimUpdateRequest struct {
	Status            *string `json:"status"`
	VerificationNotes *string `json:"verification_notes"`
	OwnerID           *int64  `json:"owner_id"`
}

// Update handles PUT /api/claims/{id} (security only): verification outcome,
// notes, and owner assignment.
func (h *ClaimHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	var req claimUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.VerificationNotes != nil {
		notes := clean(*req.VerificationNotes)
		req.VerificationNotes = &notes
	}
	patch := store.ClaimPatch{
		Status:            req.Status,
		VerificationNotes: req.VerificationNotes,
		OwnerID:           req.OwnerID,
	}

	claim, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if err := lifecycle.AuthorizeClaimUpdate(actor(claims), claim, patch); err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	updated, err := store.UpdateClaim(r.Context(), h.DB, id, patch)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	slog.Info("claim updated", "id", id, "by", claims.Email)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Claim updated successfully",
		"claim":   updated,
	})
}

// Delete handles DELETE /api/claims/{id}. A claimant may withdraw their own
// pending claim; security may delete any claim.
func (h *ClaimHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	claim, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if err := lifecycle.AuthorizeClaimDelete(actor(claims), claim); err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	deleted, err := store.DeleteClaim(r.Context(), h.DB, id)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "Claim not found")
		return
	}

	slog.Info("claim deleted", "id", id, "by", claims.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Claim deleted successfully"})
}
