package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/back2u/back2u/internal/imaging"
	"github.com/back2u/back2u/internal/lifecycle"
	"github.com/back2u/back2u/internal/model"
	"github.com/back2u/back2u/internal/store"
)

// ItemHandler handles the lost and found item endpoints.
type ItemHandler struct {
	DB        *sql.DB
	UploadDir string
	Dev       bool
}

const defaultPageSize = 20

// listResponse is the envelope for paginated item listings.
type listResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	Pages   int           `json:"pages"`
	Data    []model.Item  `json:"data"`
}

func (h *ItemHandler) list(w http.ResponseWriter, r *http.Request, f store.ItemFilter) {
	q := r.URL.Query()

	if v := q.Get("category"); v != "" {
		f.Category = v
	}
	if v := q.Get("campus"); v != "" {
		f.Campus = v
	}
	if f.Status == "" {
		f.Status = q.Get("status")
	}
	f.Search = q.Get("search")

	limit := defaultPageSize
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	page := 1
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	f.Limit = limit
	f.Offset = (page - 1) * limit

	items, err := store.ListItems(r.Context(), h.DB, f)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	total, err := store.CountItems(r.Context(), h.DB, f)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	pages := (total + limit - 1) / limit
	jsonResponse(w, http.StatusOK, listResponse{
		Success: true,
		Count:   len(items),
		Total:   total,
		Page:    page,
		Pages:   pages,
		Data:    items,
	})
}

// List handles GET /api/items with optional type, category, campus, status
// and search filters.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	f := store.ItemFilter{Type: r.URL.Query().Get("type")}
	h.list(w, r, f)
}

// PublicFoundItems handles GET /api/items/public/found-items: the
// unauthenticated browse view, pinned to found items that are still open.
func (h *ItemHandler) PublicFoundItems(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.ItemFilter{Type: model.ItemTypeFound, Status: model.ItemStatusOpen})
}

// Get handles GET /api/items/{id}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// reportForm pulls the shared multipart fields for the two report endpoints.
// Returns false when the form could not be parsed.
func (h *ItemHandler) reportForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid form data or file too large")
		return false
	}
	return true
}

// savePhoto stores an optional uploaded photo and returns its public URL, or
// "" when no photo was attached.
func (h *ItemHandler) savePhoto(w http.ResponseWriter, r *http.Request) (string, bool) {
	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", true
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid photo upload")
		return "", false
	}
	defer file.Close()

	url, err := imaging.Store(file, h.UploadDir)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Only JPEG and PNG images are supported")
		return "", false
	}
	return url, true
}

// ReportLost handles POST /api/items/lost (multipart, optional photo).
func (h *ItemHandler) ReportLost(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if !h.reportForm(w, r) {
		return
	}

	ni := store.NewItem{
		Title:                  clean(r.FormValue("title")),
		Description:            clean(r.FormValue("description")),
		Category:               r.FormValue("category"),
		LocationFound:          clean(r.FormValue("location_found")),
		DistinguishingFeatures: clean(r.FormValue("distinguishing_features")),
		Campus:                 r.FormValue("campus"),
		DateLost:               r.FormValue("date_lost"),
		Type:                   model.ItemTypeLost,
		Status:                 model.ItemStatusReported,
		UserID:                 claims.UserID,
	}

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
	if !model.ValidDate(ni.DateLost) {
		msgs = append(msgs, "Invalid date_lost format. Use YYYY-MM-DD")
	}
	if len(msgs) > 0 {
		jsonValidationError(w, "Validation failed", msgs)
		return
	}

	url, ok := h.savePhoto(w, r)
	if !ok {
		return
	}
	ni.ImageURL = url

	item, err := store.CreateItem(r.Context(), h.DB, ni)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	slog.Info("lost item reported", "id", item.ID, "user", claims.Email)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "Lost item reported successfully",
		"item":    item,
	})
}

// ReportFound handles POST /api/items/found. Found reports open immediately
// and record today as the found date.
func (h *ItemHandler) ReportFound(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if !h.reportForm(w, r) {
		return
	}

	ni := store.NewItem{
		Title:                  clean(r.FormValue("title")),
		Description:            clean(r.FormValue("description")),
		Category:               r.FormValue("category"),
		LocationFound:          clean(r.FormValue("location_found")),
		DistinguishingFeatures: clean(r.FormValue("distinguishing_features")),
		Campus:                 r.FormValue("campus"),
		DateFound:              time.Now().Format("2006-01-02"),
		Type:                   model.ItemTypeFound,
		Status:                 model.ItemStatusOpen,
		UserID:                 claims.UserID,
	}

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
	if len(msgs) > 0 {
		jsonValidationError(w, "Validation failed", msgs)
		return
	}

	url, ok := h.savePhoto(w, r)
	if !ok {
		return
	}
	ni.ImageURL = url

	item, err := store.CreateItem(r.Context(), h.DB, ni)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	slog.Info("found item reported", "id", item.ID, "user", claims.Email)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "Found item reported successfully",
		"item":    item,
	})
}

// MyLostItems handles GET /api/items/lost/my-items.
func (h *ItemHandler) MyLostItems(w http.ResponseWriter, r *http.Request) {
	h.myItems(w, r, model.ItemTypeLost)
}

// MyFoundItems handles GET /api/items/found/my-items.
func (h *ItemHandler) MyFoundItems(w http.ResponseWriter, r *http.Request) {
	h.myItems(w, r, model.ItemTypeFound)
}

func (h *ItemHandler) myItems(w http.ResponseWriter, r *http.Request, itemType string) {
	claims := GetClaims(r.Context())

	items, err := store.ListItemsByUser(r.Context(), h.DB, claims.UserID, itemType)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

type itemUpdateRequest struct {
	Title                  *string `json:"title"`
	Description            *string `json:"description"`
	Category               *string `json:"category"`
	LocationFound          *string `json:"location_found"`
	DistinguishingFeatures *string `json:"distinguishing_features"`
	Campus                 *string `json:"campus"`
	DateLost               *string `json:"date_lost"`
	DateFound              *string `json:"date_found"`
	Type                   *string `json:"type"`
	Status                 *string `json:"status"`
	ImageURL               *string `json:"image_url"`
	UserID                 *int64  `json:"user_id"`
}

func (req *itemUpdateRequest) patch() store.ItemPatch {
	p := store.ItemPatch{
		Title:                  req.Title,
		Description:            req.Description,
		Category:               req.Category,
		LocationFound:          req.LocationFound,
		DistinguishingFeatures: req.DistinguishingFeatures,
		Campus:                 req.Campus,
		DateLost:               req.DateLost,
		DateFound:              req.DateFound,
		Type:                   req.Type,
		Status:                 req.Status,
		ImageURL:               req.ImageURL,
		UserID:                 req.UserID,
	}
	if p.Title != nil {
		v := clean(*p.Title)
		p.Title = &v
	}
	if p.Description != nil {
		v := clean(*p.Description)
		p.Description = &v
	}
	if p.LocationFound != nil {
		v := clean(*p.LocationFound)
		p.LocationFound = &v
	}
	return p
}

// Update handles PUT /api/items/{id}. Owners may edit their own item's
// descriptive fields; status changes stay with security.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req itemUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch := req.patch()

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if err := lifecycle.AuthorizeItemUpdate(actor(claims), item, patch); err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	updated, err := store.UpdateItem(r.Context(), h.DB, id, patch)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Item updated successfully",
		"item":    updated,
	})
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/items/{id}/status (security only).
func (h *ItemHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req statusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err := lifecycle.AuthorizeItemStatusChange(actor(claims), item, req.Status); err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	updated, err := store.UpdateItemStatus(r.Context(), h.DB, id, req.Status)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	slog.Info("item status updated", "id", id, "status", req.Status, "by", claims.Email)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Item status updated",
		"item":    updated,
	})
}

// Delete handles DELETE /api/items/{id} (security only). Claims on the item
// go with it.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	if err := lifecycle.AuthorizeItemDelete(actor(claims)); err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	deleted, err := store.DeleteItem(r.Context(), h.DB, id)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}

	slog.Info("item deleted", "id", id, "by", claims.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}

type securityItemRequest struct {
	Title                  string `json:"title"`
	Description            string `json:"description"`
	Category               string `json:"category"`
	LocationFound          string `json:"location_found"`
	DistinguishingFeatures string `json:"distinguishing_features"`
	Campus                 string `json:"campus"`
	DateLost               string `json:"date_lost"`
	DateFound              string `json:"date_found"`
	Type                   string `json:"type"`
	Status                 string `json:"status"`
	UserID                 int64  `json:"user_id"`
}

// SecurityCreate handles POST /api/items/security: record an item on behalf
// of a student, with full control over type and status.
func (h *ItemHandler) SecurityCreate(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	if err := lifecycle.AuthorizeSecurityItemWrite(actor(claims)); err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	var req securityItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" || req.Category == "" || req.LocationFound == "" || req.Campus == "" || req.UserID == 0 {
		jsonError(w, http.StatusBadRequest, "Missing required fields: title, category, location_found, campus, user_id")
		return
	}
	if req.Type == "" {
		req.Type = model.ItemTypeFound
	}
	if req.Status == "" {
		req.Status = model.ItemStatusReported
	}

	owner, err := store.GetUser(r.Context(), h.DB, req.UserID)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if owner == nil {
		jsonError(w, http.StatusNotFound, "User not found")
		return
	}

	ni := store.NewItem{
		Title:                  clean(req.Title),
		Description:            clean(req.Description),
		Category:               req.Category,
		LocationFound:          clean(req.LocationFound),
		DistinguishingFeatures: clean(req.DistinguishingFeatures),
		Campus:                 req.Campus,
		DateLost:               req.DateLost,
		DateFound:              req.DateFound,
		Type:                   req.Type,
		Status:                 req.Status,
		UserID:                 req.UserID,
	}
	if err := lifecycle.ValidateNewItem(ni); err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, ni)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	slog.Info("item created by security", "id", item.ID, "by", claims.Email)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "Item created successfully",
		"item":    item,
	})
}

// SecurityUpdate handles PUT /api/items/security/{id} (security only): a full
// record update including status, type, dates, and the owning user.
func (h *ItemHandler) SecurityUpdate(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	if err := lifecycle.AuthorizeSecurityItemWrite(actor(claims)); err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req itemUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch := req.patch()

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}

	if patch.UserID != nil {
		owner, err := store.GetUser(r.Context(), h.DB, *patch.UserID)
		if err != nil {
			errStatus(w, err, h.Dev)
			return
		}
		if owner == nil {
			jsonError(w, http.StatusNotFound, "User not found")
			return
		}
	}

	if err := lifecycle.AuthorizeItemUpdate(actor(claims), item, patch); err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	updated, err := store.UpdateItem(r.Context(), h.DB, id, patch)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	slog.Info("item updated by security", "id", id, "by", claims.Email)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Item updated successfully",
		"item":    updated,
	})
}

// ItemClaims handles GET /api/items/{id}/claims.
func (h *ItemHandler) ItemClaims(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}

	claims, err := store.ListClaimsByItem(r.Context(), h.DB, id)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(claims),
		"data":    claims,
	})
}
