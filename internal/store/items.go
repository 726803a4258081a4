package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/back2u/back2u/internal/model"
)

// NewItem holds the fields required to create an item row.
type NewItem struct {
	Title                  string
	Category               string
	Description            string
	LocationFound          string
	Campus                 string
	Type                   string
	Status                 string
	DistinguishingFeatures string
	DateLost               string
	DateFound              string
	ImageURL               string
	UserID                 int64
}

// ItemPatch is a sparse update: only non-nil fields are written.
type ItemPatch struct {
	Title                  *string
	Category               *string
	Description            *string
	LocationFound          *string
	Campus                 *string
	Type                   *string
	Status                 *string
	DistinguishingFeatures *string
	DateLost               *string
	DateFound              *string
	ImageURL               *string
	UserID                 *int64
}

// ItemFilter selects items for listing. Zero-valued fields are ignored;
// Search matches title or description case-insensitively.
type ItemFilter struct {
	Type     string
	Category string
	Campus   string
	Status   string
	Search   string
	Limit    int
	Offset   int
}

const itemColumns = `i.id, i.title, i.category, i.description, i.location_found, i.campus,
	i.type, i.status, i.distinguishing_features, i.date_lost, i.date_found,
	i.image_url, i.user_id, i.created_at, i.updated_at,
	u.first_name, u.last_name, u.email`

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	it := &model.Item{}
	var description, features, dateLost, dateFound, imageURL sql.NullString
	err := row.Scan(&it.ID, &it.Title, &it.Category, &description, &it.LocationFound,
		&it.Campus, &it.Type, &it.Status, &features, &dateLost, &dateFound,
		&imageURL, &it.UserID, &it.CreatedAt, &it.UpdatedAt,
		&it.FirstName, &it.LastName, &it.UserEmail)
	if err != nil {
		return nil, err
	}
	it.Description = description.String
	it.DistinguishingFeatures = features.String
	it.DateLost = dateLost.String
	it.DateFound = dateFound.String
	it.ImageURL = imageURL.String
	return it, nil
}

// CreateItem creates a new item and returns the stored row.
func CreateItem(ctx context.Context, db *sql.DB, ni NewItem) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (title, category, description, location_found, campus, type,
		                    status, distinguishing_features, date_lost, date_found, image_url, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ni.Title, ni.Category, nullable(ni.Description), ni.LocationFound, ni.Campus,
		ni.Type, ni.Status, nullable(ni.DistinguishingFeatures),
		nullable(ni.DateLost), nullable(ni.DateFound), nullable(ni.ImageURL), ni.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID with reporter details joined, or nil if not found.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	it, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items i JOIN users u ON u.id = i.user_id
		 WHERE i.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return it, nil
}

// filterClause builds the WHERE clause shared by ListItems and CountItems.
func filterClause(f ItemFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Type != "" {
		conds = append(conds, "i.type = ?")
		args = append(args, f.Type)
	}
	if f.Category != "" {
		conds = append(conds, "i.category = ?")
		args = append(args, f.Category)
	}
	if f.Campus != "" {
		conds = append(conds, "i.campus = ?")
		args = append(args, f.Campus)
	}
	if f.Status != "" {
		conds = append(conds, "i.status = ?")
		args = append(args, f.Status)
	}
	if f.Search != "" {
		conds = append(conds, "(i.title LIKE ? OR i.description LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListItems returns items matching the filter, newest first, with pagination.
func ListItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, error) {
	where, args := filterClause(f)
	query := `SELECT ` + itemColumns + ` FROM items i JOIN users u ON u.id = i.user_id` +
		where + ` ORDER BY i.created_at DESC, i.id DESC`

	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, f.Offset)
		}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// CountItems returns the total number of items matching the filter,
// ignoring pagination.
func CountItems(ctx context.Context, db *sql.DB, f ItemFilter) (int, error) {
	where, args := filterClause(f)
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items i`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return count, nil
}

// ListItemsByUser returns a user's items, optionally restricted to one type,
// newest first.
func ListItemsByUser(ctx context.Context, db *sql.DB, userID int64, itemType string) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i JOIN users u ON u.id = i.user_id
		 WHERE i.user_id = ?`
	args := []any{userID}
	if itemType != "" {
		query += ` AND i.type = ?`
		args = append(args, itemType)
	}
	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing user items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// UpdateItem applies a sparse patch and returns the row re-read from the
// database. A patch with no set fields returns the current row unchanged.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, patch ItemPatch) (*model.Item, error) {
	var sets []string
	var args []any

	set := func(col string, val any) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.LocationFound != nil {
		set("location_found", *patch.LocationFound)
	}
	if patch.Campus != nil {
		set("campus", *patch.Campus)
	}
	if patch.Type != nil {
		set("type", *patch.Type)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.DistinguishingFeatures != nil {
		set("distinguishing_features", *patch.DistinguishingFeatures)
	}
	if patch.DateLost != nil {
		set("date_lost", *patch.DateLost)
	}
	if patch.DateFound != nil {
		set("date_found", *patch.DateFound)
	}
	if patch.ImageURL != nil {
		set("image_url", *patch.ImageURL)
	}
	if patch.UserID != nil {
		set("user_id", *patch.UserID)
	}

	if len(sets) == 0 {
		return GetItem(ctx, db, id)
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	_, err := db.ExecContext(ctx,
		`UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// UpdateItemStatus sets only the status field.
func UpdateItemStatus(ctx context.Context, db *sql.DB, id int64, status string) (*model.Item, error) {
	return UpdateItem(ctx, db, id, ItemPatch{Status: &status})
}

// DeleteItem hard-deletes an item. Its claims cascade away with it.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return n > 0, nil
}
