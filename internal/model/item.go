package model

import (
	"regexp"
	"time"
)

// Item represents a reported lost or found item.
type Item struct {
	ID                     int64     `json:"id"`
	Title                  string    `json:"title"`
	Category               string    `json:"category"`
	Description            string    `json:"description,omitempty"`
	LocationFound          string    `json:"location_found"`
	Campus                 string    `json:"campus"`
	Type                   string    `json:"type"`
	Status                 string    `json:"status"`
	DistinguishingFeatures string    `json:"distinguishing_features,omitempty"`
	DateLost               string    `json:"date_lost,omitempty"`
	DateFound              string    `json:"date_found,omitempty"`
	ImageURL               string    `json:"image_url,omitempty"`
	UserID                 int64     `json:"user_id"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`

	// Joined reporter fields (not always populated).
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// Item types.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item statuses. The set is flat: any authorized writer may set any member.
const (
	ItemStatusReported = "Reported"
	ItemStatusOpen     = "Open"
	ItemStatusClaimed  = "Claimed"
	ItemStatusReturned = "Returned"
	ItemStatusDisposed = "Disposed"
	ItemStatusDone     = "Done"
	ItemStatusPending  = "Pending"
	ItemStatusVerified = "Verified"
)

// ItemStatuses lists every valid item status.
var ItemStatuses = []string{
	ItemStatusReported, ItemStatusOpen, ItemStatusClaimed, ItemStatusReturned,
	ItemStatusDisposed, ItemStatusDone, ItemStatusPending, ItemStatusVerified,
}

// ItemCategories is the closed set of item categories.
var ItemCategories = []string{
	"wallet", "phone", "keys", "id", "clothing", "bag", "textbook", "electronics", "other",
}

// ValidItemStatus reports whether status is a member of the status set.
func ValidItemStatus(status string) bool {
	for _, s := range ItemStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ValidItemCategory reports whether category is a known category.
func ValidItemCategory(category string) bool {
	for _, c := range ItemCategories {
		if c == category {
			return true
		}
	}
	return false
}

// ValidItemType reports whether t is "lost" or "found".
func ValidItemType(t string) bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

var dateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDate reports whether date matches the literal YYYY-MM-DD pattern.
func ValidDate(date string) bool {
	return dateRE.MatchString(date)
}
