package model

import "time"

// Claim is a user's assertion of ownership over an item, subject to
// verification by security staff.
type Claim struct {
	ID                int64     `json:"id"`
	ItemID            int64     `json:"item_id"`
	ClaimerID         int64     `json:"claimer_id"`
	OwnerID           *int64    `json:"owner_id,omitempty"`
	Status            string    `json:"status"`
	VerificationNotes string    `json:"verification_notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ItemTitle    string `json:"item_title,omitempty"`
	ClaimerName  string `json:"claimer_name,omitempty"`
	ClaimerEmail string `json:"claimer_email,omitempty"`
}

// Claim statuses. Flat set, same as item statuses.
const (
	ClaimStatusPending   = "pending"
	ClaimStatusVerified  = "verified"
	ClaimStatusRejected  = "rejected"
	ClaimStatusCompleted = "completed"
)

// ClaimStatuses lists every valid claim status.
var ClaimStatuses = []string{
	ClaimStatusPending, ClaimStatusVerified, ClaimStatusRejected, ClaimStatusCompleted,
}

// ValidClaimStatus reports whether status is a member of the claim status set.
func ValidClaimStatus(status string) bool {
	for _, s := range ClaimStatuses {
		if s == status {
			return true
		}
	}
	return false
}
