package model

import "testing"

func TestValidItemStatus(t *testing.T) {
	for _, s := range ItemStatuses {
		if !ValidItemStatus(s) {
			t.Errorf("expected status %q to be valid", s)
		}
	}
	for _, s := range []string{"open", "reported", "Lost", ""} {
		if ValidItemStatus(s) {
			t.Errorf("expected status %q to be invalid", s)
		}
	}
}

func TestValidItemCategory(t *testing.T) {
	if !ValidItemCategory("wallet") || !ValidItemCategory("other") {
		t.Error("expected known categories to be valid")
	}
	if ValidItemCategory("Wallet") || ValidItemCategory("laptop") {
		t.Error("expected unknown categories to be invalid")
	}
}

func TestValidDate(t *testing.T) {
	tests := []struct {
		date  string
		valid bool
	}{
		{"2024-01-31", true},
		{"2024-1-31", false},
		{"31-01-2024", false},
		{"2024-01-31T00:00:00Z", false},
		{"", false},
		{"yyyy-mm-dd", false},
	}

	for _, tt := range tests {
		if got := ValidDate(tt.date); got != tt.valid {
			t.Errorf("ValidDate(%q) = %v, want %v", tt.date, got, tt.valid)
		}
	}
}

func TestValidClaimStatus(t *testing.T) {
	for _, s := range ClaimStatuses {
		if !ValidClaimStatus(s) {
			t.Errorf("expected claim status %q to be valid", s)
		}
	}
	if ValidClaimStatus("Pending") || ValidClaimStatus("done") {
		t.Error("expected unknown claim statuses to be invalid")
	}
}
