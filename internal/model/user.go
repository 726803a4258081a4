package model

import (
	"strings"
	"time"
)

// User represents a registered account (student or security staff).
type User struct {
	ID           int64     `json:"id"`
	StudentID    string    `json:"student_id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Campus       string    `json:"campus"`
	Program      string    `json:"program,omitempty"`
	PasswordHash string    `json:"-"`
	IsVerified   bool      `json:"is_verified"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role is the closed set of account roles.
type Role string

const (
	RoleStudent  Role = "student"
	RoleSecurity Role = "security"
)

// ParseRole maps a stored role string onto the closed set.
// Unknown values are rejected rather than treated as students.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleSecurity:
		return Role(s), true
	}
	return "", false
}

// Campuses is the fixed set of campus names scoping users and items.
var Campuses = []string{"Main", "Waterloo", "Cambridge", "Doon"}

// ValidCampus reports whether campus is one of the known campuses.
func ValidCampus(campus string) bool {
	for _, c := range Campuses {
		if c == campus {
			return true
		}
	}
	return false
}

// AllowedEmailDomains are the only email domains accepted at registration.
var AllowedEmailDomains = []string{"conestogac.on.ca", "conestoga.ca"}

// ValidEmailDomain reports whether the email's domain is on the allow-list.
func ValidEmailDomain(email string) bool {
	_, domain, ok := strings.Cut(email, "@")
	if !ok {
		return false
	}
	for _, d := range AllowedEmailDomains {
		if domain == d {
			return true
		}
	}
	return false
}

const passwordSpecials = "!@#$%^&*"

// ValidatePassword checks the password policy and returns one message per
// violated rule. Security accounts additionally require an uppercase letter.
func ValidatePassword(password string, requireUpper bool) []string {
	var errs []string
	if len(password) < 8 {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	if !strings.ContainsAny(password, "0123456789") {
		errs = append(errs, "Password must contain at least one number")
	}
	if !strings.ContainsAny(password, passwordSpecials) {
		errs = append(errs, "Password must contain at least one special character (!@#$%^&*)")
	}
	if requireUpper && !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	return errs
}
