package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/back2u/back2u/internal/auth"
	"github.com/back2u/back2u/internal/model"
	"github.com/back2u/back2u/internal/store"
)

// AuthHandler handles registration, verification and session endpoints.
type AuthHandler struct {
	DB            *sql.DB
	JWTSecret     string
	SecurityCodes map[string]string
	Dev           bool
}

type registerRequest struct {
	StudentID    string `json:"student_id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Campus       string `json:"campus"`
	Program      string `json:"program"`
	Password     string `json:"password"`
	SecurityCode string `json:"security_code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type updateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Campus      string `json:"campus"`
	Program     string `json:"program"`
	Password    string `json:"password"`
	NewPassword string `json:"new_password"`
}

// Register handles POST /api/auth/register (student self-registration).
// New accounts start unverified; a single-use verification token is issued
// and its link logged in place of a real mail dispatch.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, ok := h.createUser(w, r, req, model.RoleStudent, "")
	if !ok {
		return
	}

	token, err := store.CreateVerificationToken(r.Context(), h.DB, user.ID)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	// Simulated email dispatch: the link is logged so it can be picked up
	// from the server output during testing.
	slog.Info("verification email sent", "email", user.Email,
		"link", "/verify-email.html?token="+token)

	jsonResponse(w, http.StatusCreated, map[string]any{
		"message":              "Student account created. Please check your email to verify your account.",
		"user":                 user,
		"requiresVerification": true,
	})
}

// RegisterSecurity handles POST /api/auth/register-security. Requires a
// pre-shared registration code; the code fixes the account's campus and the
// account is auto-verified.
func (h *AuthHandler) RegisterSecurity(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	campus, ok := h.SecurityCodes[req.SecurityCode]
	if !ok {
		jsonError(w, http.StatusForbidden, "Invalid security registration code. Please contact administration.")
		return
	}

	user, ok := h.createUser(w, r, req, model.RoleSecurity, campus)
	if !ok {
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	slog.Info("security account created", "email", user.Email, "campus", campus)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "Security account registered successfully",
		"user":    user,
		"token":   token,
	})
}

// createUser validates a registration request and inserts the row. When it
// returns false the error response has already been written.
func (h *AuthHandler) createUser(w http.ResponseWriter, r *http.Request, req registerRequest, role model.Role, forcedCampus string) (*model.User, bool) {
	req.Email = strings.TrimSpace(req.Email)
	if !model.ValidEmailDomain(req.Email) {
		jsonError(w, http.StatusBadRequest, "Only @conestogac.on.ca or @conestoga.ca emails are allowed")
		return nil, false
	}

	if errs := model.ValidatePassword(req.Password, role == model.RoleSecurity); len(errs) > 0 {
		jsonValidationError(w, "Password does not meet security requirements", errs)
		return nil, false
	}

	campus := forcedCampus
	if campus == "" {
		campus = clean(req.Campus)
	}

	var msgs []string
	if strings.TrimSpace(req.StudentID) == "" {
		msgs = append(msgs, "Student ID is required")
	}
	if clean(req.FirstName) == "" || clean(req.LastName) == "" {
		msgs = append(msgs, "First and last name are required")
	}
	if !model.ValidCampus(campus) {
		msgs = append(msgs, "Invalid campus")
	}
	if len(msgs) > 0 {
		jsonValidationError(w, "Validation failed", msgs)
		return nil, false
	}

	existing, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		errStatus(w, err, h.Dev)
		return nil, false
	}
	if existing != nil {
		jsonError(w, http.StatusBadRequest, "Email already registered")
		return nil, false
	}

	existing, err = store.GetUserByStudentID(r.Context(), h.DB, strings.TrimSpace(req.StudentID))
	if err != nil {
		errStatus(w, err, h.Dev)
		return nil, false
	}
	if existing != nil {
		jsonError(w, http.StatusBadRequest, "Student ID already in use")
		return nil, false
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		errStatus(w, err, h.Dev)
		return nil, false
	}

	program := clean(req.Program)
	if program == "" && role == model.RoleSecurity {
		program = "security"
	}

	user, err := store.CreateUser(r.Context(), h.DB, store.NewUser{
		StudentID:    strings.TrimSpace(req.StudentID),
		Email:        req.Email,
		FirstName:    clean(req.FirstName),
		LastName:     clean(req.LastName),
		Campus:       campus,
		Program:      program,
		PasswordHash: string(hash),
		IsVerified:   role == model.RoleSecurity,
		Role:         role,
	})
	if err != nil {
		// A concurrent duplicate insert lands here as a constraint error.
		jsonError(w, http.StatusBadRequest, "Email or student ID already registered")
		return nil, false
	}

	return user, true
}

// VerifyEmail handles POST /api/auth/verify-email. Tokens are single-use:
// a valid token is deleted on success, an expired one is purged on its first
// use.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Token == "" {
		jsonError(w, http.StatusBadRequest, "Verification token is required")
		return
	}

	vt, err := store.GetVerificationToken(r.Context(), h.DB, req.Token)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if vt == nil {
		jsonError(w, http.StatusBadRequest, "Invalid or expired verification token")
		return
	}
	if time.Now().After(vt.ExpiresAt) {
		if err := store.DeleteVerificationToken(r.Context(), h.DB, req.Token); err != nil {
			slog.Error("purging expired verification token", "error", err)
		}
		jsonError(w, http.StatusBadRequest, "Verification token has expired")
		return
	}

	verified := true
	user, err := store.UpdateUser(r.Context(), h.DB, vt.UserID, store.UserPatch{IsVerified: &verified})
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := store.DeleteVerificationToken(r.Context(), h.DB, req.Token); err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	slog.Info("email verified", "email", user.Email)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message":  "Email verified successfully. You can now login.",
		"verified": true,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "Please provide email and password")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, strings.TrimSpace(req.Email))
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if user == nil {
		// Same response as a bad password so accounts cannot be enumerated.
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.IsVerified {
		jsonResponse(w, http.StatusForbidden, map[string]any{
			"message":              "Please verify your email first before logging in",
			"requiresVerification": true,
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	slog.Info("user logged in", "email", user.Email, "role", user.Role)
	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "User not found")
		return
	}

	jsonResponse(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/auth/profile. Profile fields are a sparse
// patch; a password change additionally requires the current password and a
// policy check on the new one.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "User not found")
		return
	}

	var patch store.UserPatch
	if v := clean(req.FirstName); v != "" {
		patch.FirstName = &v
	}
	if v := clean(req.LastName); v != "" {
		patch.LastName = &v
	}
	if v := clean(req.Campus); v != "" {
		if !model.ValidCampus(v) {
			jsonError(w, http.StatusBadRequest, "Invalid campus")
			return
		}
		patch.Campus = &v
	}
	if v := clean(req.Program); v != "" {
		patch.Program = &v
	}

	if req.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			jsonError(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		if errs := model.ValidatePassword(req.NewPassword, user.Role == model.RoleSecurity); len(errs) > 0 {
			jsonValidationError(w, "Password validation failed", errs)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			errStatus(w, err, h.Dev)
			return
		}
		hashStr := string(hash)
		patch.PasswordHash = &hashStr
		slog.Info("password updated", "email", user.Email)
	}

	updated, err := store.UpdateUser(r.Context(), h.DB, claims.UserID, patch)
	if err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}

// Logout handles POST /api/auth/logout: the presented token's JTI goes on the
// revocation list until the token would have expired anyway.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		errStatus(w, err, h.Dev)
		return
	}

	slog.Info("user logged out", "email", claims.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}
