package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/back2u/back2u/internal/model"
)

// NewUser holds the fields required to create a user row.
type NewUser struct {
	StudentID    string
	Email        string
	FirstName    string
	LastName     string
	Campus       string
	Program      string
	PasswordHash string
	IsVerified   bool
	Role         model.Role
}

// UserPatch is a sparse update: only non-nil fields are written.
type UserPatch struct {
	FirstName    *string
	LastName     *string
	Campus       *string
	Program      *string
	PasswordHash *string
	IsVerified   *bool
}

const userColumns = `id, student_id, email, first_name, last_name, campus, program,
	password_hash, is_verified, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	var program sql.NullString
	var role string
	err := row.Scan(&u.ID, &u.StudentID, &u.Email, &u.FirstName, &u.LastName,
		&u.Campus, &program, &u.PasswordHash, &u.IsVerified, &role,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Program = program.String
	u.Role = model.Role(role)
	return u, nil
}

// CreateUser creates a new user and returns the stored row.
func CreateUser(ctx context.Context, db *sql.DB, nu NewUser) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (student_id, email, first_name, last_name, campus, program,
		                    password_hash, is_verified, role)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nu.StudentID, nu.Email, nu.FirstName, nu.LastName, nu.Campus,
		nullable(nu.Program), nu.PasswordHash, nu.IsVerified, string(nu.Role),
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if not found.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email, or nil if not found.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// GetUserByStudentID returns a user by student id, or nil if not found.
func GetUserByStudentID(ctx context.Context, db *sql.DB, studentID string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE student_id = ?`, studentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by student id: %w", err)
	}
	return u, nil
}

// UpdateUser applies a sparse patch and returns the row re-read from the
// database. A patch with no set fields returns the current row unchanged.
func UpdateUser(ctx context.Context, db *sql.DB, id int64, patch UserPatch) (*model.User, error) {
	var sets []string
	var args []any

	set := func(col string, val any) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}

	if patch.FirstName != nil {
		set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set("last_name", *patch.LastName)
	}
	if patch.Campus != nil {
		set("campus", *patch.Campus)
	}
	if patch.Program != nil {
		set("program", *patch.Program)
	}
	if patch.PasswordHash != nil {
		set("password_hash", *patch.PasswordHash)
	}
	if patch.IsVerified != nil {
		set("is_verified", *patch.IsVerified)
	}

	if len(sets) == 0 {
		return GetUser(ctx, db, id)
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	_, err := db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// DeleteUser hard-deletes a user. Items and claims cascade; claims naming the
// user as owner keep the row with owner_id set to null.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// nullable maps "" to NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
