package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// IdentityRepository maps account ids to role-specific profile ids. Absence
// of a profile row is reported as sql.ErrNoRows; callers treat it as an
// authorization failure, not a normal miss.
type IdentityRepository struct {
	db *sqlx.DB
}

// NewIdentityRepository constructs the repository.
func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// TeacherIDByUser returns the teacher profile id owned by the account.
func (r *IdentityRepository) TeacherIDByUser(ctx context.Context, userID string) (string, error) {
	const query = `SELECT id FROM teachers WHERE user_id = $1`
	var id string
	if err := r.db.GetContext(ctx, &id, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("lookup teacher id: %w", err)
	}
	return id, nil
}

// StudentIDByUser returns the student profile id owned by the account.
func (r *IdentityRepository) StudentIDByUser(ctx context.Context, userID string) (string, error) {
	const query = `SELECT id FROM students WHERE user_id = $1`
	var id string
	if err := r.db.GetContext(ctx, &id, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("lookup student id: %w", err)
	}
	return id, nil
}

// DepartmentIDByUser returns the department of the account's teacher
// profile. A teacher without a department reports sql.ErrNoRows as well,
// since department scope cannot be derived for them.
func (r *IdentityRepository) DepartmentIDByUser(ctx context.Context, userID string) (string, error) {
	const query = `SELECT department_id FROM teachers WHERE user_id = $1`
	var id *string
	if err := r.db.GetContext(ctx, &id, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("lookup department id: %w", err)
	}
	if id == nil {
		return "", sql.ErrNoRows
	}
	return *id, nil
}
