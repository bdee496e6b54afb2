package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-api/internal/models"
)

// StudentRepository handles student profile reads.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student profile by its id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, roll_no, name, class_id, year, user_id, created_at FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindProfileByUser returns the student's own profile joined with the
// account email.
func (r *StudentRepository) FindProfileByUser(ctx context.Context, userID string) (*models.StudentProfile, error) {
	const query = `SELECT s.id, s.roll_no, s.name, s.class_id, s.year, u.email
FROM students s
JOIN users u ON u.id = s.user_id
WHERE s.user_id = $1`
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListAll returns every student, name asc. Admin oversight listing.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.StudentSummary, error) {
	const query = `SELECT id, name, roll_no FROM students ORDER BY name ASC`
	var students []models.StudentSummary
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListByDepartment returns students whose home class belongs to a teacher of
// the department, name asc.
func (r *StudentRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.StudentSummary, error) {
	const query = `SELECT s.id, s.name, s.roll_no
FROM students s
JOIN classes c ON c.id = s.class_id
JOIN teachers t ON t.id = c.teacher_id
WHERE t.department_id = $1
ORDER BY s.name ASC`
	var students []models.StudentSummary
	if err := r.db.SelectContext(ctx, &students, query, departmentID); err != nil {
		return nil, fmt.Errorf("list department students: %w", err)
	}
	return students, nil
}
