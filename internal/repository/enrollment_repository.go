package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
)

// EnrollmentRepository handles persistence of class enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ExistsActive reports whether a pending or approved enrollment exists for
// the (class, student) pair.
func (r *EnrollmentRepository) ExistsActive(ctx context.Context, classID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM class_enrollments WHERE class_id = $1 AND student_id = $2 AND status IN ('pending', 'approved') LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, classID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check active enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new pending enrollment request.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}
	const query = `INSERT INTO class_enrollments (id, class_id, student_id, status, created_at)
VALUES (:id, :class_id, :student_id, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// ResolvePending transitions a pending enrollment to the given terminal
// status, but only when the row is still pending and its class is inside the
// caller's scope. The single conditional UPDATE makes concurrent approvals
// race-safe: the second writer matches zero rows and gets sql.ErrNoRows,
// which callers report as not-found without distinguishing forbidden from
// absent.
func (r *EnrollmentRepository) ResolvePending(ctx context.Context, id string, status models.EnrollmentStatus, cond scope.Condition) (*models.Enrollment, error) {
	query := `UPDATE class_enrollments ce SET status = ?
WHERE ce.id = ? AND ce.status = 'pending' AND ` + cond.Expr + `
RETURNING ce.id, ce.class_id, ce.student_id, ce.status, ce.created_at`
	args := append([]interface{}{status, id}, cond.Args...)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListPendingInScope returns pending requests whose class falls inside the
// caller's scope, newest first, with roster context joined in.
func (r *EnrollmentRepository) ListPendingInScope(ctx context.Context, cond scope.Condition) ([]models.EnrollmentRequestDetail, error) {
	query := `SELECT ce.id, ce.class_id, ce.student_id, ce.status, c.name AS class_name, s.name AS student_name, s.roll_no
FROM class_enrollments ce
JOIN classes c ON c.id = ce.class_id
JOIN students s ON s.id = ce.student_id
WHERE ce.status = 'pending' AND ` + cond.Expr + `
ORDER BY ce.created_at DESC`
	var requests []models.EnrollmentRequestDetail
	if err := r.db.SelectContext(ctx, &requests, r.db.Rebind(query), cond.Args...); err != nil {
		return nil, fmt.Errorf("list pending enrollments: %w", err)
	}
	return requests, nil
}

// ListByStudent returns the student's enrollments with the given status,
// joined with class context, year desc.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrolledClass, error) {
	const query = `SELECT c.id AS class_id, c.name AS class_name, c.year, s.name AS subject_name, t.name AS teacher_name, ce.status
FROM class_enrollments ce
JOIN classes c ON c.id = ce.class_id
JOIN subjects s ON s.id = c.subject_id
JOIN teachers t ON t.id = c.teacher_id
WHERE ce.student_id = $1 AND ce.status = $2
ORDER BY c.year DESC`
	var classes []models.EnrolledClass
	if err := r.db.SelectContext(ctx, &classes, query, studentID, status); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return classes, nil
}

// HasApproved reports whether the student holds an approved enrollment in
// the class.
func (r *EnrollmentRepository) HasApproved(ctx context.Context, classID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM class_enrollments WHERE class_id = $1 AND student_id = $2 AND status = 'approved' LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, classID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check approved enrollment: %w", err)
	}
	return true, nil
}

// ApprovedStudentIDs filters the given ids down to those holding an
// approved enrollment in the class.
func (r *EnrollmentRepository) ApprovedStudentIDs(ctx context.Context, classID string, studentIDs []string) (map[string]bool, error) {
	if len(studentIDs) == 0 {
		return map[string]bool{}, nil
	}
	query, args, err := sqlx.In(
		`SELECT student_id FROM class_enrollments WHERE class_id = ? AND status = 'approved' AND student_id IN (?)`,
		classID, studentIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("build approved students query: %w", err)
	}
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list approved students: %w", err)
	}
	approved := make(map[string]bool, len(ids))
	for _, id := range ids {
		approved[id] = true
	}
	return approved, nil
}
