package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
)

// ClassRepository handles persistence of classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// Create persists a new class owned by the given teacher.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	const query = `INSERT INTO classes (id, name, subject_id, teacher_id, year) VALUES (:id, :name, :subject_id, :teacher_id, :year)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// FindByID returns a class by its id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name, subject_id, teacher_id, year FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ExistsInScope reports whether the class exists inside the caller's scope.
func (r *ClassRepository) ExistsInScope(ctx context.Context, classID string, cond scope.Condition) (bool, error) {
	query := "SELECT 1 FROM classes c WHERE c.id = ? AND " + cond.Expr + " LIMIT 1"
	args := append([]interface{}{classID}, cond.Args...)
	var exists int
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(query), args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class scope: %w", err)
	}
	return true, nil
}

// ListByTeacher returns the classes owned by a teacher, newest year first.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error) {
	const query = `SELECT id, name, subject_id, teacher_id, year FROM classes WHERE teacher_id = $1 ORDER BY year DESC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher classes: %w", err)
	}
	return classes, nil
}

// ListByDepartment returns the department's classes with subject and teacher
// names, year desc then name asc.
func (r *ClassRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.ClassDetail, error) {
	const query = `SELECT c.id, c.name, c.year, s.name AS subject_name, t.name AS teacher_name
FROM classes c
JOIN subjects s ON s.id = c.subject_id
JOIN teachers t ON t.id = c.teacher_id
WHERE t.department_id = $1
ORDER BY c.year DESC, c.name ASC`
	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, departmentID); err != nil {
		return nil, fmt.Errorf("list department classes: %w", err)
	}
	return classes, nil
}

// ListAvailableForStudent returns classes the student has no pending or
// approved enrollment for.
func (r *ClassRepository) ListAvailableForStudent(ctx context.Context, studentID string) ([]models.ClassDetail, error) {
	const query = `SELECT c.id, c.name, c.year, s.name AS subject_name, t.name AS teacher_name
FROM classes c
JOIN subjects s ON s.id = c.subject_id
JOIN teachers t ON t.id = c.teacher_id
WHERE NOT EXISTS (
  SELECT 1 FROM class_enrollments ce
  WHERE ce.class_id = c.id AND ce.student_id = $1 AND ce.status IN ('pending', 'approved')
)
ORDER BY c.year DESC`
	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, studentID); err != nil {
		return nil, fmt.Errorf("list available classes: %w", err)
	}
	return classes, nil
}

// ListApprovedStudents returns the approved roster of a class, name asc.
func (r *ClassRepository) ListApprovedStudents(ctx context.Context, classID string) ([]models.StudentSummary, error) {
	const query = `SELECT s.id, s.name, s.roll_no
FROM class_enrollments ce
JOIN students s ON s.id = ce.student_id
WHERE ce.class_id = $1 AND ce.status = 'approved'
ORDER BY s.name ASC`
	var students []models.StudentSummary
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list approved students: %w", err)
	}
	return students, nil
}
