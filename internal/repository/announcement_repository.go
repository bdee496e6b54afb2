package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-api/internal/models"
)

// AnnouncementRepository handles persistence of announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository constructs the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create persists a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, ann *models.Announcement) error {
	if ann.ID == "" {
		ann.ID = uuid.NewString()
	}
	const query = `INSERT INTO announcements (id, teacher_id, title, body, created_at)
VALUES (:id, :teacher_id, :title, :body, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ann); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// ListByTeacher returns a teacher's own announcements, newest first.
func (r *AnnouncementRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.AnnouncementDetail, error) {
	const query = `SELECT an.id, an.title, an.body, t.name AS teacher_name, an.created_at
FROM announcements an
JOIN teachers t ON t.id = an.teacher_id
WHERE an.teacher_id = $1
ORDER BY an.created_at DESC`
	var anns []models.AnnouncementDetail
	if err := r.db.SelectContext(ctx, &anns, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher announcements: %w", err)
	}
	return anns, nil
}

// ListForStudent returns announcements authored by teachers of the classes
// the student is approved in, newest first.
func (r *AnnouncementRepository) ListForStudent(ctx context.Context, studentID string) ([]models.AnnouncementDetail, error) {
	const query = `SELECT DISTINCT an.id, an.title, an.body, t.name AS teacher_name, an.created_at
FROM announcements an
JOIN teachers t ON t.id = an.teacher_id
JOIN classes c ON c.teacher_id = an.teacher_id
JOIN class_enrollments ce ON ce.class_id = c.id
WHERE ce.student_id = $1 AND ce.status = 'approved'
ORDER BY an.created_at DESC`
	var anns []models.AnnouncementDetail
	if err := r.db.SelectContext(ctx, &anns, query, studentID); err != nil {
		return nil, fmt.Errorf("list student announcements: %w", err)
	}
	return anns, nil
}

// ListForDepartment returns announcements authored by the department's
// teachers, newest first.
func (r *AnnouncementRepository) ListForDepartment(ctx context.Context, departmentID string) ([]models.AnnouncementDetail, error) {
	const query = `SELECT an.id, an.title, an.body, t.name AS teacher_name, an.created_at
FROM announcements an
JOIN teachers t ON t.id = an.teacher_id
WHERE t.department_id = $1
ORDER BY an.created_at DESC`
	var anns []models.AnnouncementDetail
	if err := r.db.SelectContext(ctx, &anns, query, departmentID); err != nil {
		return nil, fmt.Errorf("list department announcements: %w", err)
	}
	return anns, nil
}

// ListAll returns every announcement, newest first.
func (r *AnnouncementRepository) ListAll(ctx context.Context) ([]models.AnnouncementDetail, error) {
	const query = `SELECT an.id, an.title, an.body, t.name AS teacher_name, an.created_at
FROM announcements an
JOIN teachers t ON t.id = an.teacher_id
ORDER BY an.created_at DESC`
	var anns []models.AnnouncementDetail
	if err := r.db.SelectContext(ctx, &anns, query); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return anns, nil
}

// Delete removes a teacher's own announcement. It reports whether a row
// was removed.
func (r *AnnouncementRepository) Delete(ctx context.Context, id, teacherID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if err != nil {
		return false, fmt.Errorf("delete announcement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete announcement: %w", err)
	}
	return n > 0, nil
}
