package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
)

// MarkRepository handles persistence of marks.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository constructs the repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Create persists a new mark.
func (r *MarkRepository) Create(ctx context.Context, mark *models.Mark) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	const query = `INSERT INTO marks (id, student_id, subject_id, teacher_id, class_id, score, total_marks, exam_type, year)
VALUES (:id, :student_id, :subject_id, :teacher_id, :class_id, :score, :total_marks, :exam_type, :year)`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		return fmt.Errorf("create mark: %w", err)
	}
	return nil
}

// FindInScope returns the mark only when it falls inside the caller's
// scope; absent and out-of-scope both surface as sql.ErrNoRows.
func (r *MarkRepository) FindInScope(ctx context.Context, id string, cond scope.Condition) (*models.Mark, error) {
	query := `SELECT m.id, m.student_id, m.subject_id, m.teacher_id, m.class_id, m.score, m.total_marks, m.exam_type, m.year
FROM marks m
WHERE m.id = ? AND ` + cond.Expr
	args := append([]interface{}{id}, cond.Args...)
	var mark models.Mark
	if err := r.db.GetContext(ctx, &mark, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return &mark, nil
}

// UpdateScore updates score and total for a mark.
func (r *MarkRepository) UpdateScore(ctx context.Context, id string, score, totalMarks float64) error {
	const query = `UPDATE marks SET score = $2, total_marks = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, score, totalMarks); err != nil {
		return fmt.Errorf("update mark: %w", err)
	}
	return nil
}

// ListInScope returns marks visible to the caller with roster and subject
// context, newest year first.
func (r *MarkRepository) ListInScope(ctx context.Context, cond scope.Condition) ([]models.MarkDetail, error) {
	query := `SELECT m.id, m.student_id, s.name AS student_name, s.roll_no, sub.name AS subject_name, m.score, m.total_marks, m.exam_type, m.year
FROM marks m
JOIN students s ON s.id = m.student_id
JOIN subjects sub ON sub.id = m.subject_id
WHERE ` + cond.Expr + `
ORDER BY m.year DESC`
	var marks []models.MarkDetail
	if err := r.db.SelectContext(ctx, &marks, r.db.Rebind(query), cond.Args...); err != nil {
		return nil, fmt.Errorf("list marks: %w", err)
	}
	return marks, nil
}

// ListByClass returns a teacher's marks for one class.
func (r *MarkRepository) ListByClass(ctx context.Context, classID, teacherID string) ([]models.MarkDetail, error) {
	const query = `SELECT m.id, m.student_id, s.name AS student_name, s.roll_no, sub.name AS subject_name, m.score, m.total_marks, m.exam_type, m.year
FROM marks m
JOIN students s ON s.id = m.student_id
JOIN subjects sub ON sub.id = m.subject_id
WHERE m.class_id = $1 AND m.teacher_id = $2
ORDER BY m.year DESC`
	var marks []models.MarkDetail
	if err := r.db.SelectContext(ctx, &marks, query, classID, teacherID); err != nil {
		return nil, fmt.Errorf("list class marks: %w", err)
	}
	return marks, nil
}

// ListMine returns a student's own marks, newest year first.
func (r *MarkRepository) ListMine(ctx context.Context, studentID string) ([]models.StudentMark, error) {
	const query = `SELECT m.id, s.name AS subject_name, t.name AS teacher_name, m.score, m.total_marks, m.exam_type, m.year
FROM marks m
JOIN subjects s ON s.id = m.subject_id
JOIN teachers t ON t.id = m.teacher_id
WHERE m.student_id = $1
ORDER BY m.year DESC`
	var marks []models.StudentMark
	if err := r.db.SelectContext(ctx, &marks, query, studentID); err != nil {
		return nil, fmt.Errorf("list my marks: %w", err)
	}
	return marks, nil
}

// ListMineByClass returns a student's own marks within one class.
func (r *MarkRepository) ListMineByClass(ctx context.Context, classID, studentID string) ([]models.StudentMark, error) {
	const query = `SELECT m.id, s.name AS subject_name, t.name AS teacher_name, m.score, m.total_marks, m.exam_type, m.year
FROM marks m
JOIN subjects s ON s.id = m.subject_id
JOIN teachers t ON t.id = m.teacher_id
WHERE m.class_id = $1 AND m.student_id = $2
ORDER BY m.year DESC`
	var marks []models.StudentMark
	if err := r.db.SelectContext(ctx, &marks, query, classID, studentID); err != nil {
		return nil, fmt.Errorf("list my class marks: %w", err)
	}
	return marks, nil
}

// SubjectDifficulty returns the subjects with the lowest average score
// within the caller's scope, ascending, limited.
func (r *MarkRepository) SubjectDifficulty(ctx context.Context, cond scope.Condition, limit int) ([]models.SubjectDifficultyRow, error) {
	query := `SELECT s.id AS subject_id, s.name AS subject_name, ROUND(AVG(m.score)::numeric, 1) AS avg_score
FROM marks m
JOIN subjects s ON s.id = m.subject_id
WHERE ` + cond.Expr + `
GROUP BY s.id, s.name
ORDER BY avg_score ASC
LIMIT ?`
	args := append(append([]interface{}{}, cond.Args...), limit)
	var rows []models.SubjectDifficultyRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("subject difficulty: %w", err)
	}
	return rows, nil
}
