package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-api/internal/models"
)

// PerformanceRepository runs the read-side aggregate queries behind the
// performance views. It never writes.
type PerformanceRepository struct {
	db *sqlx.DB
}

// NewPerformanceRepository constructs the repository.
func NewPerformanceRepository(db *sqlx.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// OverallScore holds a student's overall score percentage together with
// the number of distinct subjects it covers.
type OverallScore struct {
	AvgScore     float64 `db:"avg_score"`
	SubjectCount int     `db:"subject_count"`
}

// StudentOverallScore returns the student's score percentage across all
// marks, one decimal, 0 when the student has no marks.
func (r *PerformanceRepository) StudentOverallScore(ctx context.Context, studentID string) (*OverallScore, error) {
	const query = `SELECT
	COALESCE(ROUND(100.0 * SUM(score) / NULLIF(SUM(total_marks), 0), 1), 0) AS avg_score,
	COUNT(DISTINCT subject_id) AS subject_count
FROM marks
WHERE student_id = $1`
	var overall OverallScore
	if err := r.db.GetContext(ctx, &overall, query, studentID); err != nil {
		return nil, fmt.Errorf("student overall score: %w", err)
	}
	return &overall, nil
}

// AttendanceCounts holds raw present/total counters for a student.
type AttendanceCounts struct {
	Present int `db:"present"`
	Total   int `db:"total"`
}

// StudentAttendanceCounts returns the student's present and total
// attendance counts across all classes.
func (r *PerformanceRepository) StudentAttendanceCounts(ctx context.Context, studentID string) (*AttendanceCounts, error) {
	const query = `SELECT
	COALESCE(SUM(CASE WHEN status = 'present' THEN 1 ELSE 0 END), 0) AS present,
	COUNT(*) AS total
FROM attendance
WHERE student_id = $1`
	var counts AttendanceCounts
	if err := r.db.GetContext(ctx, &counts, query, studentID); err != nil {
		return nil, fmt.Errorf("student attendance counts: %w", err)
	}
	return &counts, nil
}

// PeerRank holds a student's rank within the peer pool.
type PeerRank struct {
	Rank          int `db:"rank"`
	TotalStudents int `db:"total_students"`
}

// RankAmongPeers ranks the student against every student sharing at
// least one approved class. Only peers with at least one mark enter the
// pool; the rank counts peers whose score percentage strictly exceeds
// the caller's, plus one.
func (r *PerformanceRepository) RankAmongPeers(ctx context.Context, studentID string) (*PeerRank, error) {
	const query = `WITH peers AS (
	SELECT DISTINCT ce2.student_id
	FROM class_enrollments ce1
	JOIN class_enrollments ce2 ON ce2.class_id = ce1.class_id AND ce2.status = 'approved'
	WHERE ce1.student_id = $1 AND ce1.status = 'approved'
), scores AS (
	SELECT p.student_id,
		100.0 * SUM(m.score) / NULLIF(SUM(m.total_marks), 0) AS pct
	FROM peers p
	JOIN marks m ON m.student_id = p.student_id
	GROUP BY p.student_id
)
SELECT
	COALESCE(SUM(CASE WHEN s.pct > COALESCE((SELECT pct FROM scores WHERE student_id = $1), 0) THEN 1 ELSE 0 END), 0) + 1 AS rank,
	COUNT(*) AS total_students
FROM scores s`
	var rank PeerRank
	if err := r.db.GetContext(ctx, &rank, query, studentID); err != nil {
		return nil, fmt.Errorf("rank among peers: %w", err)
	}
	return &rank, nil
}

// SubjectScores returns the student's score percentage per subject,
// subject name ascending.
func (r *PerformanceRepository) SubjectScores(ctx context.Context, studentID string) ([]models.SubjectPerformance, error) {
	const query = `SELECT sub.name,
	COALESCE(ROUND(100.0 * SUM(m.score) / NULLIF(SUM(m.total_marks), 0), 1), 0) AS avg_score
FROM marks m
JOIN subjects sub ON sub.id = m.subject_id
WHERE m.student_id = $1
GROUP BY sub.id, sub.name
ORDER BY sub.name ASC`
	var subjects []models.SubjectPerformance
	if err := r.db.SelectContext(ctx, &subjects, query, studentID); err != nil {
		return nil, fmt.Errorf("subject scores: %w", err)
	}
	return subjects, nil
}

// SubjectAttendanceRow pairs a subject name with its attendance rate.
type SubjectAttendanceRow struct {
	Name string  `db:"name"`
	Pct  float64 `db:"pct"`
}

// SubjectAttendance returns the student's attendance percentage per
// subject, mapped through each class's subject.
func (r *PerformanceRepository) SubjectAttendance(ctx context.Context, studentID string) ([]SubjectAttendanceRow, error) {
	const query = `SELECT sub.name,
	COALESCE(ROUND(100.0 * SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END)::numeric / NULLIF(COUNT(a.id), 0), 1), 0) AS pct
FROM attendance a
JOIN classes c ON c.id = a.class_id
JOIN subjects sub ON sub.id = c.subject_id
WHERE a.student_id = $1
GROUP BY sub.id, sub.name`
	var rows []SubjectAttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("subject attendance: %w", err)
	}
	return rows, nil
}

// ClassPerformance returns one row per approved student in the class,
// score percentage descending then roll number ascending. Rank is filled
// in by the caller from row position.
func (r *PerformanceRepository) ClassPerformance(ctx context.Context, classID string) ([]models.ClassPerformanceRow, error) {
	const query = `SELECT s.id AS student_id, s.name, s.roll_no,
	COALESCE((SELECT ROUND(100.0 * SUM(m.score) / NULLIF(SUM(m.total_marks), 0), 1)
		FROM marks m WHERE m.student_id = s.id AND m.class_id = $1), 0) AS avg_score,
	COALESCE((SELECT ROUND(100.0 * SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END)::numeric / NULLIF(COUNT(a.id), 0), 1)
		FROM attendance a WHERE a.student_id = s.id AND a.class_id = $1), 0) AS attendance_pct
FROM class_enrollments ce
JOIN students s ON s.id = ce.student_id
WHERE ce.class_id = $1 AND ce.status = 'approved'
ORDER BY avg_score DESC, s.roll_no ASC`
	var rows []models.ClassPerformanceRow
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("class performance: %w", err)
	}
	return rows, nil
}

// DepartmentPerformance returns the per-class rollup for every class
// taught in the department, year descending then class name ascending.
func (r *PerformanceRepository) DepartmentPerformance(ctx context.Context, departmentID string) ([]models.DepartmentClassPerformance, error) {
	const query = `SELECT c.id AS class_id, c.name AS class_name, c.year,
	(SELECT COUNT(*) FROM class_enrollments ce WHERE ce.class_id = c.id AND ce.status = 'approved') AS student_count,
	COALESCE((SELECT ROUND(100.0 * SUM(m.score) / NULLIF(SUM(m.total_marks), 0), 1)
		FROM marks m WHERE m.class_id = c.id), 0) AS avg_score,
	COALESCE((SELECT ROUND(100.0 * SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END)::numeric / NULLIF(COUNT(a.id), 0), 1)
		FROM attendance a WHERE a.class_id = c.id), 0) AS avg_attendance
FROM classes c
JOIN teachers t ON t.id = c.teacher_id
WHERE t.department_id = $1
ORDER BY c.year DESC, c.name ASC`
	var rows []models.DepartmentClassPerformance
	if err := r.db.SelectContext(ctx, &rows, query, departmentID); err != nil {
		return nil, fmt.Errorf("department performance: %w", err)
	}
	return rows, nil
}

// TrendByExamType returns the student's score percentage per exam type,
// ordered internal, midterm, final, then anything else alphabetically.
func (r *PerformanceRepository) TrendByExamType(ctx context.Context, studentID string) ([]models.TrendPoint, error) {
	const query = `SELECT exam_type AS exam,
	COALESCE(ROUND(100.0 * SUM(score) / NULLIF(SUM(total_marks), 0), 1), 0) AS percentage
FROM marks
WHERE student_id = $1
GROUP BY exam_type
ORDER BY CASE exam_type
	WHEN 'internal' THEN 1
	WHEN 'midterm' THEN 2
	WHEN 'final' THEN 3
	ELSE 4
END, exam_type ASC`
	var points []models.TrendPoint
	if err := r.db.SelectContext(ctx, &points, query, studentID); err != nil {
		return nil, fmt.Errorf("trend by exam type: %w", err)
	}
	return points, nil
}
