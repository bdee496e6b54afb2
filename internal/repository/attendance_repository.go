package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-api/internal/models"
)

// AttendanceRepository handles persistence of attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const upsertAttendanceQuery = `INSERT INTO attendance (id, class_id, student_id, date, status)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (class_id, student_id, date)
DO UPDATE SET status = EXCLUDED.status`

// UpsertBatch writes all records for one class and date inside a single
// transaction; a failure on any record rolls back the whole batch. Each
// record overwrites a prior row for the same (class, student, date).
func (r *AttendanceRepository) UpsertBatch(ctx context.Context, classID string, date time.Time, records []models.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance batch: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, upsertAttendanceQuery, rec.ID, classID, rec.StudentID, date, rec.Status); err != nil {
			return fmt.Errorf("upsert attendance: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance batch: %w", err)
	}
	committed = true
	return nil
}

// Upsert writes one record, overwriting any prior row for the same key.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if _, err := r.db.ExecContext(ctx, upsertAttendanceQuery, record.ID, record.ClassID, record.StudentID, record.Date, record.Status); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// ListByDate returns a class's records for one date with roster context,
// student name asc.
func (r *AttendanceRepository) ListByDate(ctx context.Context, classID string, date time.Time) ([]models.AttendanceRow, error) {
	const query = `SELECT a.id, a.student_id, s.name AS student_name, s.roll_no, a.status, a.date
FROM attendance a
JOIN students s ON s.id = a.student_id
WHERE a.class_id = $1 AND a.date = $2
ORDER BY s.name ASC`
	var rows []models.AttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, classID, date); err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	return rows, nil
}

// ListForStudent returns one student's records within a class, newest first.
func (r *AttendanceRepository) ListForStudent(ctx context.Context, classID, studentID string) ([]models.AttendanceDay, error) {
	const query = `SELECT id, class_id, date, status FROM attendance WHERE class_id = $1 AND student_id = $2 ORDER BY date DESC`
	var rows []models.AttendanceDay
	if err := r.db.SelectContext(ctx, &rows, query, classID, studentID); err != nil {
		return nil, fmt.Errorf("list student attendance: %w", err)
	}
	return rows, nil
}

// ListMineRange returns a student's own records across classes, optionally
// bounded by dates, newest first.
func (r *AttendanceRepository) ListMineRange(ctx context.Context, studentID string, from, to *time.Time) ([]models.AttendanceDay, error) {
	query := `SELECT id, class_id, date, status FROM attendance WHERE student_id = $1`
	args := []interface{}{studentID}
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", len(args)+1)
		args = append(args, *from)
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", len(args)+1)
		args = append(args, *to)
	}
	query += " ORDER BY date DESC"
	var rows []models.AttendanceDay
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list my attendance: %w", err)
	}
	return rows, nil
}

// Summary aggregates per-student presence for a class across every approved
// student, roll number asc. Students without records report zero sessions
// and a zero rate.
func (r *AttendanceRepository) Summary(ctx context.Context, classID string) ([]models.AttendanceSummaryRow, error) {
	const query = `SELECT
  s.id AS student_id,
  s.name AS student_name,
  s.roll_no,
  COALESCE(SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END), 0) AS present_count,
  COALESCE(SUM(CASE WHEN a.status = 'absent' THEN 1 ELSE 0 END), 0) AS absent_count,
  COUNT(a.id) AS total_count,
  COALESCE(ROUND(100.0 * SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END)::numeric / NULLIF(COUNT(a.id), 0), 1), 0) AS rate
FROM class_enrollments ce
JOIN students s ON s.id = ce.student_id
LEFT JOIN attendance a ON a.class_id = ce.class_id AND a.student_id = s.id
WHERE ce.class_id = $1 AND ce.status = 'approved'
GROUP BY s.id, s.name, s.roll_no
ORDER BY s.roll_no ASC`
	var rows []models.AttendanceSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	return rows, nil
}

// Top returns the best-attending students of a class, rate desc with roll
// number asc as the deterministic tie-break.
func (r *AttendanceRepository) Top(ctx context.Context, classID string, limit int) ([]models.AttendanceSummaryRow, error) {
	const query = `SELECT
  s.id AS student_id,
  s.name AS student_name,
  s.roll_no,
  COALESCE(SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END), 0) AS present_count,
  COALESCE(SUM(CASE WHEN a.status = 'absent' THEN 1 ELSE 0 END), 0) AS absent_count,
  COUNT(a.id) AS total_count,
  COALESCE(ROUND(100.0 * SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END)::numeric / NULLIF(COUNT(a.id), 0), 1), 0) AS rate
FROM class_enrollments ce
JOIN students s ON s.id = ce.student_id
LEFT JOIN attendance a ON a.class_id = ce.class_id AND a.student_id = s.id
WHERE ce.class_id = $1 AND ce.status = 'approved'
GROUP BY s.id, s.name, s.roll_no
ORDER BY rate DESC, s.roll_no ASC
LIMIT $2`
	var rows []models.AttendanceSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, classID, limit); err != nil {
		return nil, fmt.Errorf("top attendance: %w", err)
	}
	return rows, nil
}
