package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryExistsActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM class_enrollments WHERE class_id = $1 AND student_id = $2 AND status IN ('pending', 'approved') LIMIT 1")).
		WithArgs("class-1", "stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsActive(context.Background(), "class-1", "stu-1")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExistsActiveNoRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM class_enrollments").
		WithArgs("class-1", "stu-1").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsActive(context.Background(), "class-1", "stu-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEnrollmentRepositoryResolvePending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	cond := scope.Condition{Expr: "ce.class_id IN (SELECT id FROM classes WHERE teacher_id = ?)", Args: []interface{}{"tea-1"}}
	rows := sqlmock.NewRows([]string{"id", "class_id", "student_id", "status", "created_at"}).
		AddRow("enr-1", "class-1", "stu-1", models.EnrollmentStatusApproved, time.Now())
	mock.ExpectQuery("UPDATE class_enrollments ce SET status = .+ AND ce.status = 'pending' AND ce.class_id IN .+RETURNING").
		WithArgs(models.EnrollmentStatusApproved, "enr-1", "tea-1").
		WillReturnRows(rows)

	enrollment, err := repo.ResolvePending(context.Background(), "enr-1", models.EnrollmentStatusApproved, cond)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusApproved, enrollment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryResolvePendingZeroRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("UPDATE class_enrollments ce SET status = ").
		WithArgs(models.EnrollmentStatusApproved, "enr-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "student_id", "status", "created_at"}))

	_, err := repo.ResolvePending(context.Background(), "enr-1", models.EnrollmentStatusApproved, scope.True())
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEnrollmentRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"class_id", "class_name", "year", "subject_name", "teacher_name", "status"}).
		AddRow("class-1", "CS-3A", 3, "Algorithms", "Prof. Rao", models.EnrollmentStatusApproved)
	mock.ExpectQuery("SELECT c.id AS class_id, c.name AS class_name, c.year, s.name AS subject_name, t.name AS teacher_name, ce.status").
		WithArgs("stu-1", models.EnrollmentStatusApproved).
		WillReturnRows(rows)

	classes, err := repo.ListByStudent(context.Background(), "stu-1", models.EnrollmentStatusApproved)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "Algorithms", classes[0].SubjectName)
}

func TestEnrollmentRepositoryApprovedStudentIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id"}).AddRow("stu-1")
	mock.ExpectQuery("SELECT student_id FROM class_enrollments WHERE class_id = .+ AND status = 'approved' AND student_id IN").
		WithArgs("class-1", "stu-1", "stu-2").
		WillReturnRows(rows)

	approved, err := repo.ApprovedStudentIDs(context.Background(), "class-1", []string{"stu-1", "stu-2"})
	require.NoError(t, err)
	assert.True(t, approved["stu-1"])
	assert.False(t, approved["stu-2"])
}

func TestEnrollmentRepositoryApprovedStudentIDsEmptyInput(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	approved, err := repo.ApprovedStudentIDs(context.Background(), "class-1", nil)
	require.NoError(t, err)
	assert.Empty(t, approved)
}
