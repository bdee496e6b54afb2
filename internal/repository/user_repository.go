package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/college-api/internal/models"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err stems from a unique constraint.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// UserRepository handles account rows and the registration transactions that
// create an account together with its profile.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns the account with the given email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, role, created_at FROM users WHERE email = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns the account with the given id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, role, created_at FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateTeacher inserts the account and teacher profile in one transaction;
// a failure on either insert rolls back both.
func (r *UserRepository) CreateTeacher(ctx context.Context, email, passwordHash, name string, departmentID *string) (*models.User, *models.Teacher, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin register teacher: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	user := models.User{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash, Role: models.RoleTeacher, CreatedAt: time.Now().UTC()}
	const userQuery = `INSERT INTO users (id, email, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, userQuery, user.ID, user.Email, user.PasswordHash, user.Role, user.CreatedAt); err != nil {
		return nil, nil, fmt.Errorf("insert user: %w", err)
	}

	teacher := models.Teacher{ID: uuid.NewString(), Name: name, DepartmentID: departmentID, UserID: user.ID}
	const teacherQuery = `INSERT INTO teachers (id, name, department_id, user_id) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, teacherQuery, teacher.ID, teacher.Name, teacher.DepartmentID, teacher.UserID); err != nil {
		return nil, nil, fmt.Errorf("insert teacher: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit register teacher: %w", err)
	}
	committed = true
	return &user, &teacher, nil
}

// CreateStudent inserts the account and student profile in one transaction.
func (r *UserRepository) CreateStudent(ctx context.Context, email, passwordHash, name, rollNo string, year int, classID *string) (*models.User, *models.Student, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin register student: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	user := models.User{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash, Role: models.RoleStudent, CreatedAt: time.Now().UTC()}
	const userQuery = `INSERT INTO users (id, email, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, userQuery, user.ID, user.Email, user.PasswordHash, user.Role, user.CreatedAt); err != nil {
		return nil, nil, fmt.Errorf("insert user: %w", err)
	}

	student := models.Student{ID: uuid.NewString(), RollNo: rollNo, Name: name, ClassID: classID, Year: year, UserID: user.ID, CreatedAt: time.Now().UTC()}
	const studentQuery = `INSERT INTO students (id, roll_no, name, class_id, year, user_id, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, studentQuery, student.ID, student.RollNo, student.Name, student.ClassID, student.Year, student.UserID, student.CreatedAt); err != nil {
		return nil, nil, fmt.Errorf("insert student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit register student: %w", err)
	}
	committed = true
	return &user, &student, nil
}
