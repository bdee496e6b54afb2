package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
)

type classRepository interface {
	Create(ctx context.Context, class *models.Class) error
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ExistsInScope(ctx context.Context, classID string, cond scope.Condition) (bool, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]models.ClassDetail, error)
	ListApprovedStudents(ctx context.Context, classID string) ([]models.StudentSummary, error)
}

type classSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// ClassService manages classes and their rosters.
type ClassService struct {
	repo      classRepository
	subjects  classSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService instance.
func NewClassService(repo classRepository, subjects classSubjectRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, subjects: subjects, validator: validate, logger: logger}
}

// Create opens a new class owned by the calling teacher.
func (s *ClassService) Create(ctx context.Context, actor scope.Actor, req models.CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if actor.TeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	class := &models.Class{
		Name:      req.Name,
		SubjectID: req.SubjectID,
		TeacherID: actor.TeacherID,
		Year:      req.Year,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// GetByID returns a class in the caller's scope.
func (s *ClassService) GetByID(ctx context.Context, actor scope.Actor, id string) (*models.Class, error) {
	cond, err := scope.ForClass(actor, "c")
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.ExistsInScope(ctx, id, cond)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// ListMine returns the calling teacher's classes.
func (s *ClassService) ListMine(ctx context.Context, actor scope.Actor) ([]models.Class, error) {
	if actor.TeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
	}
	classes, err := s.repo.ListByTeacher(ctx, actor.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// ListDepartment returns the classes taught in the calling HOD's
// department.
func (s *ClassService) ListDepartment(ctx context.Context, actor scope.Actor) ([]models.ClassDetail, error) {
	if actor.DepartmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "HOD has no department assigned")
	}
	classes, err := s.repo.ListByDepartment(ctx, actor.DepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// ListApprovedStudents returns the approved roster of a class in the
// caller's scope.
func (s *ClassService) ListApprovedStudents(ctx context.Context, actor scope.Actor, classID string) ([]models.StudentSummary, error) {
	cond, err := scope.ForClass(actor, "c")
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.ExistsInScope(ctx, classID, cond)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class is outside your scope")
	}
	students, err := s.repo.ListApprovedStudents(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}
