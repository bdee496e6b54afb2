package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
)

type studentRepository interface {
	FindProfileByUser(ctx context.Context, userID string) (*models.StudentProfile, error)
	ListAll(ctx context.Context) ([]models.StudentSummary, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]models.StudentSummary, error)
}

// StudentService reads student profiles and listings.
type StudentService struct {
	repo   studentRepository
	logger *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(repo studentRepository, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, logger: logger}
}

// MyProfile returns the calling student's own profile.
func (s *StudentService) MyProfile(ctx context.Context, actor scope.Actor) (*models.StudentProfile, error) {
	profile, err := s.repo.FindProfileByUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// List returns students visible to the caller: all of them for admins,
// the department's for HODs.
func (s *StudentService) List(ctx context.Context, actor scope.Actor) ([]models.StudentSummary, error) {
	switch actor.Role {
	case models.RoleAdmin:
		students, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
		}
		return students, nil
	case models.RoleHOD:
		if actor.DepartmentID == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "HOD has no department assigned")
		}
		students, err := s.repo.ListByDepartment(ctx, actor.DepartmentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
		}
		return students, nil
	default:
		return nil, appErrors.ErrForbidden
	}
}
