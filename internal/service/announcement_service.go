package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
)

type announcementRepository interface {
	Create(ctx context.Context, ann *models.Announcement) error
	ListByTeacher(ctx context.Context, teacherID string) ([]models.AnnouncementDetail, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.AnnouncementDetail, error)
	ListForDepartment(ctx context.Context, departmentID string) ([]models.AnnouncementDetail, error)
	ListAll(ctx context.Context) ([]models.AnnouncementDetail, error)
	Delete(ctx context.Context, id, teacherID string) (bool, error)
}

// AnnouncementService publishes and lists teacher announcements.
type AnnouncementService struct {
	repo      announcementRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs an AnnouncementService instance.
func NewAnnouncementService(repo announcementRepository, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AnnouncementService{repo: repo, validator: validate, logger: logger}
}

// Create publishes an announcement authored by the calling teacher.
func (s *AnnouncementService) Create(ctx context.Context, actor scope.Actor, req models.CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	if actor.TeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
	}

	ann := &models.Announcement{
		TeacherID: actor.TeacherID,
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, ann); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	return ann, nil
}

// List returns the announcements visible to the caller's role: a
// teacher's own, the announcements of a student's approved classes, a
// department's for HODs, everything for admins.
func (s *AnnouncementService) List(ctx context.Context, actor scope.Actor) ([]models.AnnouncementDetail, error) {
	var (
		anns []models.AnnouncementDetail
		err  error
	)
	switch actor.Role {
	case models.RoleTeacher:
		if actor.TeacherID == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
		}
		anns, err = s.repo.ListByTeacher(ctx, actor.TeacherID)
	case models.RoleStudent:
		if actor.StudentID == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
		}
		anns, err = s.repo.ListForStudent(ctx, actor.StudentID)
	case models.RoleHOD:
		if actor.DepartmentID == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "HOD has no department assigned")
		}
		anns, err = s.repo.ListForDepartment(ctx, actor.DepartmentID)
	case models.RoleAdmin:
		anns, err = s.repo.ListAll(ctx)
	default:
		return nil, appErrors.ErrForbidden
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return anns, nil
}

// Delete removes one of the calling teacher's announcements. Out-of-scope
// ids report not found.
func (s *AnnouncementService) Delete(ctx context.Context, actor scope.Actor, id string) error {
	if actor.TeacherID == "" {
		return appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
	}
	deleted, err := s.repo.Delete(ctx, id, actor.TeacherID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
	}
	return nil
}
