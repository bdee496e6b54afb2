package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
)

type enrollmentRepository interface {
	ExistsActive(ctx context.Context, classID, studentID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	ResolvePending(ctx context.Context, id string, status models.EnrollmentStatus, cond scope.Condition) (*models.Enrollment, error)
	ListPendingInScope(ctx context.Context, cond scope.Condition) ([]models.EnrollmentRequestDetail, error)
	ListByStudent(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrolledClass, error)
}

type enrollmentClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ListAvailableForStudent(ctx context.Context, studentID string) ([]models.ClassDetail, error)
}

// EnrollmentService drives the request/approve/reject workflow.
type EnrollmentService struct {
	repo      enrollmentRepository
	classes   enrollmentClassRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(repo enrollmentRepository, classes enrollmentClassRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{repo: repo, classes: classes, cache: cache, validator: validate, logger: logger}
}

// Request files a pending enrollment for the calling student. A second
// request while one is pending or approved is a conflict; a rejected
// history row does not block a fresh request.
func (s *EnrollmentService) Request(ctx context.Context, actor scope.Actor, req models.EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if actor.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
	}

	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	active, err := s.repo.ExistsActive(ctx, req.ClassID, actor.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment request already exists for this class")
	}

	enrollment := &models.Enrollment{
		ClassID:   req.ClassID,
		StudentID: actor.StudentID,
		Status:    models.EnrollmentStatusPending,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment request already exists for this class")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	return enrollment, nil
}

// Approve moves a pending request to approved. The update is conditional
// on the row still being pending and inside the caller's scope; when two
// approvals race, the loser sees zero rows and reports not found.
func (s *EnrollmentService) Approve(ctx context.Context, actor scope.Actor, id string) (*models.Enrollment, error) {
	return s.resolve(ctx, actor, id, models.EnrollmentStatusApproved)
}

// Reject moves a pending request to rejected under the same conditions
// as Approve.
func (s *EnrollmentService) Reject(ctx context.Context, actor scope.Actor, id string) (*models.Enrollment, error) {
	return s.resolve(ctx, actor, id, models.EnrollmentStatusRejected)
}

func (s *EnrollmentService) resolve(ctx context.Context, actor scope.Actor, id string, status models.EnrollmentStatus) (*models.Enrollment, error) {
	cond, err := scope.ForClassColumn(actor, "ce.class_id")
	if err != nil {
		return nil, err
	}

	enrollment, err := s.repo.ResolvePending(ctx, id, status, cond)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Absent, already resolved and out of scope all collapse here
			// so callers cannot probe for rows they may not touch.
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve enrollment")
	}

	if status == models.EnrollmentStatusApproved && s.cache.Enabled() {
		s.invalidatePerformance(ctx, enrollment)
	}
	return enrollment, nil
}

func (s *EnrollmentService) invalidatePerformance(ctx context.Context, enrollment *models.Enrollment) {
	patterns := []string{
		fmt.Sprintf("performance:class:%s*", enrollment.ClassID),
		fmt.Sprintf("performance:student:%s*", enrollment.StudentID),
		"performance:department:*",
	}
	for _, p := range patterns {
		if err := s.cache.Invalidate(ctx, p); err != nil {
			s.logger.Warn("performance cache invalidation failed", zap.String("pattern", p), zap.Error(err))
		}
	}
}

// ListPending returns the pending requests inside the caller's scope,
// oldest last.
func (s *EnrollmentService) ListPending(ctx context.Context, actor scope.Actor) ([]models.EnrollmentRequestDetail, error) {
	cond, err := scope.ForClassColumn(actor, "ce.class_id")
	if err != nil {
		return nil, err
	}
	requests, err := s.repo.ListPendingInScope(ctx, cond)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollment requests")
	}
	return requests, nil
}

// ListMine returns the calling student's enrollments with the given
// status, defaulting to approved.
func (s *EnrollmentService) ListMine(ctx context.Context, actor scope.Actor, status models.EnrollmentStatus) ([]models.EnrolledClass, error) {
	if actor.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
	}
	if status == "" {
		status = models.EnrollmentStatusApproved
	}
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid enrollment status")
	}
	classes, err := s.repo.ListByStudent(ctx, actor.StudentID, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return classes, nil
}

// ListAvailable returns the classes the calling student has no pending or
// approved enrollment in.
func (s *EnrollmentService) ListAvailable(ctx context.Context, actor scope.Actor) ([]models.ClassDetail, error) {
	if actor.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
	}
	classes, err := s.classes.ListAvailableForStudent(ctx, actor.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available classes")
	}
	return classes, nil
}
