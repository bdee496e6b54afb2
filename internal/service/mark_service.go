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

type markRepository interface {
	Create(ctx context.Context, mark *models.Mark) error
	FindInScope(ctx context.Context, id string, cond scope.Condition) (*models.Mark, error)
	UpdateScore(ctx context.Context, id string, score, totalMarks float64) error
	ListInScope(ctx context.Context, cond scope.Condition) ([]models.MarkDetail, error)
	ListByClass(ctx context.Context, classID, teacherID string) ([]models.MarkDetail, error)
	ListMine(ctx context.Context, studentID string) ([]models.StudentMark, error)
	ListMineByClass(ctx context.Context, classID, studentID string) ([]models.StudentMark, error)
	SubjectDifficulty(ctx context.Context, cond scope.Condition, limit int) ([]models.SubjectDifficultyRow, error)
}

type markClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ExistsInScope(ctx context.Context, classID string, cond scope.Condition) (bool, error)
}

type markEnrollmentRepository interface {
	HasApproved(ctx context.Context, classID, studentID string) (bool, error)
}

// MarkService records and reads exam scores. Every write re-checks the
// score-within-total invariant against the total that will actually be
// stored.
type MarkService struct {
	repo        markRepository
	classes     markClassRepository
	enrollments markEnrollmentRepository
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewMarkService constructs a MarkService instance.
func NewMarkService(repo markRepository, classes markClassRepository, enrollments markEnrollmentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *MarkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MarkService{repo: repo, classes: classes, enrollments: enrollments, cache: cache, validator: validate, logger: logger}
}

// Create records a new mark authored by the calling teacher. When the
// mark is tied to a class, the class must be in the caller's scope, its
// subject must match the mark's subject, and the student must hold an
// approved enrollment.
func (s *MarkService) Create(ctx context.Context, actor scope.Actor, req models.CreateMarkRequest) (*models.Mark, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}
	if actor.TeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
	}
	if err := validateScore(req.Score, req.TotalMarks); err != nil {
		return nil, err
	}

	var classID *string
	if req.ClassID != "" {
		cond, err := scope.ForClass(actor, "c")
		if err != nil {
			return nil, err
		}
		ok, err := s.classes.ExistsInScope(ctx, req.ClassID, cond)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
		}
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "class is outside your scope")
		}

		class, err := s.classes.FindByID(ctx, req.ClassID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
		if class.SubjectID != req.SubjectID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject does not match the class subject")
		}

		enrolled, err := s.enrollments.HasApproved(ctx, req.ClassID, req.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
		}
		if !enrolled {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student has no approved enrollment in this class")
		}
		classID = &req.ClassID
	}

	mark := &models.Mark{
		StudentID:  req.StudentID,
		SubjectID:  req.SubjectID,
		TeacherID:  actor.TeacherID,
		ClassID:    classID,
		Score:      req.Score,
		TotalMarks: req.TotalMarks,
		ExamType:   req.ExamType,
		Year:       req.Year,
	}
	if err := s.repo.Create(ctx, mark); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mark")
	}

	s.invalidatePerformance(ctx, mark)
	return mark, nil
}

// Update corrects the score of a mark owned by the calling teacher. When
// no new total is supplied, the stored total still bounds the new score.
func (s *MarkService) Update(ctx context.Context, actor scope.Actor, id string, req models.UpdateMarkRequest) (*models.Mark, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}
	if actor.Role != models.RoleTeacher || actor.TeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the authoring teacher can update marks")
	}

	cond, err := scope.ForMark(actor, "m")
	if err != nil {
		return nil, err
	}
	mark, err := s.repo.FindInScope(ctx, id, cond)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mark not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mark")
	}

	total := mark.TotalMarks
	if req.TotalMarks != nil {
		total = *req.TotalMarks
	}
	if err := validateScore(req.Score, total); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateScore(ctx, id, req.Score, total); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update mark")
	}
	mark.Score = req.Score
	mark.TotalMarks = total

	s.invalidatePerformance(ctx, mark)
	return mark, nil
}

// GetByID returns a mark in the caller's scope; out-of-scope ids report
// not found.
func (s *MarkService) GetByID(ctx context.Context, actor scope.Actor, id string) (*models.Mark, error) {
	cond, err := scope.ForMark(actor, "m")
	if err != nil {
		return nil, err
	}
	mark, err := s.repo.FindInScope(ctx, id, cond)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mark not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mark")
	}
	return mark, nil
}

// List returns the marks inside the caller's scope with roster context.
func (s *MarkService) List(ctx context.Context, actor scope.Actor) ([]models.MarkDetail, error) {
	cond, err := scope.ForMark(actor, "m")
	if err != nil {
		return nil, err
	}
	marks, err := s.repo.ListInScope(ctx, cond)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
	}
	return marks, nil
}

// ListByClass returns the calling teacher's marks for one class.
func (s *MarkService) ListByClass(ctx context.Context, actor scope.Actor, classID string) ([]models.MarkDetail, error) {
	if actor.TeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
	}
	marks, err := s.repo.ListByClass(ctx, classID, actor.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
	}
	return marks, nil
}

// ListMine returns the calling student's own marks.
func (s *MarkService) ListMine(ctx context.Context, actor scope.Actor) ([]models.StudentMark, error) {
	if actor.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
	}
	marks, err := s.repo.ListMine(ctx, actor.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
	}
	return marks, nil
}

// ListMineByClass returns the calling student's own marks for one class.
func (s *MarkService) ListMineByClass(ctx context.Context, actor scope.Actor, classID string) ([]models.StudentMark, error) {
	if actor.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
	}
	marks, err := s.repo.ListMineByClass(ctx, classID, actor.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
	}
	return marks, nil
}

// SubjectDifficulty lists the five lowest-averaging subjects in the
// caller's scope.
func (s *MarkService) SubjectDifficulty(ctx context.Context, actor scope.Actor) ([]models.SubjectDifficultyRow, error) {
	cond, err := scope.ForMark(actor, "m")
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.SubjectDifficulty(ctx, cond, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank subjects")
	}
	return rows, nil
}

func (s *MarkService) invalidatePerformance(ctx context.Context, mark *models.Mark) {
	if !s.cache.Enabled() {
		return
	}
	patterns := []string{
		fmt.Sprintf("performance:student:%s*", mark.StudentID),
		"performance:department:*",
	}
	if mark.ClassID != nil {
		patterns = append(patterns, fmt.Sprintf("performance:class:%s*", *mark.ClassID))
	}
	for _, p := range patterns {
		if err := s.cache.Invalidate(ctx, p); err != nil {
			s.logger.Warn("performance cache invalidation failed", zap.String("pattern", p), zap.Error(err))
		}
	}
}

// validateScore enforces 0 <= score <= total with total > 0.
func validateScore(score, total float64) error {
	if total <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "total marks must be greater than zero")
	}
	if score < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "score cannot be negative")
	}
	if score > total {
		return appErrors.Clone(appErrors.ErrValidation, "score cannot exceed total marks")
	}
	return nil
}
