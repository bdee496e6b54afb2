package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type attendanceRepository interface {
	UpsertBatch(ctx context.Context, classID string, date time.Time, records []models.Attendance) error
	Upsert(ctx context.Context, record *models.Attendance) error
	ListByDate(ctx context.Context, classID string, date time.Time) ([]models.AttendanceRow, error)
	ListForStudent(ctx context.Context, classID, studentID string) ([]models.AttendanceDay, error)
	ListMineRange(ctx context.Context, studentID string, from, to *time.Time) ([]models.AttendanceDay, error)
	Summary(ctx context.Context, classID string) ([]models.AttendanceSummaryRow, error)
	Top(ctx context.Context, classID string, limit int) ([]models.AttendanceSummaryRow, error)
}

type attendanceClassRepository interface {
	ExistsInScope(ctx context.Context, classID string, cond scope.Condition) (bool, error)
}

type attendanceEnrollmentRepository interface {
	HasApproved(ctx context.Context, classID, studentID string) (bool, error)
	ApprovedStudentIDs(ctx context.Context, classID string, studentIDs []string) (map[string]bool, error)
}

// AttendanceService records and reads attendance. All checks run before
// any write; a batch either lands whole or not at all.
type AttendanceService struct {
	repo        attendanceRepository
	classes     attendanceClassRepository
	enrollments attendanceEnrollmentRepository
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(repo attendanceRepository, classes attendanceClassRepository, enrollments attendanceEnrollmentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, classes: classes, enrollments: enrollments, cache: cache, validator: validate, logger: logger}
}

// RecordBatch records a whole class-day roster. Re-submitting a (class,
// student, date) key overwrites the stored status.
func (s *AttendanceService) RecordBatch(ctx context.Context, actor scope.Actor, req models.AttendanceBatchRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	if err := s.requireClassOwned(ctx, actor, req.ClassID); err != nil {
		return err
	}

	date, err := parseAttendanceDate(req.Date)
	if err != nil {
		return err
	}

	records := make([]models.Attendance, 0, len(req.Records))
	seen := make(map[string]bool, len(req.Records))
	ids := make([]string, 0, len(req.Records))
	for _, entry := range req.Records {
		if !entry.Status.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid attendance status %q", entry.Status))
		}
		if seen[entry.StudentID] {
			return appErrors.Clone(appErrors.ErrValidation, "duplicate student in attendance batch")
		}
		seen[entry.StudentID] = true
		ids = append(ids, entry.StudentID)
		records = append(records, models.Attendance{
			ClassID:   req.ClassID,
			StudentID: entry.StudentID,
			Date:      date,
			Status:    entry.Status,
		})
	}

	approved, err := s.enrollments.ApprovedStudentIDs(ctx, req.ClassID, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollments")
	}
	for _, id := range ids {
		if !approved[id] {
			return appErrors.Clone(appErrors.ErrForbidden, "batch contains a student without approved enrollment in this class")
		}
	}

	if err := s.repo.UpsertBatch(ctx, req.ClassID, date, records); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	s.invalidatePerformance(ctx, req.ClassID, ids)
	return nil
}

// RecordSingle records or corrects one student's status for a date.
func (s *AttendanceService) RecordSingle(ctx context.Context, actor scope.Actor, req models.AttendanceSingleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	if err := s.requireClassOwned(ctx, actor, req.ClassID); err != nil {
		return err
	}

	date, err := parseAttendanceDate(req.Date)
	if err != nil {
		return err
	}
	if !req.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid attendance status %q", req.Status))
	}

	enrolled, err := s.enrollments.HasApproved(ctx, req.ClassID, req.StudentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return appErrors.Clone(appErrors.ErrForbidden, "student has no approved enrollment in this class")
	}

	record := &models.Attendance{
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		Date:      date,
		Status:    req.Status,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	s.invalidatePerformance(ctx, req.ClassID, []string{req.StudentID})
	return nil
}

// ListByDate returns the class-day roster for a class in scope.
func (s *AttendanceService) ListByDate(ctx context.Context, actor scope.Actor, classID, dateStr string) ([]models.AttendanceRow, error) {
	if err := s.requireClassInScope(ctx, actor, classID); err != nil {
		return nil, err
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	rows, err := s.repo.ListByDate(ctx, classID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return rows, nil
}

// ListForStudent returns one student's attendance within a class in scope.
func (s *AttendanceService) ListForStudent(ctx context.Context, actor scope.Actor, classID, studentID string) ([]models.AttendanceDay, error) {
	if err := s.requireClassInScope(ctx, actor, classID); err != nil {
		return nil, err
	}
	days, err := s.repo.ListForStudent(ctx, classID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return days, nil
}

// ListMine returns the calling student's own attendance, optionally
// bounded by from/to dates.
func (s *AttendanceService) ListMine(ctx context.Context, actor scope.Actor, fromStr, toStr string) ([]models.AttendanceDay, error) {
	if actor.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
	}
	var from, to *time.Time
	if fromStr != "" {
		t, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid from date, expected YYYY-MM-DD")
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid to date, expected YYYY-MM-DD")
		}
		to = &t
	}
	days, err := s.repo.ListMineRange(ctx, actor.StudentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return days, nil
}

// Summary aggregates per-student session counts for a class in scope.
func (s *AttendanceService) Summary(ctx context.Context, actor scope.Actor, classID string) ([]models.AttendanceSummaryRow, error) {
	if err := s.requireClassInScope(ctx, actor, classID); err != nil {
		return nil, err
	}
	rows, err := s.repo.Summary(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarize attendance")
	}
	return rows, nil
}

// Top returns the five best-attending students of a class in scope.
func (s *AttendanceService) Top(ctx context.Context, actor scope.Actor, classID string) ([]models.AttendanceSummaryRow, error) {
	if err := s.requireClassInScope(ctx, actor, classID); err != nil {
		return nil, err
	}
	rows, err := s.repo.Top(ctx, classID, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank attendance")
	}
	return rows, nil
}

// requireClassOwned gates writes to the class's own teacher. Wider read
// scopes (hod, admin) never reach a write path through it.
func (s *AttendanceService) requireClassOwned(ctx context.Context, actor scope.Actor, classID string) error {
	if actor.Role != models.RoleTeacher || actor.TeacherID == "" {
		return appErrors.Clone(appErrors.ErrForbidden, "only the class teacher can record attendance")
	}
	return s.requireClassInScope(ctx, actor, classID)
}

func (s *AttendanceService) requireClassInScope(ctx context.Context, actor scope.Actor, classID string) error {
	cond, err := scope.ForClass(actor, "c")
	if err != nil {
		return err
	}
	ok, err := s.classes.ExistsInScope(ctx, classID, cond)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, "class is outside your scope")
	}
	return nil
}

func (s *AttendanceService) invalidatePerformance(ctx context.Context, classID string, studentIDs []string) {
	if !s.cache.Enabled() {
		return
	}
	patterns := make([]string, 0, len(studentIDs)+2)
	patterns = append(patterns, fmt.Sprintf("performance:class:%s*", classID), "performance:department:*")
	for _, id := range studentIDs {
		patterns = append(patterns, fmt.Sprintf("performance:student:%s*", id))
	}
	for _, p := range patterns {
		if err := s.cache.Invalidate(ctx, p); err != nil {
			s.logger.Warn("performance cache invalidation failed", zap.String("pattern", p), zap.Error(err))
		}
	}
}

// parseAttendanceDate validates the wire format and rejects Sundays,
// which are never teaching days.
func parseAttendanceDate(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	if date.Weekday() == time.Sunday {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "attendance cannot be recorded on a Sunday")
	}
	return date, nil
}
