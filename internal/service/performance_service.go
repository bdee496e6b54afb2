package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/repository"
	"github.com/noah-isme/college-api/internal/scope"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
	"github.com/noah-isme/college-api/pkg/export"
)

type performanceRepository interface {
	StudentOverallScore(ctx context.Context, studentID string) (*repository.OverallScore, error)
	StudentAttendanceCounts(ctx context.Context, studentID string) (*repository.AttendanceCounts, error)
	RankAmongPeers(ctx context.Context, studentID string) (*repository.PeerRank, error)
	SubjectScores(ctx context.Context, studentID string) ([]models.SubjectPerformance, error)
	SubjectAttendance(ctx context.Context, studentID string) ([]repository.SubjectAttendanceRow, error)
	ClassPerformance(ctx context.Context, classID string) ([]models.ClassPerformanceRow, error)
	DepartmentPerformance(ctx context.Context, departmentID string) ([]models.DepartmentClassPerformance, error)
	TrendByExamType(ctx context.Context, studentID string) ([]models.TrendPoint, error)
}

type performanceClassRepository interface {
	ExistsInScope(ctx context.Context, classID string, cond scope.Condition) (bool, error)
}

// PerformanceService composes the read-side percentage, rank and trend
// views. It never writes domain rows; only the cache.
type PerformanceService struct {
	repo     performanceRepository
	classes  performanceClassRepository
	cache    *CacheService
	cacheTTL time.Duration
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewPerformanceService constructs a PerformanceService instance.
func NewPerformanceService(repo performanceRepository, classes performanceClassRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *PerformanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceService{
		repo:     repo,
		classes:  classes,
		cache:    cache,
		cacheTTL: cacheTTL,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// MyPerformance returns the calling student's own summary.
func (s *PerformanceService) MyPerformance(ctx context.Context, actor scope.Actor) (*models.MyPerformance, error) {
	if actor.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
	}

	key := fmt.Sprintf("performance:student:%s", actor.StudentID)
	var cached models.MyPerformance
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	overall, err := s.repo.StudentOverallScore(ctx, actor.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate scores")
	}

	counts, err := s.repo.StudentAttendanceCounts(ctx, actor.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}
	var attendancePct int
	if counts.Total > 0 {
		attendancePct = int(math.Round(100 * float64(counts.Present) / float64(counts.Total)))
	}

	rank, err := s.repo.RankAmongPeers(ctx, actor.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank student")
	}

	subjects, err := s.repo.SubjectScores(ctx, actor.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subject scores")
	}
	attendanceRows, err := s.repo.SubjectAttendance(ctx, actor.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subject attendance")
	}
	attendanceBySubject := make(map[string]float64, len(attendanceRows))
	for _, row := range attendanceRows {
		attendanceBySubject[row.Name] = clampPct(row.Pct)
	}
	for i := range subjects {
		subjects[i].AvgScore = clampPct(subjects[i].AvgScore)
		subjects[i].AttendancePct = attendanceBySubject[subjects[i].Name]
	}

	perf := &models.MyPerformance{
		AvgScore:      clampPct(overall.AvgScore),
		AttendancePct: clampIntPct(attendancePct),
		SubjectCount:  overall.SubjectCount,
		Rank:          rank.Rank,
		TotalStudents: rank.TotalStudents,
		Subjects:      subjects,
	}

	if err := s.cache.Set(ctx, key, perf, s.cacheTTL); err != nil {
		s.logger.Warn("performance cache write failed", zap.String("key", key), zap.Error(err))
	}
	return perf, nil
}

// ClassPerformance returns ranked per-student aggregates for a class in
// the caller's scope. Ranks are sequential row positions after sorting
// by score percentage descending then roll number ascending.
func (s *PerformanceService) ClassPerformance(ctx context.Context, actor scope.Actor, classID string) ([]models.ClassPerformanceRow, error) {
	cond, err := scope.ForClass(actor, "c")
	if err != nil {
		return nil, err
	}
	ok, err := s.classes.ExistsInScope(ctx, classID, cond)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class is outside your scope")
	}

	key := fmt.Sprintf("performance:class:%s", classID)
	var cached []models.ClassPerformanceRow
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	rows, err := s.repo.ClassPerformance(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate class performance")
	}
	for i := range rows {
		rows[i].AvgScore = clampPct(rows[i].AvgScore)
		rows[i].AttendancePct = clampPct(rows[i].AttendancePct)
		rows[i].Rank = i + 1
	}

	if err := s.cache.Set(ctx, key, rows, s.cacheTTL); err != nil {
		s.logger.Warn("performance cache write failed", zap.String("key", key), zap.Error(err))
	}
	return rows, nil
}

// DepartmentPerformance returns the per-class rollup for the calling
// HOD's department.
func (s *PerformanceService) DepartmentPerformance(ctx context.Context, actor scope.Actor) ([]models.DepartmentClassPerformance, error) {
	if actor.DepartmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "HOD has no department assigned")
	}

	key := fmt.Sprintf("performance:department:%s", actor.DepartmentID)
	var cached []models.DepartmentClassPerformance
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	rows, err := s.repo.DepartmentPerformance(ctx, actor.DepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate department performance")
	}
	for i := range rows {
		rows[i].AvgScore = clampPct(rows[i].AvgScore)
		rows[i].AvgAttendance = clampPct(rows[i].AvgAttendance)
	}

	if err := s.cache.Set(ctx, key, rows, s.cacheTTL); err != nil {
		s.logger.Warn("performance cache write failed", zap.String("key", key), zap.Error(err))
	}
	return rows, nil
}

// MyTrend returns the calling student's score percentage per exam type
// in the fixed internal, midterm, final precedence.
func (s *PerformanceService) MyTrend(ctx context.Context, actor scope.Actor) ([]models.TrendPoint, error) {
	if actor.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
	}

	key := fmt.Sprintf("performance:student:%s:trend", actor.StudentID)
	var cached []models.TrendPoint
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	points, err := s.repo.TrendByExamType(ctx, actor.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate trend")
	}
	for i := range points {
		points[i].Percentage = clampPct(points[i].Percentage)
	}

	if err := s.cache.Set(ctx, key, points, s.cacheTTL); err != nil {
		s.logger.Warn("performance cache write failed", zap.String("key", key), zap.Error(err))
	}
	return points, nil
}

// ExportClassPerformance renders the class performance table as CSV or
// PDF bytes.
func (s *PerformanceService) ExportClassPerformance(ctx context.Context, actor scope.Actor, classID, format string) ([]byte, string, error) {
	rows, err := s.ClassPerformance(ctx, actor, classID)
	if err != nil {
		return nil, "", err
	}

	data := export.Dataset{
		Headers: []string{"rank", "roll_no", "name", "avg_score", "attendance_pct"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"rank":           strconv.Itoa(row.Rank),
			"roll_no":        row.RollNo,
			"name":           row.Name,
			"avg_score":      strconv.FormatFloat(row.AvgScore, 'f', 1, 64),
			"attendance_pct": strconv.FormatFloat(row.AttendancePct, 'f', 1, 64),
		})
	}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(data, "Class performance")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format, expected csv or pdf")
	}
}

// clampPct keeps percentage outputs inside [0, 100] even when stored
// totals are malformed.
func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampIntPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
