package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/repository"
	"github.com/noah-isme/college-api/internal/scope"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
)

type mockPerformanceRepo struct {
	overall     repository.OverallScore
	counts      repository.AttendanceCounts
	rank        repository.PeerRank
	subjects    []models.SubjectPerformance
	attendance  []repository.SubjectAttendanceRow
	classRows   []models.ClassPerformanceRow
	deptRows    []models.DepartmentClassPerformance
	trend       []models.TrendPoint
	overallHits int
}

func (m *mockPerformanceRepo) StudentOverallScore(ctx context.Context, studentID string) (*repository.OverallScore, error) {
	m.overallHits++
	overall := m.overall
	return &overall, nil
}

func (m *mockPerformanceRepo) StudentAttendanceCounts(ctx context.Context, studentID string) (*repository.AttendanceCounts, error) {
	counts := m.counts
	return &counts, nil
}

func (m *mockPerformanceRepo) RankAmongPeers(ctx context.Context, studentID string) (*repository.PeerRank, error) {
	rank := m.rank
	return &rank, nil
}

func (m *mockPerformanceRepo) SubjectScores(ctx context.Context, studentID string) ([]models.SubjectPerformance, error) {
	return m.subjects, nil
}

func (m *mockPerformanceRepo) SubjectAttendance(ctx context.Context, studentID string) ([]repository.SubjectAttendanceRow, error) {
	return m.attendance, nil
}

func (m *mockPerformanceRepo) ClassPerformance(ctx context.Context, classID string) ([]models.ClassPerformanceRow, error) {
	return m.classRows, nil
}

func (m *mockPerformanceRepo) DepartmentPerformance(ctx context.Context, departmentID string) ([]models.DepartmentClassPerformance, error) {
	return m.deptRows, nil
}

func (m *mockPerformanceRepo) TrendByExamType(ctx context.Context, studentID string) ([]models.TrendPoint, error) {
	return m.trend, nil
}

type mockPerformanceClassRepo struct {
	inScope map[string]bool
}

func (m *mockPerformanceClassRepo) ExistsInScope(ctx context.Context, classID string, cond scope.Condition) (bool, error) {
	return m.inScope[classID], nil
}

type mockCacheRepo struct {
	entries map[string][]byte
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = payload
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return nil
}

func TestPerformanceServiceMyPerformance(t *testing.T) {
	repo := &mockPerformanceRepo{
		overall: repository.OverallScore{AvgScore: 21.5, SubjectCount: 2},
		counts:  repository.AttendanceCounts{Present: 0, Total: 0},
		rank:    repository.PeerRank{Rank: 1, TotalStudents: 1},
		subjects: []models.SubjectPerformance{
			{Name: "Math", AvgScore: 18},
			{Name: "Physics", AvgScore: 25},
		},
	}
	svc := NewPerformanceService(repo, &mockPerformanceClassRepo{}, nil, time.Minute, zap.NewNop())

	perf, err := svc.MyPerformance(context.Background(), studentActor())
	require.NoError(t, err)
	assert.Equal(t, 21.5, perf.AvgScore)
	assert.Equal(t, 0, perf.AttendancePct)
	assert.Equal(t, 2, perf.SubjectCount)
	assert.Equal(t, 1, perf.Rank)
	assert.Equal(t, 1, perf.TotalStudents)
	require.Len(t, perf.Subjects, 2)
	assert.Equal(t, 18.0, perf.Subjects[0].AvgScore)
	assert.Equal(t, 0.0, perf.Subjects[0].AttendancePct)
	assert.Equal(t, 25.0, perf.Subjects[1].AvgScore)
}

func TestPerformanceServiceMyPerformanceRoundsAttendance(t *testing.T) {
	repo := &mockPerformanceRepo{
		overall: repository.OverallScore{AvgScore: 80, SubjectCount: 1},
		counts:  repository.AttendanceCounts{Present: 2, Total: 3},
		rank:    repository.PeerRank{Rank: 1, TotalStudents: 2},
	}
	svc := NewPerformanceService(repo, &mockPerformanceClassRepo{}, nil, time.Minute, zap.NewNop())

	perf, err := svc.MyPerformance(context.Background(), studentActor())
	require.NoError(t, err)
	assert.Equal(t, 67, perf.AttendancePct)
}

func TestPerformanceServiceMyPerformanceClampsScores(t *testing.T) {
	repo := &mockPerformanceRepo{
		overall:  repository.OverallScore{AvgScore: 137.2, SubjectCount: 1},
		rank:     repository.PeerRank{Rank: 1, TotalStudents: 1},
		subjects: []models.SubjectPerformance{{Name: "Math", AvgScore: 137.2}},
	}
	svc := NewPerformanceService(repo, &mockPerformanceClassRepo{}, nil, time.Minute, zap.NewNop())

	perf, err := svc.MyPerformance(context.Background(), studentActor())
	require.NoError(t, err)
	assert.Equal(t, 100.0, perf.AvgScore)
	assert.Equal(t, 100.0, perf.Subjects[0].AvgScore)
}

func TestPerformanceServiceMyPerformanceRequiresStudentProfile(t *testing.T) {
	svc := NewPerformanceService(&mockPerformanceRepo{}, &mockPerformanceClassRepo{}, nil, time.Minute, zap.NewNop())

	_, err := svc.MyPerformance(context.Background(), teacherActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPerformanceServiceMyPerformanceCached(t *testing.T) {
	repo := &mockPerformanceRepo{
		overall: repository.OverallScore{AvgScore: 50, SubjectCount: 1},
		rank:    repository.PeerRank{Rank: 1, TotalStudents: 1},
	}
	cache := NewCacheService(&mockCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewPerformanceService(repo, &mockPerformanceClassRepo{}, cache, time.Minute, zap.NewNop())

	_, err := svc.MyPerformance(context.Background(), studentActor())
	require.NoError(t, err)
	perf, err := svc.MyPerformance(context.Background(), studentActor())
	require.NoError(t, err)
	assert.Equal(t, 50.0, perf.AvgScore)
	assert.Equal(t, 1, repo.overallHits)
}

func TestPerformanceServiceClassPerformanceRanks(t *testing.T) {
	repo := &mockPerformanceRepo{classRows: []models.ClassPerformanceRow{
		{StudentID: "s1", Name: "Aisha", RollNo: "01", AvgScore: 91.4, AttendancePct: 88},
		{StudentID: "s2", Name: "Brijesh", RollNo: "02", AvgScore: 77.0, AttendancePct: 120},
		{StudentID: "s3", Name: "Chitra", RollNo: "03", AvgScore: 77.0, AttendancePct: 60},
	}}
	classes := &mockPerformanceClassRepo{inScope: map[string]bool{testClassID: true}}
	svc := NewPerformanceService(repo, classes, nil, time.Minute, zap.NewNop())

	rows, err := svc.ClassPerformance(context.Background(), teacherActor(), testClassID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].Rank, rows[1].Rank, rows[2].Rank})
	assert.Equal(t, 100.0, rows[1].AttendancePct)
}

func TestPerformanceServiceClassPerformanceOutOfScope(t *testing.T) {
	svc := NewPerformanceService(&mockPerformanceRepo{}, &mockPerformanceClassRepo{}, nil, time.Minute, zap.NewNop())

	_, err := svc.ClassPerformance(context.Background(), teacherActor(), testClassID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPerformanceServiceDepartmentPerformanceRequiresDepartment(t *testing.T) {
	svc := NewPerformanceService(&mockPerformanceRepo{}, &mockPerformanceClassRepo{}, nil, time.Minute, zap.NewNop())

	actor := scope.Actor{Role: models.RoleHOD, TeacherID: "tea-1"}
	_, err := svc.DepartmentPerformance(context.Background(), actor)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPerformanceServiceMyTrend(t *testing.T) {
	repo := &mockPerformanceRepo{trend: []models.TrendPoint{
		{Exam: models.ExamTypeInternal, Percentage: 62.0},
		{Exam: models.ExamTypeMidterm, Percentage: 71.5},
		{Exam: models.ExamTypeFinal, Percentage: 118.0},
	}}
	svc := NewPerformanceService(repo, &mockPerformanceClassRepo{}, nil, time.Minute, zap.NewNop())

	points, err := svc.MyTrend(context.Background(), studentActor())
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, models.ExamTypeInternal, points[0].Exam)
	assert.Equal(t, 100.0, points[2].Percentage)
}

func TestPerformanceServiceExportCSV(t *testing.T) {
	repo := &mockPerformanceRepo{classRows: []models.ClassPerformanceRow{
		{StudentID: "s1", Name: "Aisha", RollNo: "01", AvgScore: 91.4, AttendancePct: 88},
	}}
	classes := &mockPerformanceClassRepo{inScope: map[string]bool{testClassID: true}}
	svc := NewPerformanceService(repo, classes, nil, time.Minute, zap.NewNop())

	payload, contentType, err := svc.ExportClassPerformance(context.Background(), teacherActor(), testClassID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(payload), "rank,roll_no,name,avg_score,attendance_pct")
	assert.Contains(t, string(payload), "1,01,Aisha,91.4,88.0")
}

func TestPerformanceServiceExportPDF(t *testing.T) {
	repo := &mockPerformanceRepo{classRows: []models.ClassPerformanceRow{
		{StudentID: "s1", Name: "Aisha", RollNo: "01", AvgScore: 91.4, AttendancePct: 88},
	}}
	classes := &mockPerformanceClassRepo{inScope: map[string]bool{testClassID: true}}
	svc := NewPerformanceService(repo, classes, nil, time.Minute, zap.NewNop())

	payload, contentType, err := svc.ExportClassPerformance(context.Background(), teacherActor(), testClassID, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.NotEmpty(t, payload)
}

func TestPerformanceServiceExportUnknownFormat(t *testing.T) {
	repo := &mockPerformanceRepo{}
	classes := &mockPerformanceClassRepo{inScope: map[string]bool{testClassID: true}}
	svc := NewPerformanceService(repo, classes, nil, time.Minute, zap.NewNop())

	_, _, err := svc.ExportClassPerformance(context.Background(), teacherActor(), testClassID, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
