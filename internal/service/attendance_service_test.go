package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
)

type mockAttendanceRepo struct {
	batches  [][]models.Attendance
	upserted []models.Attendance
	days     []models.AttendanceDay
}

func (m *mockAttendanceRepo) UpsertBatch(ctx context.Context, classID string, date time.Time, records []models.Attendance) error {
	m.batches = append(m.batches, records)
	return nil
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, record *models.Attendance) error {
	m.upserted = append(m.upserted, *record)
	return nil
}

func (m *mockAttendanceRepo) ListByDate(ctx context.Context, classID string, date time.Time) ([]models.AttendanceRow, error) {
	return nil, nil
}

func (m *mockAttendanceRepo) ListForStudent(ctx context.Context, classID, studentID string) ([]models.AttendanceDay, error) {
	return m.days, nil
}

func (m *mockAttendanceRepo) ListMineRange(ctx context.Context, studentID string, from, to *time.Time) ([]models.AttendanceDay, error) {
	return m.days, nil
}

func (m *mockAttendanceRepo) Summary(ctx context.Context, classID string) ([]models.AttendanceSummaryRow, error) {
	return nil, nil
}

func (m *mockAttendanceRepo) Top(ctx context.Context, classID string, limit int) ([]models.AttendanceSummaryRow, error) {
	return nil, nil
}

type mockAttendanceClassRepo struct {
	inScope map[string]bool
}

func (m *mockAttendanceClassRepo) ExistsInScope(ctx context.Context, classID string, cond scope.Condition) (bool, error) {
	return m.inScope[classID], nil
}

type mockAttendanceEnrollmentRepo struct {
	approved map[string]bool
}

func (m *mockAttendanceEnrollmentRepo) HasApproved(ctx context.Context, classID, studentID string) (bool, error) {
	return m.approved[studentID], nil
}

func (m *mockAttendanceEnrollmentRepo) ApprovedStudentIDs(ctx context.Context, classID string, studentIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		if m.approved[id] {
			out[id] = true
		}
	}
	return out, nil
}

const (
	attStudentA = "1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f"
	attStudentB = "2d3e4f5a-6b7c-4d8e-9f0a-1b2c3d4e5f6a"
	mondayDate  = "2025-03-10"
	sundayDate  = "2025-03-09"
)

func newAttendanceService(repo *mockAttendanceRepo, classes *mockAttendanceClassRepo, enrollments *mockAttendanceEnrollmentRepo) *AttendanceService {
	return NewAttendanceService(repo, classes, enrollments, nil, nil, zap.NewNop())
}

func TestAttendanceServiceRecordBatch(t *testing.T) {
	repo := &mockAttendanceRepo{}
	classes := &mockAttendanceClassRepo{inScope: map[string]bool{testClassID: true}}
	enrollments := &mockAttendanceEnrollmentRepo{approved: map[string]bool{attStudentA: true, attStudentB: true}}
	svc := newAttendanceService(repo, classes, enrollments)

	err := svc.RecordBatch(context.Background(), teacherActor(), models.AttendanceBatchRequest{
		ClassID: testClassID,
		Date:    mondayDate,
		Records: []models.AttendanceEntry{
			{StudentID: attStudentA, Status: models.AttendanceStatusPresent},
			{StudentID: attStudentB, Status: models.AttendanceStatusAbsent},
		},
	})
	require.NoError(t, err)
	require.Len(t, repo.batches, 1)
	assert.Len(t, repo.batches[0], 2)
	assert.Equal(t, models.AttendanceStatusAbsent, repo.batches[0][1].Status)
}

func TestAttendanceServiceRecordBatchByNonTeacher(t *testing.T) {
	repo := &mockAttendanceRepo{}
	classes := &mockAttendanceClassRepo{inScope: map[string]bool{testClassID: true}}
	enrollments := &mockAttendanceEnrollmentRepo{approved: map[string]bool{attStudentA: true}}
	svc := newAttendanceService(repo, classes, enrollments)

	req := models.AttendanceBatchRequest{
		ClassID: testClassID,
		Date:    mondayDate,
		Records: []models.AttendanceEntry{{StudentID: attStudentA, Status: models.AttendanceStatusPresent}},
	}

	hod := scope.Actor{Role: models.RoleHOD, UserID: "u-hod", TeacherID: "tea-9", DepartmentID: "dep-1"}
	err := svc.RecordBatch(context.Background(), hod, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	err = svc.RecordBatch(context.Background(), scope.Actor{Role: models.RoleAdmin, UserID: "u-adm"}, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.batches)
}

func TestAttendanceServiceRecordSingleByNonTeacher(t *testing.T) {
	repo := &mockAttendanceRepo{}
	classes := &mockAttendanceClassRepo{inScope: map[string]bool{testClassID: true}}
	enrollments := &mockAttendanceEnrollmentRepo{approved: map[string]bool{attStudentA: true}}
	svc := newAttendanceService(repo, classes, enrollments)

	err := svc.RecordSingle(context.Background(), scope.Actor{Role: models.RoleAdmin, UserID: "u-adm"}, models.AttendanceSingleRequest{
		ClassID:   testClassID,
		StudentID: attStudentA,
		Date:      mondayDate,
		Status:    models.AttendanceStatusPresent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.upserted)
}

func TestAttendanceServiceRecordBatchOnSunday(t *testing.T) {
	repo := &mockAttendanceRepo{}
	classes := &mockAttendanceClassRepo{inScope: map[string]bool{testClassID: true}}
	enrollments := &mockAttendanceEnrollmentRepo{approved: map[string]bool{attStudentA: true}}
	svc := newAttendanceService(repo, classes, enrollments)

	err := svc.RecordBatch(context.Background(), teacherActor(), models.AttendanceBatchRequest{
		ClassID: testClassID,
		Date:    sundayDate,
		Records: []models.AttendanceEntry{{StudentID: attStudentA, Status: models.AttendanceStatusPresent}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.batches)
}

func TestAttendanceServiceRecordBatchBadDate(t *testing.T) {
	repo := &mockAttendanceRepo{}
	classes := &mockAttendanceClassRepo{inScope: map[string]bool{testClassID: true}}
	svc := newAttendanceService(repo, classes, &mockAttendanceEnrollmentRepo{})

	err := svc.RecordBatch(context.Background(), teacherActor(), models.AttendanceBatchRequest{
		ClassID: testClassID,
		Date:    "10-03-2025",
		Records: []models.AttendanceEntry{{StudentID: attStudentA, Status: models.AttendanceStatusPresent}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.batches)
}

func TestAttendanceServiceRecordBatchOutOfScopeClass(t *testing.T) {
	repo := &mockAttendanceRepo{}
	classes := &mockAttendanceClassRepo{inScope: map[string]bool{}}
	svc := newAttendanceService(repo, classes, &mockAttendanceEnrollmentRepo{})

	err := svc.RecordBatch(context.Background(), teacherActor(), models.AttendanceBatchRequest{
		ClassID: testClassID,
		Date:    mondayDate,
		Records: []models.AttendanceEntry{{StudentID: attStudentA, Status: models.AttendanceStatusPresent}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.batches)
}

func TestAttendanceServiceRecordBatchUnapprovedStudent(t *testing.T) {
	repo := &mockAttendanceRepo{}
	classes := &mockAttendanceClassRepo{inScope: map[string]bool{testClassID: true}}
	enrollments := &mockAttendanceEnrollmentRepo{approved: map[string]bool{attStudentA: true}}
	svc := newAttendanceService(repo, classes, enrollments)

	err := svc.RecordBatch(context.Background(), teacherActor(), models.AttendanceBatchRequest{
		ClassID: testClassID,
		Date:    mondayDate,
		Records: []models.AttendanceEntry{
			{StudentID: attStudentA, Status: models.AttendanceStatusPresent},
			{StudentID: attStudentB, Status: models.AttendanceStatusPresent},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.batches)
}

func TestAttendanceServiceRecordBatchDuplicateStudent(t *testing.T) {
	repo := &mockAttendanceRepo{}
	classes := &mockAttendanceClassRepo{inScope: map[string]bool{testClassID: true}}
	enrollments := &mockAttendanceEnrollmentRepo{approved: map[string]bool{attStudentA: true}}
	svc := newAttendanceService(repo, classes, enrollments)

	err := svc.RecordBatch(context.Background(), teacherActor(), models.AttendanceBatchRequest{
		ClassID: testClassID,
		Date:    mondayDate,
		Records: []models.AttendanceEntry{
			{StudentID: attStudentA, Status: models.AttendanceStatusPresent},
			{StudentID: attStudentA, Status: models.AttendanceStatusAbsent},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.batches)
}

func TestAttendanceServiceRecordSingle(t *testing.T) {
	repo := &mockAttendanceRepo{}
	classes := &mockAttendanceClassRepo{inScope: map[string]bool{testClassID: true}}
	enrollments := &mockAttendanceEnrollmentRepo{approved: map[string]bool{attStudentA: true}}
	svc := newAttendanceService(repo, classes, enrollments)

	err := svc.RecordSingle(context.Background(), teacherActor(), models.AttendanceSingleRequest{
		ClassID:   testClassID,
		StudentID: attStudentA,
		Date:      mondayDate,
		Status:    models.AttendanceStatusAbsent,
	})
	require.NoError(t, err)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, models.AttendanceStatusAbsent, repo.upserted[0].Status)
}

func TestAttendanceServiceRecordSingleUnapproved(t *testing.T) {
	repo := &mockAttendanceRepo{}
	classes := &mockAttendanceClassRepo{inScope: map[string]bool{testClassID: true}}
	svc := newAttendanceService(repo, classes, &mockAttendanceEnrollmentRepo{})

	err := svc.RecordSingle(context.Background(), teacherActor(), models.AttendanceSingleRequest{
		ClassID:   testClassID,
		StudentID: attStudentA,
		Date:      mondayDate,
		Status:    models.AttendanceStatusPresent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.upserted)
}

func TestAttendanceServiceListMineRejectsBadRange(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockAttendanceClassRepo{}, &mockAttendanceEnrollmentRepo{})

	_, err := svc.ListMine(context.Background(), studentActor(), "not-a-date", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceListMine(t *testing.T) {
	repo := &mockAttendanceRepo{days: []models.AttendanceDay{{ClassID: testClassID, Status: models.AttendanceStatusPresent}}}
	svc := newAttendanceService(repo, &mockAttendanceClassRepo{}, &mockAttendanceEnrollmentRepo{})

	days, err := svc.ListMine(context.Background(), studentActor(), "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.Len(t, days, 1)
}
