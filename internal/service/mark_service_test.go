package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
)

type mockMarkRepo struct {
	marks   map[string]models.Mark
	created *models.Mark
	updates map[string][2]float64
}

func (m *mockMarkRepo) Create(ctx context.Context, mark *models.Mark) error {
	mark.ID = "mark-new"
	m.created = mark
	return nil
}

func (m *mockMarkRepo) FindInScope(ctx context.Context, id string, cond scope.Condition) (*models.Mark, error) {
	if mark, ok := m.marks[id]; ok {
		return &mark, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMarkRepo) UpdateScore(ctx context.Context, id string, score, totalMarks float64) error {
	if m.updates == nil {
		m.updates = make(map[string][2]float64)
	}
	m.updates[id] = [2]float64{score, totalMarks}
	return nil
}

func (m *mockMarkRepo) ListInScope(ctx context.Context, cond scope.Condition) ([]models.MarkDetail, error) {
	return nil, nil
}

func (m *mockMarkRepo) ListByClass(ctx context.Context, classID, teacherID string) ([]models.MarkDetail, error) {
	return nil, nil
}

func (m *mockMarkRepo) ListMine(ctx context.Context, studentID string) ([]models.StudentMark, error) {
	return nil, nil
}

func (m *mockMarkRepo) ListMineByClass(ctx context.Context, classID, studentID string) ([]models.StudentMark, error) {
	return nil, nil
}

func (m *mockMarkRepo) SubjectDifficulty(ctx context.Context, cond scope.Condition, limit int) ([]models.SubjectDifficultyRow, error) {
	return []models.SubjectDifficultyRow{{SubjectName: "Math", AvgScore: 41.5}}, nil
}

type mockMarkClassRepo struct {
	classes map[string]*models.Class
	inScope map[string]bool
}

func (m *mockMarkClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMarkClassRepo) ExistsInScope(ctx context.Context, classID string, cond scope.Condition) (bool, error) {
	return m.inScope[classID], nil
}

type mockMarkEnrollmentRepo struct {
	approved map[string]bool
}

func (m *mockMarkEnrollmentRepo) HasApproved(ctx context.Context, classID, studentID string) (bool, error) {
	return m.approved[studentID], nil
}

const testSubjectID = "3a4b5c6d-7e8f-4a9b-8c0d-1e2f3a4b5c6d"

func validMarkRequest() models.CreateMarkRequest {
	return models.CreateMarkRequest{
		StudentID:  testStudentID,
		SubjectID:  testSubjectID,
		Score:      72,
		TotalMarks: 100,
		ExamType:   models.ExamTypeMidterm,
		Year:       2025,
	}
}

func TestMarkServiceCreate(t *testing.T) {
	repo := &mockMarkRepo{}
	svc := NewMarkService(repo, &mockMarkClassRepo{}, &mockMarkEnrollmentRepo{}, nil, nil, zap.NewNop())

	mark, err := svc.Create(context.Background(), teacherActor(), validMarkRequest())
	require.NoError(t, err)
	assert.Equal(t, "tea-1", mark.TeacherID)
	assert.Nil(t, mark.ClassID)
	require.NotNil(t, repo.created)
}

func TestMarkServiceCreateScoreAboveTotal(t *testing.T) {
	repo := &mockMarkRepo{}
	svc := NewMarkService(repo, &mockMarkClassRepo{}, &mockMarkEnrollmentRepo{}, nil, nil, zap.NewNop())

	req := validMarkRequest()
	req.Score = 105
	_, err := svc.Create(context.Background(), teacherActor(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "score cannot exceed total marks", appErr.Message)
	assert.Nil(t, repo.created)
}

func TestMarkServiceCreateClassScoped(t *testing.T) {
	repo := &mockMarkRepo{}
	classes := &mockMarkClassRepo{
		classes: map[string]*models.Class{testClassID: {ID: testClassID, SubjectID: testSubjectID}},
		inScope: map[string]bool{testClassID: true},
	}
	enrollments := &mockMarkEnrollmentRepo{approved: map[string]bool{testStudentID: true}}
	svc := NewMarkService(repo, classes, enrollments, nil, nil, zap.NewNop())

	req := validMarkRequest()
	req.ClassID = testClassID
	mark, err := svc.Create(context.Background(), teacherActor(), req)
	require.NoError(t, err)
	require.NotNil(t, mark.ClassID)
	assert.Equal(t, testClassID, *mark.ClassID)
}

func TestMarkServiceCreateSubjectMismatch(t *testing.T) {
	classes := &mockMarkClassRepo{
		classes: map[string]*models.Class{testClassID: {ID: testClassID, SubjectID: "0f1e2d3c-4b5a-4f6e-8d7c-9b0a1f2e3d4c"}},
		inScope: map[string]bool{testClassID: true},
	}
	enrollments := &mockMarkEnrollmentRepo{approved: map[string]bool{testStudentID: true}}
	svc := NewMarkService(&mockMarkRepo{}, classes, enrollments, nil, nil, zap.NewNop())

	req := validMarkRequest()
	req.ClassID = testClassID
	_, err := svc.Create(context.Background(), teacherActor(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMarkServiceCreateUnenrolledStudent(t *testing.T) {
	classes := &mockMarkClassRepo{
		classes: map[string]*models.Class{testClassID: {ID: testClassID, SubjectID: testSubjectID}},
		inScope: map[string]bool{testClassID: true},
	}
	svc := NewMarkService(&mockMarkRepo{}, classes, &mockMarkEnrollmentRepo{}, nil, nil, zap.NewNop())

	req := validMarkRequest()
	req.ClassID = testClassID
	_, err := svc.Create(context.Background(), teacherActor(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMarkServiceCreateClassOutOfScope(t *testing.T) {
	classes := &mockMarkClassRepo{
		classes: map[string]*models.Class{testClassID: {ID: testClassID, SubjectID: testSubjectID}},
	}
	svc := NewMarkService(&mockMarkRepo{}, classes, &mockMarkEnrollmentRepo{}, nil, nil, zap.NewNop())

	req := validMarkRequest()
	req.ClassID = testClassID
	_, err := svc.Create(context.Background(), teacherActor(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMarkServiceCreateWithoutTeacherProfile(t *testing.T) {
	repo := &mockMarkRepo{}
	svc := NewMarkService(repo, &mockMarkClassRepo{}, &mockMarkEnrollmentRepo{}, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), scope.Actor{Role: models.RoleAdmin, UserID: "u-adm"}, validMarkRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestMarkServiceUpdateKeepsStoredTotal(t *testing.T) {
	repo := &mockMarkRepo{marks: map[string]models.Mark{
		"mark-1": {ID: "mark-1", StudentID: testStudentID, TeacherID: "tea-1", Score: 40, TotalMarks: 50},
	}}
	svc := NewMarkService(repo, &mockMarkClassRepo{}, &mockMarkEnrollmentRepo{}, nil, nil, zap.NewNop())

	mark, err := svc.Update(context.Background(), teacherActor(), "mark-1", models.UpdateMarkRequest{Score: 45})
	require.NoError(t, err)
	assert.Equal(t, 45.0, mark.Score)
	assert.Equal(t, 50.0, mark.TotalMarks)
	assert.Equal(t, [2]float64{45, 50}, repo.updates["mark-1"])
}

func TestMarkServiceUpdateScoreAboveStoredTotal(t *testing.T) {
	repo := &mockMarkRepo{marks: map[string]models.Mark{
		"mark-1": {ID: "mark-1", StudentID: testStudentID, TeacherID: "tea-1", Score: 40, TotalMarks: 50},
	}}
	svc := NewMarkService(repo, &mockMarkClassRepo{}, &mockMarkEnrollmentRepo{}, nil, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), teacherActor(), "mark-1", models.UpdateMarkRequest{Score: 60})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updates)
}

func TestMarkServiceUpdateWithNewTotal(t *testing.T) {
	repo := &mockMarkRepo{marks: map[string]models.Mark{
		"mark-1": {ID: "mark-1", StudentID: testStudentID, TeacherID: "tea-1", Score: 40, TotalMarks: 50},
	}}
	svc := NewMarkService(repo, &mockMarkClassRepo{}, &mockMarkEnrollmentRepo{}, nil, nil, zap.NewNop())

	total := 100.0
	mark, err := svc.Update(context.Background(), teacherActor(), "mark-1", models.UpdateMarkRequest{Score: 60, TotalMarks: &total})
	require.NoError(t, err)
	assert.Equal(t, 60.0, mark.Score)
	assert.Equal(t, 100.0, mark.TotalMarks)
}

func TestMarkServiceUpdateNotFound(t *testing.T) {
	svc := NewMarkService(&mockMarkRepo{}, &mockMarkClassRepo{}, &mockMarkEnrollmentRepo{}, nil, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), teacherActor(), "missing", models.UpdateMarkRequest{Score: 10})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMarkServiceUpdateByNonTeacher(t *testing.T) {
	repo := &mockMarkRepo{marks: map[string]models.Mark{
		"mark-1": {ID: "mark-1", StudentID: testStudentID, TeacherID: "tea-1", Score: 40, TotalMarks: 50},
	}}
	svc := NewMarkService(repo, &mockMarkClassRepo{}, &mockMarkEnrollmentRepo{}, nil, nil, zap.NewNop())

	hod := scope.Actor{Role: models.RoleHOD, UserID: "u-hod", TeacherID: "tea-9", DepartmentID: "dep-1"}
	_, err := svc.Update(context.Background(), hod, "mark-1", models.UpdateMarkRequest{Score: 10})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updates)

	_, err = svc.Update(context.Background(), scope.Actor{Role: models.RoleAdmin, UserID: "u-adm"}, "mark-1", models.UpdateMarkRequest{Score: 10})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updates)
}

func TestMarkServiceListMineRequiresStudentProfile(t *testing.T) {
	svc := NewMarkService(&mockMarkRepo{}, &mockMarkClassRepo{}, &mockMarkEnrollmentRepo{}, nil, nil, zap.NewNop())

	_, err := svc.ListMine(context.Background(), teacherActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMarkServiceSubjectDifficulty(t *testing.T) {
	svc := NewMarkService(&mockMarkRepo{}, &mockMarkClassRepo{}, &mockMarkEnrollmentRepo{}, nil, nil, zap.NewNop())

	rows, err := svc.SubjectDifficulty(context.Background(), teacherActor())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Math", rows[0].SubjectName)
}
