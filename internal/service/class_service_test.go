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

type mockClassRepo struct {
	classes map[string]*models.Class
	inScope map[string]bool
	created *models.Class
	roster  []models.StudentSummary
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	class.ID = "class-new"
	m.created = class
	return nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) ExistsInScope(ctx context.Context, classID string, cond scope.Condition) (bool, error) {
	return m.inScope[classID], nil
}

func (m *mockClassRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error) {
	out := make([]models.Class, 0, len(m.classes))
	for _, c := range m.classes {
		if c.TeacherID == teacherID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockClassRepo) ListByDepartment(ctx context.Context, departmentID string) ([]models.ClassDetail, error) {
	return nil, nil
}

func (m *mockClassRepo) ListApprovedStudents(ctx context.Context, classID string) ([]models.StudentSummary, error) {
	return m.roster, nil
}

type mockClassSubjectRepo struct {
	subjects map[string]*models.Subject
}

func (m *mockClassSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func TestClassServiceCreate(t *testing.T) {
	repo := &mockClassRepo{}
	subjects := &mockClassSubjectRepo{subjects: map[string]*models.Subject{testSubjectID: {ID: testSubjectID, Name: "Algorithms"}}}
	svc := NewClassService(repo, subjects, nil, zap.NewNop())

	class, err := svc.Create(context.Background(), teacherActor(), models.CreateClassRequest{
		Name:      "CS-3A",
		SubjectID: testSubjectID,
		Year:      3,
	})
	require.NoError(t, err)
	assert.Equal(t, "tea-1", class.TeacherID)
	require.NotNil(t, repo.created)
}

func TestClassServiceCreateUnknownSubject(t *testing.T) {
	svc := NewClassService(&mockClassRepo{}, &mockClassSubjectRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), teacherActor(), models.CreateClassRequest{
		Name:      "CS-3A",
		SubjectID: testSubjectID,
		Year:      3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClassServiceGetByIDOutOfScope(t *testing.T) {
	repo := &mockClassRepo{classes: map[string]*models.Class{testClassID: {ID: testClassID, TeacherID: "tea-2"}}}
	svc := NewClassService(repo, &mockClassSubjectRepo{}, nil, zap.NewNop())

	_, err := svc.GetByID(context.Background(), teacherActor(), testClassID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClassServiceGetByID(t *testing.T) {
	repo := &mockClassRepo{
		classes: map[string]*models.Class{testClassID: {ID: testClassID, TeacherID: "tea-1", Name: "CS-3A"}},
		inScope: map[string]bool{testClassID: true},
	}
	svc := NewClassService(repo, &mockClassSubjectRepo{}, nil, zap.NewNop())

	class, err := svc.GetByID(context.Background(), teacherActor(), testClassID)
	require.NoError(t, err)
	assert.Equal(t, "CS-3A", class.Name)
}

func TestClassServiceListMine(t *testing.T) {
	repo := &mockClassRepo{classes: map[string]*models.Class{
		testClassID: {ID: testClassID, TeacherID: "tea-1"},
		"other":     {ID: "other", TeacherID: "tea-2"},
	}}
	svc := NewClassService(repo, &mockClassSubjectRepo{}, nil, zap.NewNop())

	classes, err := svc.ListMine(context.Background(), teacherActor())
	require.NoError(t, err)
	assert.Len(t, classes, 1)
}

func TestClassServiceListApprovedStudentsOutOfScope(t *testing.T) {
	svc := NewClassService(&mockClassRepo{}, &mockClassSubjectRepo{}, nil, zap.NewNop())

	_, err := svc.ListApprovedStudents(context.Background(), teacherActor(), testClassID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestClassServiceListApprovedStudents(t *testing.T) {
	repo := &mockClassRepo{
		inScope: map[string]bool{testClassID: true},
		roster:  []models.StudentSummary{{ID: "stu-1", Name: "Aisha", RollNo: "01"}},
	}
	svc := NewClassService(repo, &mockClassSubjectRepo{}, nil, zap.NewNop())

	students, err := svc.ListApprovedStudents(context.Background(), teacherActor(), testClassID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Aisha", students[0].Name)
}
