package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
)

type mockAnnouncementRepo struct {
	created    *models.Announcement
	byTeacher  []models.AnnouncementDetail
	forStudent []models.AnnouncementDetail
	forDept    []models.AnnouncementDetail
	all        []models.AnnouncementDetail
	owned      map[string]string
	deleted    []string
}

func (m *mockAnnouncementRepo) Create(ctx context.Context, ann *models.Announcement) error {
	ann.ID = "ann-new"
	m.created = ann
	return nil
}

func (m *mockAnnouncementRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.AnnouncementDetail, error) {
	return m.byTeacher, nil
}

func (m *mockAnnouncementRepo) ListForStudent(ctx context.Context, studentID string) ([]models.AnnouncementDetail, error) {
	return m.forStudent, nil
}

func (m *mockAnnouncementRepo) ListForDepartment(ctx context.Context, departmentID string) ([]models.AnnouncementDetail, error) {
	return m.forDept, nil
}

func (m *mockAnnouncementRepo) ListAll(ctx context.Context) ([]models.AnnouncementDetail, error) {
	return m.all, nil
}

func (m *mockAnnouncementRepo) Delete(ctx context.Context, id, teacherID string) (bool, error) {
	if m.owned[id] != teacherID {
		return false, nil
	}
	m.deleted = append(m.deleted, id)
	return true, nil
}

func TestAnnouncementServiceCreate(t *testing.T) {
	repo := &mockAnnouncementRepo{}
	svc := NewAnnouncementService(repo, nil, zap.NewNop())

	ann, err := svc.Create(context.Background(), teacherActor(), models.CreateAnnouncementRequest{
		Title: "Midterm schedule",
		Body:  "Midterms start on March 17th.",
	})
	require.NoError(t, err)
	assert.Equal(t, "tea-1", ann.TeacherID)
	assert.False(t, ann.CreatedAt.IsZero())
	require.NotNil(t, repo.created)
}

func TestAnnouncementServiceCreateRequiresTeacherProfile(t *testing.T) {
	svc := NewAnnouncementService(&mockAnnouncementRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), studentActor(), models.CreateAnnouncementRequest{
		Title: "Midterm schedule",
		Body:  "Midterms start on March 17th.",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAnnouncementServiceListPerRole(t *testing.T) {
	repo := &mockAnnouncementRepo{
		byTeacher:  []models.AnnouncementDetail{{ID: "a1"}},
		forStudent: []models.AnnouncementDetail{{ID: "a2"}, {ID: "a3"}},
		forDept:    []models.AnnouncementDetail{{ID: "a4"}},
		all:        []models.AnnouncementDetail{{ID: "a1"}, {ID: "a2"}, {ID: "a4"}},
	}
	svc := NewAnnouncementService(repo, nil, zap.NewNop())

	anns, err := svc.List(context.Background(), teacherActor())
	require.NoError(t, err)
	assert.Len(t, anns, 1)

	anns, err = svc.List(context.Background(), studentActor())
	require.NoError(t, err)
	assert.Len(t, anns, 2)

	anns, err = svc.List(context.Background(), scope.Actor{Role: models.RoleHOD, TeacherID: "tea-9", DepartmentID: "dep-1"})
	require.NoError(t, err)
	assert.Len(t, anns, 1)

	anns, err = svc.List(context.Background(), scope.Actor{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, anns, 3)
}

func TestAnnouncementServiceDelete(t *testing.T) {
	repo := &mockAnnouncementRepo{owned: map[string]string{"a1": "tea-1"}}
	svc := NewAnnouncementService(repo, nil, zap.NewNop())

	err := svc.Delete(context.Background(), teacherActor(), "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, repo.deleted)
}

func TestAnnouncementServiceDeleteForeignAnnouncement(t *testing.T) {
	repo := &mockAnnouncementRepo{owned: map[string]string{"a1": "tea-2"}}
	svc := NewAnnouncementService(repo, nil, zap.NewNop())

	err := svc.Delete(context.Background(), teacherActor(), "a1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}
