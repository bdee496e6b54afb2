package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/service"
	"github.com/noah-isme/college-api/pkg/response"
)

type authRepoStub struct {
	users map[string]*models.User
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) CreateTeacher(ctx context.Context, email, passwordHash, name string, departmentID *string) (*models.User, *models.Teacher, error) {
	user := &models.User{ID: "u-new", Email: email, PasswordHash: passwordHash, Role: models.RoleTeacher}
	return user, &models.Teacher{ID: "t-new", UserID: user.ID, Name: name}, nil
}

func (s *authRepoStub) CreateStudent(ctx context.Context, email, passwordHash, name, rollNo string, year int, classID *string) (*models.User, *models.Student, error) {
	user := &models.User{ID: "u-new", Email: email, PasswordHash: passwordHash, Role: models.RoleStudent}
	return user, &models.Student{ID: "s-new", UserID: user.ID, Name: name, RollNo: rollNo, Year: year}, nil
}

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &authRepoStub{users: map[string]*models.User{
		"rao@college.edu": {ID: "u1", Email: "rao@college.edu", PasswordHash: string(hash), Role: models.RoleTeacher},
	}}
	auth := service.NewAuthService(repo, nil, zap.NewNop(), service.AuthConfig{TokenSecret: "test-secret", TokenExpiry: time.Hour})
	return NewAuthHandler(auth)
}

func postJSON(t *testing.T, h gin.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var body []byte
	switch v := payload.(type) {
	case string:
		body = []byte(v)
	default:
		var err error
		body, err = json.Marshal(v)
		require.NoError(t, err)
	}
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	h(c)
	return w
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := newAuthHandler(t)
	w := postJSON(t, handler.Login, "/auth/login", models.LoginRequest{Email: "rao@college.edu", Password: "secret123"})
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	handler := newAuthHandler(t)
	w := postJSON(t, handler.Login, "/auth/login", models.LoginRequest{Email: "rao@college.edu", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLoginInvalidBody(t *testing.T) {
	handler := newAuthHandler(t)
	w := postJSON(t, handler.Login, "/auth/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerRegisterStudent(t *testing.T) {
	handler := newAuthHandler(t)
	w := postJSON(t, handler.RegisterStudent, "/auth/register/student", models.RegisterStudentRequest{
		Name:     "Meena K",
		Email:    "meena@college.edu",
		Password: "secret123",
		RollNo:   "21CS042",
		Year:     2,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}
