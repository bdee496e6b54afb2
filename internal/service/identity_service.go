package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/scope"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
)

type identityRepository interface {
	TeacherIDByUser(ctx context.Context, userID string) (string, error)
	StudentIDByUser(ctx context.Context, userID string) (string, error)
	DepartmentIDByUser(ctx context.Context, userID string) (string, error)
}

// IdentityService resolves token claims into a scope.Actor carrying the
// role-specific profile ids needed for query scoping.
type IdentityService struct {
	repo   identityRepository
	logger *zap.Logger
}

// NewIdentityService constructs an IdentityService instance.
func NewIdentityService(repo identityRepository, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{repo: repo, logger: logger}
}

// Resolve looks up the profile ids the claims' role requires. An account
// whose role-profile is missing is treated as out of scope: the token is
// valid but grants nothing.
func (s *IdentityService) Resolve(ctx context.Context, claims *models.JWTClaims) (scope.Actor, error) {
	actor := scope.Actor{Role: claims.Role, UserID: claims.UserID}

	switch claims.Role {
	case models.RoleStudent:
		id, err := s.repo.StudentIDByUser(ctx, claims.UserID)
		if err != nil {
			return scope.Actor{}, s.mapProfileErr(err, "student profile not found")
		}
		actor.StudentID = id
	case models.RoleTeacher:
		id, err := s.repo.TeacherIDByUser(ctx, claims.UserID)
		if err != nil {
			return scope.Actor{}, s.mapProfileErr(err, "teacher profile not found")
		}
		actor.TeacherID = id
	case models.RoleHOD:
		id, err := s.repo.TeacherIDByUser(ctx, claims.UserID)
		if err != nil {
			return scope.Actor{}, s.mapProfileErr(err, "HOD profile not found")
		}
		actor.TeacherID = id

		dept, err := s.repo.DepartmentIDByUser(ctx, claims.UserID)
		if err != nil {
			return scope.Actor{}, s.mapProfileErr(err, "HOD has no department assigned")
		}
		actor.DepartmentID = dept
	case models.RoleAdmin:
		// Admins carry no profile; their scope is unrestricted.
	default:
		return scope.Actor{}, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}

	return actor, nil
}

func (s *IdentityService) mapProfileErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrForbidden, msg)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve profile")
}
