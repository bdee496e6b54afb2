// Package scope derives the row-set a given role may touch. Every repository
// query against classes, enrollments, attendance or marks composes one of
// these predicates instead of re-deriving role branches per endpoint.
package scope

import (
	"fmt"

	"github.com/noah-isme/college-api/internal/models"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
)

// Actor is the resolved identity of the caller: the account id from the
// token plus the role-specific profile ids looked up for this request.
type Actor struct {
	Role         models.UserRole
	UserID       string
	TeacherID    string
	StudentID    string
	DepartmentID string
}

// Condition is a composable SQL predicate using ? placeholders; repositories
// append Expr to their WHERE clause and rebind for the driver. An always-true
// condition has Expr "TRUE" and no args.
type Condition struct {
	Expr string
	Args []interface{}
}

// True is the unrestricted condition.
func True() Condition {
	return Condition{Expr: "TRUE"}
}

// ForClass scopes rows of the classes table (alias given). Teachers own
// their classes, HODs own their department's classes, admins are
// unrestricted. Students never own classes, so their access is rejected
// outright rather than narrowed.
func ForClass(a Actor, alias string) (Condition, error) {
	switch a.Role {
	case models.RoleTeacher:
		if a.TeacherID == "" {
			return Condition{}, appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
		}
		return Condition{Expr: fmt.Sprintf("%s.teacher_id = ?", alias), Args: []interface{}{a.TeacherID}}, nil
	case models.RoleHOD:
		if a.DepartmentID == "" {
			return Condition{}, appErrors.Clone(appErrors.ErrForbidden, "HOD profile not found")
		}
		return Condition{
			Expr: fmt.Sprintf("%s.teacher_id IN (SELECT id FROM teachers WHERE department_id = ?)", alias),
			Args: []interface{}{a.DepartmentID},
		}, nil
	case models.RoleAdmin:
		return True(), nil
	default:
		return Condition{}, appErrors.ErrForbidden
	}
}

// ForClassColumn scopes a foreign-key column referencing classes.id, e.g.
// "ce.class_id" on enrollments or "a.class_id" on attendance.
func ForClassColumn(a Actor, column string) (Condition, error) {
	switch a.Role {
	case models.RoleTeacher:
		if a.TeacherID == "" {
			return Condition{}, appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
		}
		return Condition{
			Expr: fmt.Sprintf("%s IN (SELECT id FROM classes WHERE teacher_id = ?)", column),
			Args: []interface{}{a.TeacherID},
		}, nil
	case models.RoleHOD:
		if a.DepartmentID == "" {
			return Condition{}, appErrors.Clone(appErrors.ErrForbidden, "HOD profile not found")
		}
		return Condition{
			Expr: fmt.Sprintf("%s IN (SELECT c.id FROM classes c JOIN teachers t ON t.id = c.teacher_id WHERE t.department_id = ?)", column),
			Args: []interface{}{a.DepartmentID},
		}, nil
	case models.RoleAdmin:
		return True(), nil
	default:
		return Condition{}, appErrors.ErrForbidden
	}
}

// ForMark scopes rows of the marks table (alias given). Teachers reach marks
// they authored or marks attached to their classes (a mark may or may not be
// class-scoped, so both ownership paths apply). HODs see their department's
// teachers' marks, students their own, admins everything.
func ForMark(a Actor, alias string) (Condition, error) {
	switch a.Role {
	case models.RoleTeacher:
		if a.TeacherID == "" {
			return Condition{}, appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
		}
		return Condition{
			Expr: fmt.Sprintf("(%s.teacher_id = ? OR %s.class_id IN (SELECT id FROM classes WHERE teacher_id = ?))", alias, alias),
			Args: []interface{}{a.TeacherID, a.TeacherID},
		}, nil
	case models.RoleHOD:
		if a.DepartmentID == "" {
			return Condition{}, appErrors.Clone(appErrors.ErrForbidden, "HOD profile not found")
		}
		return Condition{
			Expr: fmt.Sprintf("%s.teacher_id IN (SELECT id FROM teachers WHERE department_id = ?)", alias),
			Args: []interface{}{a.DepartmentID},
		}, nil
	case models.RoleStudent:
		if a.StudentID == "" {
			return Condition{}, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
		}
		return Condition{Expr: fmt.Sprintf("%s.student_id = ?", alias), Args: []interface{}{a.StudentID}}, nil
	case models.RoleAdmin:
		return True(), nil
	default:
		return Condition{}, appErrors.ErrForbidden
	}
}

// ForAttendance scopes rows of the attendance table (alias given).
func ForAttendance(a Actor, alias string) (Condition, error) {
	switch a.Role {
	case models.RoleStudent:
		if a.StudentID == "" {
			return Condition{}, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
		}
		return Condition{Expr: fmt.Sprintf("%s.student_id = ?", alias), Args: []interface{}{a.StudentID}}, nil
	default:
		return ForClassColumn(a, alias+".class_id")
	}
}
