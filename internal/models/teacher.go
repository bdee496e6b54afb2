package models

// Teacher represents a teacher profile bound 1:1 to a user account.
type Teacher struct {
	ID           string  `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	DepartmentID *string `db:"department_id" json:"department_id,omitempty"`
	UserID       string  `db:"user_id" json:"user_id"`
}

// Department groups teachers; the HOD of a department is a teacher whose
// account carries the hod role and whose profile references the department.
type Department struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
